package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/viant/tracknn/catalog"
	"github.com/viant/tracknn/index"
	"github.com/viant/tracknn/track"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2).
			MarginRight(2)

	resultBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FFFF")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

const (
	historySize  = 5
	similarLimit = 5
)

// controller is the command surface the UI drives.
type controller interface {
	Current() track.Point
	Nudge(dx, dy float64) track.Point
	Nearest() (index.Neighbor, bool)
	Timing() time.Duration
	Kind() index.Kind
	Size() int
	IgnoreSize() int
	Switch(ctx context.Context, kind index.Kind) error
	Similar(ctx context.Context, id string, limit int) ([]catalog.Match, error)
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Nearest key.Binding
	Toggle  key.Binding
	Similar key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "ambient +"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "ambient -"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "upbeat -"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "upbeat +"),
	),
	Nearest: key.NewBinding(
		key.WithKeys("n", "enter"),
		key.WithHelp("n", "nearest"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "switch engine"),
	),
	Similar: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "similar profiles"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Nearest, k.Toggle, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Nearest, k.Toggle, k.Similar},
		{k.Help, k.Quit},
	}
}

type switchedMsg struct {
	kind    index.Kind
	elapsed time.Duration
	err     error
}

type similarMsg struct {
	id      string
	matches []catalog.Match
	err     error
}

type model struct {
	ctx        context.Context
	ctl        controller
	step       float64
	keys       keyMap
	help       help.Model
	width      int
	busy       bool
	history    []index.Neighbor
	similar    []catalog.Match
	message    string
	messageErr bool
}

func newModel(ctx context.Context, ctl controller, step float64) model {
	return model{
		ctx:  ctx,
		ctl:  ctl,
		step: step,
		keys: keys,
		help: help.New(),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case switchedMsg:
		m.busy = false
		if msg.err != nil {
			m.setError("switch to %s failed: %v", msg.kind, msg.err)
		} else {
			m.history = nil
			m.similar = nil
			m.setMessage("switched to %s engine in %s", msg.kind, msg.elapsed.Round(time.Millisecond))
		}

	case similarMsg:
		if msg.err != nil {
			m.setError("similar: %v", msg.err)
		} else {
			m.similar = msg.matches
			m.setMessage("%d tracks with profiles like %s", len(msg.matches), msg.id)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			m.ctl.Nudge(0, m.step)
		case key.Matches(msg, m.keys.Down):
			m.ctl.Nudge(0, -m.step)
		case key.Matches(msg, m.keys.Left):
			m.ctl.Nudge(-m.step, 0)
		case key.Matches(msg, m.keys.Right):
			m.ctl.Nudge(m.step, 0)
		case key.Matches(msg, m.keys.Nearest):
			m.nearest()
		case key.Matches(msg, m.keys.Toggle):
			if m.busy {
				break
			}
			m.busy = true
			kind := index.KindTree
			if m.ctl.Kind() == index.KindTree {
				kind = index.KindLinear
			}
			m.setMessage("building %s engine...", kind)
			return m, m.switchCmd(kind)
		case key.Matches(msg, m.keys.Similar):
			if len(m.history) == 0 {
				m.setError("similar: find a nearest track first")
				break
			}
			return m, m.similarCmd(m.history[0].Point.ID)
		}
	}
	return m, nil
}

func (m *model) nearest() {
	n, ok := m.ctl.Nearest()
	if !ok {
		m.setError("no eligible track")
		return
	}
	m.history = append([]index.Neighbor{n}, m.history...)
	if len(m.history) > historySize {
		m.history = m.history[:historySize]
	}
	m.similar = nil
	m.setMessage("found %s in %s", n.Point.Name, m.ctl.Timing())
}

func (m model) switchCmd(kind index.Kind) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		started := time.Now()
		err := ctl.Switch(ctx, kind)
		return switchedMsg{kind: kind, elapsed: time.Since(started), err: err}
	}
}

func (m model) similarCmd(id string) tea.Cmd {
	ctx, ctl := m.ctx, m.ctl
	return func() tea.Msg {
		matches, err := ctl.Similar(ctx, id, similarLimit)
		return similarMsg{id: id, matches: matches, err: err}
	}
}

func (m *model) setMessage(format string, args ...any) {
	m.message = fmt.Sprintf(format, args...)
	m.messageErr = false
}

func (m *model) setError(format string, args ...any) {
	m.message = fmt.Sprintf(format, args...)
	m.messageErr = true
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("tracknn"))
	b.WriteString("\n\n")

	q := m.ctl.Current()
	stats := fmt.Sprintf("%s %s\n%s %d\n%s %d\n%s (%.3f, %.3f)\n%s %s",
		labelStyle.Render("engine: "), m.ctl.Kind(),
		labelStyle.Render("tracks: "), m.ctl.Size(),
		labelStyle.Render("ignored:"), m.ctl.IgnoreSize(),
		labelStyle.Render("query:  "), q.X, q.Y,
		labelStyle.Render("last:   "), m.ctl.Timing(),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statsBoxStyle.Render(stats),
		resultBoxStyle.Render(m.resultView()),
	))
	b.WriteString("\n")

	if m.message != "" {
		style := successStyle
		if m.messageErr {
			style = errorStyle
		}
		b.WriteString("\n  " + style.Render(m.message) + "\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m model) resultView() string {
	if len(m.history) == 0 {
		return "press n to find the nearest track"
	}
	var b strings.Builder
	for i, n := range m.history {
		line := fmt.Sprintf("%.4f  %s", n.Distance, n.Point.Name)
		if len(n.Point.Artists) > 0 {
			line += " - " + strings.Join(n.Point.Artists, ", ")
		}
		if i == 0 {
			line = successStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if len(m.similar) > 0 {
		b.WriteString("\n" + labelStyle.Render("similar profiles") + "\n")
		for _, s := range m.similar {
			fmt.Fprintf(&b, "%.4f  %s\n", s.Distance, s.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
