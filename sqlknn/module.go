package sqlknn

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"modernc.org/sqlite/vtab"

	"github.com/viant/tracknn/index"
	"github.com/viant/tracknn/track"
)

// QueryID is the id given to MATCH query points.
const QueryID = "sqlknn:query"

const idxMatch = 1

// Searcher answers k-nearest-neighbor queries. Every index.Engine is a
// Searcher.
type Searcher interface {
	NearestNeighbors(q track.Point, k int) []index.Neighbor
}

// modules mirrors the driver's process-wide module table.
var (
	modulesMu sync.Mutex
	modules   = map[string]*Module{}
)

// Module implements vtab.Module over a Searcher.
type Module struct {
	mu       sync.RWMutex
	searcher Searcher
}

// Register makes the module available under name on connections opened
// after the call. Module names are process-global: the driver keeps one
// module per name for every database, so registering an existing name,
// from any *sql.DB, swaps the searcher behind all tables using it. A nil
// searcher answers every query with no rows until SetSearcher is called.
func Register(db *sql.DB, name string, searcher Searcher) (*Module, error) {
	modulesMu.Lock()
	defer modulesMu.Unlock()
	if m, ok := modules[name]; ok {
		m.SetSearcher(searcher)
		return m, nil
	}
	m := &Module{searcher: searcher}
	if err := vtab.RegisterModule(db, name, m); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return nil, fmt.Errorf("sqlknn: register %s: %w", name, err)
		}
	}
	modules[name] = m
	return m, nil
}

// SetSearcher replaces the searcher used by subsequent queries.
func (m *Module) SetSearcher(s Searcher) {
	m.mu.Lock()
	m.searcher = s
	m.mu.Unlock()
}

func (m *Module) current() Searcher {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.searcher
}

// Create declares the table schema.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

// Connect declares the table schema.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args)
}

func (m *Module) connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("sqlknn: need at least 3 args, got %d", len(args))
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(id TEXT, name TEXT, distance REAL, query HIDDEN)", args[2])); err != nil {
		return nil, err
	}
	return &Table{module: m}, nil
}

// Table is one knn virtual table instance.
type Table struct {
	module *Module
}

// BestIndex pushes MATCH on the hidden query column down to Filter.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == 3 && c.Op == vtab.OpMATCH {
			c.ArgIndex = 0
			c.Omit = true
			info.IdxNum = idxMatch
			break
		}
	}
	return nil
}

func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }
func (t *Table) Disconnect() error          { return nil }
func (t *Table) Destroy() error             { return nil }

// Cursor iterates one query's neighbors.
type Cursor struct {
	table *Table
	query string
	rows  []index.Neighbor
	pos   int
}

// Filter runs the query carried by the MATCH argument.
func (c *Cursor) Filter(idxNum int, _ string, vals []vtab.Value) error {
	c.rows, c.pos, c.query = nil, 0, ""
	if idxNum != idxMatch || len(vals) == 0 || vals[0] == nil {
		return nil
	}
	var text string
	switch v := vals[0].(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return fmt.Errorf("sqlknn: MATCH expects TEXT 'x y [k]', got %T", vals[0])
	}
	q, k, err := ParseQuery(text)
	if err != nil {
		return err
	}
	c.query = text
	if s := c.table.module.current(); s != nil {
		c.rows = s.NearestNeighbors(q, k)
	}
	return nil
}

func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("sqlknn: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	n := c.rows[c.pos]
	switch col {
	case 0:
		return n.Point.ID, nil
	case 1:
		return n.Point.Name, nil
	case 2:
		return n.Distance, nil
	case 3:
		return c.query, nil
	}
	return nil, fmt.Errorf("sqlknn: unsupported column %d", col)
}

func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }

func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

// ParseQuery parses "x y [k]"; fields may be separated by spaces or commas.
func ParseQuery(s string) (track.Point, int, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) < 2 || len(fields) > 3 {
		return track.Point{}, 0, fmt.Errorf("sqlknn: invalid query %q, want 'x y [k]'", s)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return track.Point{}, 0, fmt.Errorf("sqlknn: invalid x in %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return track.Point{}, 0, fmt.Errorf("sqlknn: invalid y in %q: %w", s, err)
	}
	k := 1
	if len(fields) == 3 {
		if k, err = strconv.Atoi(fields[2]); err != nil {
			return track.Point{}, 0, fmt.Errorf("sqlknn: invalid k in %q: %w", s, err)
		}
	}
	return track.Point{X: x, Y: y, ID: QueryID}, k, nil
}
