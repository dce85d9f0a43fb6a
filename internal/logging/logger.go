// Package logging builds the structured zap logger used across tracknn.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EntryObserver is told about every entry the logger writes.
type EntryObserver interface {
	ObserveLogEntry(level zapcore.Level)
}

// Config holds logger options.
type Config struct {
	// Format is "json" or "console".
	Format string
	// Level is the minimum level: debug, info, warn or error.
	Level string
	// Output defaults to os.Stderr.
	Output zapcore.WriteSyncer
	// Observer, when set, counts written entries (see metrics.Registry).
	Observer EntryObserver
}

// DefaultConfig returns JSON output at info level.
func DefaultConfig() Config {
	return Config{Format: "json", Level: "info", Output: os.Stderr}
}

// NewLogger creates a zap logger for cfg.
func NewLogger(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "console", "text":
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	var core zapcore.Core = zapcore.NewCore(encoder, output, level)
	if cfg.Observer != nil {
		core = &observedCore{Core: core, observer: cfg.Observer}
	}
	return zap.New(core, zap.AddCaller()), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger { return zap.NewNop() }

// ParseLevel converts a level name to a zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("logging: invalid log level: %s", level)
}

// observedCore reports each written entry to an EntryObserver.
type observedCore struct {
	zapcore.Core
	observer EntryObserver
}

func (c *observedCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *observedCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	c.observer.ObserveLogEntry(entry.Level)
	return c.Core.Write(entry, fields)
}

func (c *observedCore) With(fields []zapcore.Field) zapcore.Core {
	return &observedCore{Core: c.Core.With(fields), observer: c.observer}
}
