package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/viant/tracknn/catalog"
	"github.com/viant/tracknn/config"
	"github.com/viant/tracknn/engine"
	"github.com/viant/tracknn/index"
	"github.com/viant/tracknn/internal/logging"
	"github.com/viant/tracknn/internal/metrics"
	"github.com/viant/tracknn/loader"
	"github.com/viant/tracknn/session"
	"github.com/viant/tracknn/sqlknn"
)

// knnModule is the virtual table module name the session is exposed under.
const knnModule = "knn"

// app wires a session to its data source and SQL surface.
type app struct {
	*session.Session
	db      *sql.DB
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// newLogger builds the process logger; every entry is counted on reg. In
// interactive mode without a log file entries are only counted, since
// stderr belongs to the terminal UI.
func newLogger(cfg *config.Config, interactive bool, reg *metrics.Registry) (*zap.Logger, func(), error) {
	lc := logging.Config{Format: cfg.LogFormat, Level: cfg.LogLevel}
	if reg != nil {
		lc.Observer = reg
	}
	closeFn := func() {}
	switch {
	case cfg.LogFile == "" && interactive:
		lc.Output = zapcore.AddSync(io.Discard)
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		lc.Output = zapcore.AddSync(f)
		closeFn = func() { _ = f.Close() }
	}
	logger, err := logging.NewLogger(lc)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return logger, closeFn, nil
}

// newApp opens the catalog database, imports the data file into it when a
// catalog is configured, and builds the session.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg *metrics.Registry) (*app, error) {
	kind, err := index.ParseKind(cfg.Engine)
	if err != nil {
		return nil, err
	}
	dsn := cfg.CatalogDSN
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := engine.Open(dsn)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	a := &app{db: db, logger: logger}
	// Registered before first use so every pooled connection sees it.
	knn, err := sqlknn.Register(db, knnModule, nil)
	if err != nil {
		a.Close()
		return nil, err
	}

	var source loader.Source
	file := loader.NewFile(cfg.DataPath, logger)
	if cfg.CatalogDSN != "" {
		if a.catalog, err = catalog.New(ctx, db, logger); err != nil {
			a.Close()
			return nil, err
		}
		if cfg.DataPath != "" {
			records, err := file.Records(ctx)
			if err != nil {
				a.Close()
				return nil, err
			}
			if _, err := a.catalog.Import(ctx, records); err != nil {
				a.Close()
				return nil, err
			}
		}
		source = a.catalog
	} else {
		source = file
	}

	a.Session, err = session.New(ctx, source, kind,
		session.WithLogger(logger),
		session.WithMetrics(reg),
		session.WithIgnoreCapacity(cfg.IgnoreCapacity),
		session.WithStart(cfg.StartX, cfg.StartY),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	knn.SetSearcher(a.Session)
	return a, nil
}

// Similar lists catalog tracks with the closest raw feature profiles.
func (a *app) Similar(ctx context.Context, id string, limit int) ([]catalog.Match, error) {
	if a.catalog == nil {
		return nil, fmt.Errorf("similar: no catalog configured")
	}
	return a.catalog.Similar(ctx, id, limit)
}

// RunSQL executes text and writes its rows tab-separated, one per line.
// The knn virtual table is created on demand.
func (a *app) RunSQL(ctx context.Context, w io.Writer, text string) error {
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "CREATE VIRTUAL TABLE IF NOT EXISTS temp.knn USING "+knnModule); err != nil {
		a.logger.Warn("knn virtual table unavailable", zap.Error(err))
	}
	rows, err := conn.QueryContext(ctx, text)
	if err != nil {
		return err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strings.Join(cols, "\t"))
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		cells := make([]string, len(values))
		for i, v := range values {
			switch v := v.(type) {
			case nil:
				cells[i] = "NULL"
			case []byte:
				cells[i] = string(v)
			default:
				cells[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return rows.Err()
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}
