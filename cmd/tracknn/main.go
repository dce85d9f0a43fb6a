// Command tracknn explores a track map from the terminal: move a query
// point around and pull the nearest unseen track with either the linear or
// the KD-tree engine.
//
// Usage:
//
//	tracknn [-config tracknn.yaml] [-env .env] [-sql "SELECT ..."]
//
// With -sql the statement runs against the catalog database, where the
// active engine is queryable as the knn virtual table, and the rows are
// printed instead of starting the terminal UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/viant/tracknn/config"
	"github.com/viant/tracknn/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	envFile := flag.String("env", ".env", "dotenv file applied before the environment")
	sqlText := flag.String("sql", "", "run a SQL statement and print its rows instead of starting the UI")
	flag.Parse()

	if err := run(*configPath, *envFile, *sqlText); err != nil {
		fmt.Fprintln(os.Stderr, "tracknn:", err)
		os.Exit(1)
	}
}

func run(configPath, envFile, sqlText string) error {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return err
	}
	reg := metrics.NewRegistry()
	logger, closeLog, err := newLogger(cfg, sqlText == "", reg)
	if err != nil {
		return err
	}
	defer closeLog()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
	}

	a, err := newApp(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	if sqlText != "" {
		return a.RunSQL(ctx, os.Stdout, sqlText)
	}
	p := tea.NewProgram(newModel(ctx, a, cfg.Step), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func metricsMux(reg *metrics.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	return mux
}
