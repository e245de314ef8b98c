package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/faciam-dev/gcform/internal/export"
	"github.com/faciam-dev/gcform/internal/metrics"
	"github.com/faciam-dev/gcform/internal/watch"
	"github.com/faciam-dev/gcform/sdk"
)

// RunConfig configures Run.
type RunConfig struct {
	Addr   string
	Router Config
	// Watch reloads the schema when another program edits the document.
	Watch bool
	// MetricsInterval refreshes the state gauges; 0 means every minute.
	MetricsInterval time.Duration
	// ExportCron schedules Exporter, e.g. "0 3 * * *". Both must be set.
	ExportCron string
	Exporter   *export.SQLExporter
	Logger     *slog.Logger
}

const shutdownTimeout = 10 * time.Second

// Run serves svc until ctx is cancelled.
func Run(ctx context.Context, svc *sdk.Service, cfg RunConfig) error {
	lg := cfg.Logger
	if lg == nil {
		lg = slog.Default()
	}

	if cfg.Watch {
		w := watch.New(svc.SchemaPath(), func(context.Context) error {
			return svc.SchemaReloaded()
		}, 0, lg)
		stop, err := w.Start(ctx)
		if err != nil {
			return fmt.Errorf("watch %s: %w", svc.SchemaPath(), err)
		}
		defer stop()
	}

	s, err := schedule(svc, cfg, lg)
	if err != nil {
		return err
	}
	s.StartAsync()
	defer s.Stop()

	api := New(svc, cfg.Router)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.Adapter(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		lg.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func schedule(svc *sdk.Service, cfg RunConfig, lg *slog.Logger) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)
	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = time.Minute
	}
	if _, err := s.Every(interval).Do(func() {
		if err := metrics.Refresh(svc); err != nil {
			lg.Warn("refresh metrics", "err", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule metrics: %w", err)
	}

	if cfg.ExportCron != "" && cfg.Exporter != nil {
		if _, err := s.Cron(cfg.ExportCron).Do(func() {
			recs, err := svc.Records()
			if err != nil {
				lg.Error("load records for export", "err", err)
				return
			}
			n, err := cfg.Exporter.Export(context.Background(), recs)
			if err != nil {
				lg.Error("export records", "err", err)
				return
			}
			lg.Info("exported records", "count", n)
		}); err != nil {
			return nil, fmt.Errorf("schedule export %q: %w", cfg.ExportCron, err)
		}
	}
	return s, nil
}
