package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/faciam-dev/gcform/internal/events"
	"github.com/faciam-dev/gcform/internal/logger"
	"github.com/faciam-dev/gcform/pkg/config"
	"github.com/faciam-dev/gcform/sdk"
	"github.com/faciam-dev/gcform/sdk/client"
)

// app bundles what a command needs after configuration was resolved.
type app struct {
	cfg    config.Resolved
	log    *zap.SugaredLogger
	client client.Client
	// svc is nil when talking to an API server.
	svc    *sdk.Service
	closer io.Closer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Resolve(cmd)
	if err != nil {
		return nil, err
	}
	lg, err := logger.Zap(cfg.LogLevel, "text")
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: lg}
	if cfg.Remote() {
		lg.Debugw("using api server", "url", cfg.APIURL, "profile", cfg.Profile)
		a.client = client.NewHTTP(cfg.APIURL, client.WithToken(cfg.Token))
		return a, nil
	}
	a.svc, a.closer, err = openService(cfg, lg)
	if err != nil {
		return nil, err
	}
	a.client = client.NewLocalService(a.svc)
	return a, nil
}

// openService opens the local stores with the configured event sinks.
func openService(cfg config.Resolved, lg *zap.SugaredLogger) (*sdk.Service, io.Closer, error) {
	ec, err := events.LoadConfig(cfg.EventsConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("events config: %w", err)
	}
	disp, closer, err := events.Build(ec, lg)
	if err != nil {
		// a sink that cannot start does not block local work
		lg.Warnw("some event sinks are disabled", "err", err)
	}
	svc := sdk.New(sdk.ServiceConfig{
		SchemaPath:    cfg.SchemaFile,
		RecordPath:    cfg.RecordFile,
		ColumnsPerRow: cfg.ColumnsPerRow,
		Logger:        lg,
		Events:        disp,
	})
	return svc, closer, nil
}

func (a *app) Close() {
	if a.svc != nil {
		a.svc.Close()
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.log.Warnw("closing event sinks", "err", err)
		}
	}
	_ = a.log.Sync()
}

// withApp runs fn with an app built from cmd and closes it afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}
