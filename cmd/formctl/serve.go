package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/gcform/internal/logger"
	"github.com/faciam-dev/gcform/internal/server"
	"github.com/faciam-dev/gcform/pkg/util"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local schema and records over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.svc == nil {
				return errors.New("serve works on local files; unset --api-url")
			}
			lg, err := logger.New(os.Stderr, a.cfg.LogLevel, "text")
			if err != nil {
				return err
			}
			logger.Set(lg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, a.svc, server.RunConfig{
				Addr:   addr,
				Router: server.Config{JWTSecret: util.GetEnv("JWT_SECRET", "")},
				Watch:  !noWatch,
				Logger: lg,
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the schema when the file changes")
	return cmd
}
