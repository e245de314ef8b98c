package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/faciam-dev/gcform/internal/events"
	"github.com/faciam-dev/gcform/internal/export"
	"github.com/faciam-dev/gcform/internal/logger"
	"github.com/faciam-dev/gcform/internal/server"
	"github.com/faciam-dev/gcform/pkg/util"
	"github.com/faciam-dev/gcform/sdk"
)

func main() {
	schemaFile := flag.String("schema-file", util.GetEnv("SCHEMA_FILE", "form_config.yaml"), "schema document path")
	recordFile := flag.String("record-file", util.GetEnv("RECORD_FILE", "input_data.yaml"), "record history path")
	columns := flag.Int("columns", 0, "fields per layout row (default 3)")
	eventsConfig := flag.String("events-config", util.GetEnv("EVENTS_CONFIG", ""), "YAML file configuring event sinks")
	addr := flag.String("addr", ":8080", "listen address")
	logLevel := flag.String("log-level", util.GetEnv("LOG_LEVEL", "info"), "log level")
	logFormat := flag.String("log-format", util.GetEnv("LOG_FORMAT", "text"), "log format (text|json)")
	noWatch := flag.Bool("no-watch", false, "do not reload the schema when the file changes")
	metricsEvery := flag.Duration("metrics-interval", time.Minute, "state gauge refresh interval")
	exportDSN := flag.String("export-dsn", util.GetEnv("EXPORT_DSN", ""), "database DSN receiving scheduled record exports")
	exportTable := flag.String("export-table", export.DefaultTable, "export table")
	exportCron := flag.String("export-cron", "0 3 * * *", "export schedule")
	openapi := flag.String("openapi", "", "write OpenAPI JSON and exit")
	flag.Parse()

	lg, err := logger.New(os.Stdout, *logLevel, *logFormat)
	if err != nil {
		logger.L.Error("logger", "err", err)
		os.Exit(1)
	}
	logger.Set(lg)
	zl, err := logger.Zap(*logLevel, *logFormat)
	if err != nil {
		logger.L.Error("logger", "err", err)
		os.Exit(1)
	}
	defer func() { _ = zl.Sync() }()

	ecfg, err := events.LoadConfig(*eventsConfig)
	if err != nil {
		logger.L.Error("events config", "path", *eventsConfig, "err", err)
		os.Exit(1)
	}
	disp, closer, err := events.Build(ecfg, zl)
	if err != nil {
		logger.L.Warn("event sinks", "err", err)
	}
	defer closer.Close()

	svc := sdk.New(sdk.ServiceConfig{
		SchemaPath:    *schemaFile,
		RecordPath:    *recordFile,
		ColumnsPerRow: *columns,
		Logger:        zl,
		Events:        disp,
	})
	defer svc.Close()

	routerCfg := server.Config{
		AllowedOrigins: util.GetEnvList("ALLOWED_ORIGINS", ""),
		JWTSecret:      os.Getenv("JWT_SECRET"),
	}

	if *openapi != "" {
		api := server.New(svc, routerCfg)
		data, err := json.MarshalIndent(api.OpenAPI(), "", "  ")
		if err != nil {
			logger.L.Error("marshal openapi", "err", err)
			os.Exit(1)
		}
		p := filepath.Clean(*openapi)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			logger.L.Error("write openapi", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCfg := server.RunConfig{
		Addr:            *addr,
		Router:          routerCfg,
		Watch:           !*noWatch,
		MetricsInterval: *metricsEvery,
		Logger:          lg,
	}
	if *exportDSN != "" {
		db, dialect, err := export.Open(ctx, "", *exportDSN)
		if err != nil {
			logger.L.Error("export db", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		runCfg.ExportCron = *exportCron
		runCfg.Exporter = &export.SQLExporter{DB: db, Dialect: dialect, Table: *exportTable, Logger: zl}
	}

	if err := server.Run(ctx, svc, runCfg); err != nil {
		logger.L.Error("server error", "err", err)
		os.Exit(1)
	}
}
