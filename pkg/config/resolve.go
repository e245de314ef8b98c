package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
)

// EnvPrefix prefixes every environment variable read by Resolve.
const EnvPrefix = "FORMCTL"

// Env is the environment layer, e.g. FORMCTL_SCHEMA_FILE.
type Env struct {
	SchemaFile   string `envconfig:"SCHEMA_FILE"`
	RecordFile   string `envconfig:"RECORD_FILE"`
	Columns      int    `envconfig:"COLUMNS"`
	EventsConfig string `envconfig:"EVENTS_CONFIG"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	APIURL       string `envconfig:"API_URL"`
	Token        string `envconfig:"TOKEN"`
}

// LoadEnv reads the environment after loading an optional .env file from
// the working directory. Variables already set win over the file.
func LoadEnv() (Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Env{}, fmt.Errorf(".env: %w", err)
	}
	var e Env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return Env{}, err
	}
	return e, nil
}

type Resolved struct {
	SchemaFile    string
	RecordFile    string
	ColumnsPerRow int
	EventsConfig  string
	LogLevel      string
	// APIURL selects remote mode when set.
	APIURL  string
	Token   string
	Profile string
}

// Remote reports whether commands should talk to an API server.
func (r Resolved) Remote() bool { return r.APIURL != "" }

// Resolve applies flag > env > file > defaults.
func Resolve(cmd *cobra.Command) (Resolved, error) {
	flags := cmd.Root().PersistentFlags()
	flagSchema, _ := flags.GetString("schema-file")
	flagRecord, _ := flags.GetString("record-file")
	flagColumns, _ := flags.GetInt("columns")
	flagEvents, _ := flags.GetString("events-config")
	flagLevel, _ := flags.GetString("log-level")
	flagURL, _ := flags.GetString("api-url")
	flagToken, _ := flags.GetString("token")

	env, err := LoadEnv()
	if err != nil {
		return Resolved{}, err
	}

	cfg, err := Load()
	if err != nil {
		return Resolved{}, err
	}
	prof := cfg.Active
	if p, _ := flags.GetString("profile"); p != "" {
		prof = p
	}
	cp := cfg.Profiles[prof]

	columns := firstPositive(flagColumns, env.Columns, cfg.ColumnsPerRow, DefaultColumns)
	return Resolved{
		SchemaFile:    firstNonEmpty(flagSchema, env.SchemaFile, cfg.SchemaFile, DefaultSchemaFile),
		RecordFile:    firstNonEmpty(flagRecord, env.RecordFile, cfg.RecordFile, DefaultRecordFile),
		ColumnsPerRow: columns,
		EventsConfig:  firstNonEmpty(flagEvents, env.EventsConfig, cfg.EventsConfig),
		LogLevel:      firstNonEmpty(flagLevel, env.LogLevel, cfg.LogLevel, "warn"),
		APIURL:        firstNonEmpty(flagURL, env.APIURL, cp.APIURL),
		Token:         firstNonEmpty(flagToken, env.Token, cp.Token),
		Profile:       prof,
	}, nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func firstPositive(ns ...int) int {
	for _, n := range ns {
		if n > 0 {
			return n
		}
	}
	return 0
}
