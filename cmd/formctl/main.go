package main

import (
	"log"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formctl",
		Short:         "Manage inspection form schemas and submitted records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.String("schema-file", "", "Schema document path (default form_config.yaml)")
	pf.String("record-file", "", "Record history path (default input_data.yaml)")
	pf.Int("columns", 0, "Fields per layout row (default 3)")
	pf.String("events-config", "", "YAML file configuring event sinks")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.String("api-url", "", "API server base URL; empty works on local files")
	pf.String("token", "", "Bearer token for the API server")
	pf.String("profile", "", "Profile name in config (overrides active)")
	pf.String("output", "table", "Output format (table|json)")
	pf.Bool("yes", false, "Do not ask for confirmation")

	root.AddCommand(newSchemaCmd())
	root.AddCommand(newRecordCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newServeCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
