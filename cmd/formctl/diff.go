package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/gcform/pkg/codec"
	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/sdk"
)

var exitFunc = os.Exit

func newSchemaDiffCmd() *cobra.Command {
	var fail bool
	cmd := &cobra.Command{
		Use:   "diff <file> [<file>]",
		Short: "Compare a schema document with the current schema or another document",
		Long: "With one file, shows what loading that file would change in the current schema.\n" +
			"With two files, compares the first against the second.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := schemaDiff(cmd, args)
			if err != nil {
				return err
			}
			if d.Report.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "✅ No schema changes.")
				return nil
			}
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			if format == "json" {
				return printOutput(cmd, d.Report, nil)
			}
			var b bytes.Buffer
			writeChanges(&b, d.Changes)
			b.WriteString(d.Text)
			fmt.Fprintf(&b, "added: %d, deleted: %d, updated: %d\n", d.Report.Added, d.Report.Deleted, d.Report.Updated)
			cmd.Print(b.String())
			if fail {
				exitFunc(2)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fail, "fail-on-change", false, "exit with status 2 when the schemas differ")
	return cmd
}

func schemaDiff(cmd *cobra.Command, args []string) (sdk.SchemaDiff, error) {
	target, err := os.ReadFile(args[len(args)-1])
	if err != nil {
		return sdk.SchemaDiff{}, err
	}
	if len(args) == 2 {
		base, err := os.ReadFile(args[0])
		if err != nil {
			return sdk.SchemaDiff{}, err
		}
		return sdk.DiffSchemas(base, target)
	}

	a, err := newApp(cmd)
	if err != nil {
		return sdk.SchemaDiff{}, err
	}
	defer a.Close()
	current, err := a.client.Fields(cmd.Context())
	if err != nil {
		return sdk.SchemaDiff{}, err
	}
	next, err := codec.DecodeSchema(target)
	if err != nil {
		return sdk.SchemaDiff{}, err
	}
	return sdk.DiffFields(current, next)
}

func writeChanges(b *bytes.Buffer, changes []schema.Change) {
	for _, c := range changes {
		switch c.Type {
		case schema.ChangeAdded:
			fmt.Fprintf(b, "+ %s (%s)\n", c.Label(), c.New.Type)
		case schema.ChangeDeleted:
			fmt.Fprintf(b, "- %s (%s)\n", c.Label(), c.Old.Type)
		case schema.ChangeUpdated:
			fmt.Fprintf(b, "~ %s\n", c.Label())
		}
	}
}
