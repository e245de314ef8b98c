package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	apischema "github.com/faciam-dev/gcform/internal/api/schema"
	"github.com/faciam-dev/gcform/internal/export"
	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/validate"
	"github.com/faciam-dev/gcform/pkg/value"
)

const secretMask = "********"

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "record", Short: "Submit and inspect data-entry records"}
	cmd.AddCommand(newRecordSubmitCmd())
	cmd.AddCommand(newRecordListCmd())
	cmd.AddCommand(newRecordResetCmd())
	cmd.AddCommand(newRecordExportSQLCmd())
	return cmd
}

// parseAssignments splits label=value pairs. Table values are YAML or JSON
// lists of rows.
func parseAssignments(d *validate.Draft, scalars, tables []string) error {
	for _, s := range scalars {
		label, v, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("--set %q: expected label=value", s)
		}
		d.Set(label, v)
	}
	for _, s := range tables {
		label, v, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("--table %q: expected label=rows", s)
		}
		var rows any
		if err := yaml.Unmarshal([]byte(v), &rows); err != nil {
			return fmt.Errorf("--table %s: %w", label, err)
		}
		d.Set(label, rows)
	}
	return nil
}

func newRecordSubmitCmd() *cobra.Command {
	var (
		header  record.Header
		scalars []string
		tables  []string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Validate values against the schema and store them as a record",
		Example: `  formctl record submit --product 製品A --lot LOT-1 --set 電圧=12.5 --set 外観=OK \
    --table '寸法表=[{A: "1", B: "2"}]'`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			d := validate.NewDraft()
			d.Header = header
			if err := parseAssignments(d, scalars, tables); err != nil {
				return err
			}
			if dryRun {
				details, err := a.client.Validate(cmd.Context(), d)
				if err != nil {
					return reportInvalid(cmd, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Valid: %d values\n", details.Len())
				return nil
			}
			rec, err := a.client.Submit(cmd.Context(), d)
			if err != nil {
				return reportInvalid(cmd, err)
			}
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			if format == "json" {
				return printOutput(cmd, apischema.Stored{Record: rec}, nil)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored record %s (%s %s/%s)\n", rec.ID, rec.EntryDate, rec.ProductName, rec.LotNo)
			return nil
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&header.EntryDate, "entry-date", "", "entry date (YYYY-MM-DD, default today)")
	fs.StringVar(&header.ProductName, "product", "", "product name")
	fs.StringVar(&header.LotNo, "lot", "", "lot number")
	fs.StringArrayVar(&scalars, "set", nil, "field value as label=value (repeatable)")
	fs.StringArrayVar(&tables, "table", nil, "table value as label=rows (repeatable)")
	fs.BoolVar(&dryRun, "dry-run", false, "validate only")
	return cmd
}

// reportInvalid prints per-field problems before returning err.
func reportInvalid(cmd *cobra.Command, err error) error {
	verrs, ok := validate.AsErrors(err)
	if !ok {
		return err
	}
	for _, e := range verrs {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s (%s)\n", e.Label, e.Message, e.Code)
	}
	return fmt.Errorf("%d invalid values", len(verrs))
}

func newRecordListCmd() *cobra.Command {
	var showSecrets bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records in creation order",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			recs, err := a.client.Records(cmd.Context())
			if err != nil {
				return err
			}
			if !showSecrets {
				fields, err := a.client.Fields(cmd.Context())
				if err != nil {
					return err
				}
				recs = maskSecrets(recs, fields)
			}
			return printOutput(cmd, apischema.Records{Records: recs}, func(tw *tablewriter.Table) {
				tw.SetHeader([]string{"#", "Entry date", "Product", "Lot", "Registered", "Details"})
				for i, r := range recs {
					tw.Append([]string{
						strconv.Itoa(i + 1), r.EntryDate, r.ProductName, r.LotNo,
						r.RegisteredAt.Local().Format(time.DateTime), details(r.Details),
					})
				}
			})
		}),
	}
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print password values")
	return cmd
}

// maskSecrets hides values of labels that are passwords in the current
// schema. Records are copied, never modified in place.
func maskSecrets(recs []record.Record, fields []schema.Field) []record.Record {
	secret := map[string]bool{}
	for _, f := range fields {
		if f.Type == schema.TypePassword {
			secret[f.Label] = true
		}
	}
	if len(secret) == 0 {
		return recs
	}
	out := make([]record.Record, len(recs))
	for i, r := range recs {
		m := value.NewMap(r.Details.Len())
		for _, k := range r.Details.Keys() {
			v, _ := r.Details.Get(k)
			if secret[k] && v.Kind == value.KindText && v.Text != "" {
				v = value.Text(secretMask)
			}
			m.Set(k, v)
		}
		r.Details = m
		out[i] = r
	}
	return out
}

func details(m value.Map) string {
	parts := make([]string, 0, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		parts = append(parts, k+"="+v.String())
	}
	return strings.Join(parts, "\n")
}

func newRecordResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the whole record history",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ok, err := confirm(cmd, "Delete every stored record?")
			if err != nil || !ok {
				return err
			}
			if err := a.client.ResetRecords(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Record history reset")
			return nil
		}),
	}
}

func newRecordExportSQLCmd() *cobra.Command {
	var dsn, driver, table string
	cmd := &cobra.Command{
		Use:   "export-sql",
		Short: "Copy the record history into a SQL table",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if dsn == "" {
				return errors.New("--db is required")
			}
			recs, err := a.client.Records(cmd.Context())
			if err != nil {
				return err
			}
			db, dialect, err := export.Open(cmd.Context(), driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			exp := &export.SQLExporter{DB: db, Dialect: dialect, Table: table, Logger: a.log}
			n, err := exp.Export(cmd.Context(), recs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records\n", n)
			return nil
		}),
	}
	cmd.Flags().StringVar(&dsn, "db", "", "database DSN")
	cmd.Flags().StringVar(&driver, "driver", "", "database driver (postgres|mysql|sqlite3); detected from the DSN when empty")
	cmd.Flags().StringVar(&table, "table", export.DefaultTable, "target table")
	return cmd
}
