package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	apischema "github.com/faciam-dev/gcform/internal/api/schema"
	"github.com/faciam-dev/gcform/internal/fileutil"
	"github.com/faciam-dev/gcform/pkg/codec"
	"github.com/faciam-dev/gcform/pkg/layout"
	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/sdk"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "schema", Short: "Edit the form schema"}
	cmd.AddCommand(newSchemaListCmd())
	cmd.AddCommand(newSchemaAddCmd())
	cmd.AddCommand(newSchemaUpdateCmd())
	cmd.AddCommand(newSchemaDeleteCmd())
	cmd.AddCommand(newSchemaNormalizeCmd())
	cmd.AddCommand(newSchemaResetCmd())
	cmd.AddCommand(newSchemaLayoutCmd())
	cmd.AddCommand(newSchemaValidateCmd())
	cmd.AddCommand(newSchemaExportCmd())
	cmd.AddCommand(newSchemaDiffCmd())
	return cmd
}

func newSchemaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List field definitions in storage order",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			fields, err := a.client.Fields(cmd.Context())
			if err != nil {
				return err
			}
			return printOutput(cmd, apischema.Schema{Fields: fields}, func(tw *tablewriter.Table) {
				tw.SetHeader([]string{"#", "Label", "Type", "Unit", "Required", "Order", "New row", "Constraints"})
				for i, f := range fields {
					tw.Append([]string{
						strconv.Itoa(i), f.Label, string(f.Type), f.Unit,
						strconv.FormatBool(f.Required), strconv.Itoa(f.DisplayOrder),
						strconv.FormatBool(f.NewRow), constraints(f),
					})
				}
			})
		}),
	}
}

func constraints(f schema.Field) string {
	var parts []string
	if f.MinValue != nil {
		parts = append(parts, "min="+strconv.FormatFloat(*f.MinValue, 'g', -1, 64))
	}
	if f.MaxValue != nil {
		parts = append(parts, "max="+strconv.FormatFloat(*f.MaxValue, 'g', -1, 64))
	}
	if f.RegexPattern != "" {
		parts = append(parts, "regex="+f.RegexPattern)
	}
	if f.MaxLength > 0 {
		parts = append(parts, "max_length="+strconv.Itoa(f.MaxLength))
	}
	if len(f.TableColumns) > 0 {
		parts = append(parts, "columns="+strings.Join(f.TableColumns, ","))
	}
	if f.TableRows > 0 {
		parts = append(parts, "rows="+strconv.Itoa(f.TableRows))
	}
	return strings.Join(parts, " ")
}

// fieldFlags binds the definition attributes to command flags.
type fieldFlags struct {
	label, typ, unit      string
	required, newRow      bool
	order, column         int
	min, max              float64
	regex                 string
	maxLength, tableRows  int
	tableColumns          []string
	placeholder, helpText string
}

func (ff *fieldFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&ff.label, "label", "", "field label")
	fs.StringVar(&ff.typ, "type", "", "data type ("+typeNames()+")")
	fs.StringVar(&ff.unit, "unit", "", "display unit")
	fs.BoolVar(&ff.required, "required", false, "value is required")
	fs.IntVar(&ff.order, "order", 0, "display order (default after the last field)")
	fs.IntVar(&ff.column, "column", 0, "column position (1-10)")
	fs.BoolVar(&ff.newRow, "new-row", false, "start a new layout row")
	fs.Float64Var(&ff.min, "min", 0, "minimum number")
	fs.Float64Var(&ff.max, "max", 0, "maximum number")
	fs.StringVar(&ff.regex, "regex", "", "pattern for text values")
	fs.IntVar(&ff.maxLength, "max-length", 0, "maximum text length")
	fs.StringSliceVar(&ff.tableColumns, "table-columns", nil, "table column names")
	fs.IntVar(&ff.tableRows, "table-rows", 0, "table input rows")
	fs.StringVar(&ff.placeholder, "placeholder", "", "input placeholder")
	fs.StringVar(&ff.helpText, "help-text", "", "help text")
}

// apply copies every flag the user set onto f.
func (ff *fieldFlags) apply(cmd *cobra.Command, f *schema.Field) error {
	fs := cmd.Flags()
	if fs.Changed("label") {
		f.Label = ff.label
	}
	if fs.Changed("type") {
		t, err := schema.ParseDataType(ff.typ)
		if err != nil {
			return err
		}
		f.Type = t
	}
	if fs.Changed("unit") {
		f.Unit = ff.unit
	}
	if fs.Changed("required") {
		f.Required = ff.required
	}
	if fs.Changed("order") {
		f.DisplayOrder = ff.order
	}
	if fs.Changed("column") {
		f.ColumnPosition = ff.column
	}
	if fs.Changed("new-row") {
		f.NewRow = ff.newRow
	}
	if fs.Changed("min") {
		v := ff.min
		f.MinValue = &v
	}
	if fs.Changed("max") {
		v := ff.max
		f.MaxValue = &v
	}
	if fs.Changed("regex") {
		f.RegexPattern = ff.regex
	}
	if fs.Changed("max-length") {
		f.MaxLength = ff.maxLength
	}
	if fs.Changed("table-columns") {
		f.TableColumns = ff.tableColumns
	}
	if fs.Changed("table-rows") {
		f.TableRows = ff.tableRows
	}
	if fs.Changed("placeholder") {
		f.Placeholder = ff.placeholder
	}
	if fs.Changed("help-text") {
		f.HelpText = ff.helpText
	}
	return nil
}

func typeNames() string {
	names := make([]string, 0, len(schema.AllTypes()))
	for _, t := range schema.AllTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, "|")
}

func newSchemaAddCmd() *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a field definition",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			f := schema.Field{Type: schema.TypeString, DisplayOrder: sdk.AutoOrder}
			if err := ff.apply(cmd, &f); err != nil {
				return err
			}
			added, err := a.client.AddField(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q (order %d)\n", added.Label, added.DisplayOrder)
			return nil
		}),
	}
	ff.bind(cmd)
	mustFlag(cmd, "label")
	return cmd
}

func newSchemaUpdateCmd() *cobra.Command {
	var ff fieldFlags
	cmd := &cobra.Command{
		Use:   "update <index>",
		Short: "Replace the field at index; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			i, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			fields, err := a.client.Fields(cmd.Context())
			if err != nil {
				return err
			}
			if i >= len(fields) {
				return fmt.Errorf("%w: %d (schema has %d fields)", sdk.ErrIndexOutOfRange, i, len(fields))
			}
			f := fields[i]
			if err := ff.apply(cmd, &f); err != nil {
				return err
			}
			updated, err := a.client.UpdateField(cmd.Context(), i, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d: %q\n", i, updated.Label)
			return nil
		}),
	}
	ff.bind(cmd)
	return cmd
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("index must be a non-negative integer, got %q", s)
	}
	return i, nil
}

func newSchemaDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete the field at index",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			i, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, fmt.Sprintf("Delete field %d?", i))
			if err != nil || !ok {
				return err
			}
			if err := a.client.DeleteField(cmd.Context(), i); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted field %d\n", i)
			return nil
		}),
	}
}

func newSchemaNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Sort by display order and renumber from 1",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if err := a.client.NormalizeOrder(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Display order normalized")
			return nil
		}),
	}
}

func newSchemaResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Remove every field definition",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ok, err := confirm(cmd, "Remove all field definitions?")
			if err != nil || !ok {
				return err
			}
			if err := a.client.ResetSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema reset")
			return nil
		}),
	}
}

func newSchemaLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Show the data-entry grid",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			cols := a.cfg.ColumnsPerRow
			cells, err := a.client.Layout(cmd.Context(), cols)
			if err != nil {
				return err
			}
			return printOutput(cmd, apischema.FromCells(cols, cells), func(tw *tablewriter.Table) {
				for _, row := range layout.Rows(cells) {
					line := make([]string, cols*2)
					for _, c := range row {
						if c.InputColumn() >= len(line) {
							continue
						}
						line[c.LabelColumn()] = layout.Caption(c.Field)
						line[c.InputColumn()] = "[" + string(c.Field.Type) + "]"
					}
					tw.Append(line)
				}
			})
		}),
	}
}

func newSchemaValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a schema document without loading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			fields, err := codec.DecodeSchema(data)
			if err != nil {
				return err
			}
			var errs []error
			seen := map[string]int{}
			for i, f := range fields {
				n := f.Normalize()
				if err := schema.Check(n); err != nil {
					errs = append(errs, fmt.Errorf("field %d: %w", i, err))
				}
				if j, dup := seen[n.Label]; dup {
					errs = append(errs, fmt.Errorf("field %d: %w: %q also used by field %d", i, sdk.ErrDuplicateLabel, n.Label, j))
				}
				seen[n.Label] = i
			}
			if len(errs) > 0 {
				return errors.Join(errs...)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d fields OK\n", args[0], len(fields))
			return nil
		},
	}
}

func newSchemaExportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the schema as a canonical YAML document",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			fields, err := a.client.Fields(cmd.Context())
			if err != nil {
				return err
			}
			data, err := codec.EncodeSchema(fields)
			if err != nil {
				return err
			}
			if file == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := fileutil.WriteAtomic(file, data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d fields to %s\n", len(fields), file)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "output file (default stdout)")
	return cmd
}
