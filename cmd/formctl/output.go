package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Root().PersistentFlags().GetString("output")
	if err != nil {
		return "", err
	}
	switch format {
	case "", "table":
		return "table", nil
	case "json":
		return "json", nil
	}
	return "", fmt.Errorf("--output must be table or json, got %q", format)
}

// printOutput writes v as indented JSON with --output json and calls table
// otherwise.
func printOutput(cmd *cobra.Command, v any, table func(tw *tablewriter.Table)) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	if format == "json" || table == nil {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}
	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetAutoWrapText(false)
	table(tw)
	tw.Render()
	return nil
}

// isTerminal is replaced in tests.
var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// confirm asks before a destructive action. Non-interactive runs and --yes
// proceed without asking.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	yes, _ := cmd.Root().PersistentFlags().GetBool("yes")
	if yes || !isTerminal() {
		return true, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
