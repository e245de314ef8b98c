package validate

import (
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/value"
)

// table keeps only rows with at least one non-empty cell. Kept rows carry
// every column of the field in column order.
func table(f schema.Field, raw any, fail failFunc) value.Value {
	cols := f.Columns()
	known := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		known[c] = struct{}{}
	}

	inputs, ok := tableInput(raw)
	if !ok {
		fail(CodeInvalidFormat, "must be a list of rows")
		return value.Table(nil)
	}

	unknown := map[string]struct{}{}
	var rows []value.Row
	for i, in := range inputs {
		cells := map[string]string{}
		switch r := in.(type) {
		case map[string]string:
			for k, v := range r {
				cells[k] = v
			}
		case map[string]any:
			for k, v := range r {
				cells[k] = cast.ToString(v)
			}
		case value.Row:
			for _, c := range r {
				cells[c.Column] = c.Text
			}
		case []string:
			if !positional(cells, cols, toAny(r), i, fail) {
				continue
			}
		case []any:
			if !positional(cells, cols, r, i, fail) {
				continue
			}
		case nil:
		default:
			fail(CodeInvalidFormat, "row %d is not a row", i+1)
			continue
		}
		for k, v := range cells {
			if _, ok := known[k]; !ok && strings.TrimSpace(v) != "" {
				unknown[k] = struct{}{}
			}
		}
		row := make(value.Row, len(cols))
		for j, c := range cols {
			row[j] = value.Cell{Column: c, Text: strings.TrimSpace(cells[c])}
		}
		if row.Populated() {
			rows = append(rows, row)
		}
	}

	if len(unknown) > 0 {
		names := make([]string, 0, len(unknown))
		for k := range unknown {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fail(CodeUnknownColumn, "column %q is not defined", k)
		}
	}
	if limit := f.EffectiveTableRows(); len(rows) > limit {
		fail(CodeTooManyRows, "has %d rows, at most %d allowed", len(rows), limit)
	}
	if f.Required && len(rows) == 0 {
		fail(CodeRequired, "needs at least one filled row")
	}
	return value.Table(rows)
}

func positional(cells map[string]string, cols []string, r []any, i int, fail failFunc) bool {
	if len(r) > len(cols) {
		fail(CodeUnknownColumn, "row %d has %d cells for %d columns", i+1, len(r), len(cols))
		return false
	}
	for j, v := range r {
		cells[cols[j]] = cast.ToString(v)
	}
	return true
}

func tableInput(raw any) ([]any, bool) {
	switch x := raw.(type) {
	case nil:
		return nil, true
	case string:
		return nil, strings.TrimSpace(x) == ""
	case value.Value:
		if x.Kind != value.KindTable {
			return nil, x.Kind == value.KindText && strings.TrimSpace(x.Text) == ""
		}
		out := make([]any, len(x.Rows))
		for i, r := range x.Rows {
			out[i] = r
		}
		return out, true
	case []value.Row:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = r
		}
		return out, true
	case []map[string]string:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = r
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = r
		}
		return out, true
	case [][]string:
		out := make([]any, len(x))
		for i, r := range x {
			out[i] = r
		}
		return out, true
	case []any:
		return x, true
	}
	return nil, false
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
