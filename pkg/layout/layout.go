// Package layout places fields on the data-entry grid.
package layout

import (
	"strings"

	"github.com/faciam-dev/gcform/pkg/schema"
)

// DefaultColumns is the number of fields per row when none is configured.
const DefaultColumns = 3

// Cell is the grid position of one field. Each field occupies a label
// column followed by an input column.
type Cell struct {
	Field schema.Field `json:"field"`
	Row   int          `json:"row"`
	Col   int          `json:"col"`
}

// LabelColumn is the physical grid column holding the caption.
func (c Cell) LabelColumn() int { return c.Col * 2 }

// InputColumn is the physical grid column holding the input.
func (c Cell) InputColumn() int { return c.Col*2 + 1 }

// Resolve assigns grid positions to fields, which must already be in display
// order. A field with NewRow starts a new row unless it is already at the
// start of one. columnsPerRow <= 0 means DefaultColumns.
func Resolve(fields []schema.Field, columnsPerRow int) []Cell {
	if columnsPerRow <= 0 {
		columnsPerRow = DefaultColumns
	}
	cells := make([]Cell, 0, len(fields))
	row, col := 0, 0
	for _, f := range fields {
		if f.NewRow && col > 0 {
			row, col = row+1, 0
		}
		cells = append(cells, Cell{Field: f, Row: row, Col: col})
		col++
		if col >= columnsPerRow {
			row, col = row+1, 0
		}
	}
	return cells
}

// Rows groups cells by row index. Rows without cells do not occur.
func Rows(cells []Cell) [][]Cell {
	var out [][]Cell
	for _, c := range cells {
		if len(out) == 0 || out[len(out)-1][0].Row != c.Row {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], c)
	}
	return out
}

// Caption renders the label shown next to an input: the label, the unit in
// parentheses and an asterisk for required fields.
func Caption(f schema.Field) string {
	var b strings.Builder
	b.WriteString(f.Label)
	if f.Unit != "" {
		b.WriteString(" (")
		b.WriteString(f.Unit)
		b.WriteString(")")
	}
	if f.Required {
		b.WriteString(" *")
	}
	return b.String()
}
