// Package value holds the canonical, type-correct representation of
// submitted field values.
package value

import (
	"github.com/shopspring/decimal"
)

// Kind is the shape of a canonical value.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindTable  Kind = "table"
)

// Value is a canonical field value. Exactly one of Text, Number or Rows is
// meaningful, selected by Kind.
type Value struct {
	Kind   Kind
	Text   string
	Number decimal.Decimal
	Rows   []Row
}

// Text returns a text value.
func Text(s string) Value { return Value{Kind: KindText, Text: s} }

// Number returns a numeric value.
func Number(d decimal.Decimal) Value { return Value{Kind: KindNumber, Number: d} }

// Table returns a table value.
func Table(rows []Row) Value { return Value{Kind: KindTable, Rows: rows} }

// Equal reports whether v and o hold the same canonical value.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Number.Equal(o.Number)
	case KindTable:
		if len(v.Rows) != len(o.Rows) {
			return false
		}
		for i := range v.Rows {
			if !v.Rows[i].Equal(o.Rows[i]) {
				return false
			}
		}
		return true
	default:
		return v.Text == o.Text
	}
}

// Interface returns the natural Go form: string, float64 or []map[string]string.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNumber:
		f, _ := v.Number.Float64()
		return f
	case KindTable:
		out := make([]map[string]string, len(v.Rows))
		for i, r := range v.Rows {
			out[i] = r.Map()
		}
		return out
	default:
		return v.Text
	}
}

// String renders the value for display.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return v.Number.String()
	case KindTable:
		b, _ := v.MarshalJSON()
		return string(b)
	default:
		return v.Text
	}
}

// Cell is one column of a table row.
type Cell struct {
	Column string
	Text   string
}

// Row is an ordered list of cells.
type Row []Cell

// Get returns the text of column col.
func (r Row) Get(col string) (string, bool) {
	for _, c := range r {
		if c.Column == col {
			return c.Text, true
		}
	}
	return "", false
}

// Populated reports whether any cell is non-empty.
func (r Row) Populated() bool {
	for _, c := range r {
		if c.Text != "" {
			return true
		}
	}
	return false
}

// Map returns the row as an unordered map.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r))
	for _, c := range r {
		m[c.Column] = c.Text
	}
	return m
}

// Equal compares rows cell by cell.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i] != o[i] {
			return false
		}
	}
	return true
}
