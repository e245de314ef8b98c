package schema

import (
	"github.com/faciam-dev/gcform/pkg/layout"
	"github.com/faciam-dev/gcform/pkg/record"
	fieldschema "github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/value"
)

// Field is the request body for creating or replacing a field definition.
// A missing display_order places a new field after every existing one and
// keeps the current order on update.
type Field struct {
	Label          string   `json:"label"`
	Type           string   `json:"type"`
	Unit           string   `json:"unit,omitempty"`
	Required       bool     `json:"required,omitempty"`
	DisplayOrder   *int     `json:"display_order,omitempty"`
	ColumnPosition int      `json:"column_position,omitempty"`
	NewRow         bool     `json:"new_row,omitempty"`
	MinValue       *float64 `json:"min_value,omitempty"`
	MaxValue       *float64 `json:"max_value,omitempty"`
	RegexPattern   string   `json:"regex_pattern,omitempty"`
	MaxLength      int      `json:"max_length,omitempty"`
	TableColumns   []string `json:"table_columns,omitempty"`
	TableRows      int      `json:"table_rows,omitempty"`
	Placeholder    string   `json:"placeholder,omitempty"`
	HelpText       string   `json:"help_text,omitempty"`
}

// FromField converts a definition into a request body.
func FromField(f fieldschema.Field) Field {
	order := f.DisplayOrder
	return Field{
		Label:          f.Label,
		Type:           string(f.Type),
		Unit:           f.Unit,
		Required:       f.Required,
		DisplayOrder:   &order,
		ColumnPosition: f.ColumnPosition,
		NewRow:         f.NewRow,
		MinValue:       f.MinValue,
		MaxValue:       f.MaxValue,
		RegexPattern:   f.RegexPattern,
		MaxLength:      f.MaxLength,
		TableColumns:   f.TableColumns,
		TableRows:      f.TableRows,
		Placeholder:    f.Placeholder,
		HelpText:       f.HelpText,
	}
}

// ToField converts the body into a definition. auto is used when
// display_order is absent.
func (in Field) ToField(auto int) (fieldschema.Field, error) {
	t, err := fieldschema.ParseDataType(in.Type)
	if err != nil {
		return fieldschema.Field{}, err
	}
	order := auto
	if in.DisplayOrder != nil {
		order = *in.DisplayOrder
	}
	return fieldschema.Field{
		Label:          in.Label,
		Type:           t,
		Unit:           in.Unit,
		Required:       in.Required,
		DisplayOrder:   order,
		ColumnPosition: in.ColumnPosition,
		NewRow:         in.NewRow,
		MinValue:       in.MinValue,
		MaxValue:       in.MaxValue,
		RegexPattern:   in.RegexPattern,
		MaxLength:      in.MaxLength,
		TableColumns:   in.TableColumns,
		TableRows:      in.TableRows,
		Placeholder:    in.Placeholder,
		HelpText:       in.HelpText,
	}, nil
}

// IndexedField is a stored definition with its storage index.
type IndexedField struct {
	Index int               `json:"index"`
	Field fieldschema.Field `json:"field"`
}

// Schema lists the definitions in storage order.
type Schema struct {
	Fields []fieldschema.Field `json:"fields"`
}

// Cell is one placed field of the data-entry grid.
type Cell struct {
	Row         int               `json:"row"`
	Col         int               `json:"col"`
	LabelColumn int               `json:"label_column"`
	InputColumn int               `json:"input_column"`
	Caption     string            `json:"caption"`
	Field       fieldschema.Field `json:"field"`
}

// Layout is the resolved grid.
type Layout struct {
	Columns int    `json:"columns"`
	Cells   []Cell `json:"cells"`
}

// FromCells converts resolved cells.
func FromCells(columns int, cells []layout.Cell) Layout {
	out := Layout{Columns: columns, Cells: make([]Cell, len(cells))}
	for i, c := range cells {
		out.Cells[i] = Cell{
			Row:         c.Row,
			Col:         c.Col,
			LabelColumn: c.LabelColumn(),
			InputColumn: c.InputColumn(),
			Caption:     layout.Caption(c.Field),
			Field:       c.Field,
		}
	}
	return out
}

// ToCells converts the grid back into resolved cells.
func (l Layout) ToCells() []layout.Cell {
	out := make([]layout.Cell, len(l.Cells))
	for i, c := range l.Cells {
		out[i] = layout.Cell{Field: c.Field, Row: c.Row, Col: c.Col}
	}
	return out
}

// Submission is one filled-in form. Values are keyed by field label; table
// values are lists of column to text objects.
type Submission struct {
	EntryDate   string         `json:"entry_date,omitempty"`
	ProductName string         `json:"product_name,omitempty"`
	LotNo       string         `json:"lot_no,omitempty"`
	Values      map[string]any `json:"values,omitempty"`
}

// Header returns the record header part.
func (s Submission) Header() record.Header {
	return record.Header{EntryDate: s.EntryDate, ProductName: s.ProductName, LotNo: s.LotNo}
}

// Stored is the record created by a submission.
type Stored struct {
	Record record.Record `json:"record"`
}

// Records lists the history in creation order.
type Records struct {
	Records []record.Record `json:"records"`
}

// Validated holds the canonical values of an accepted submission.
type Validated struct {
	Details value.Map `json:"details"`
}
