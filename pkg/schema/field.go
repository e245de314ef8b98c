package schema

import (
	"fmt"
	"strings"
)

// DataType identifies how a field value is coerced and validated.
type DataType string

const (
	TypeString   DataType = "string"
	TypePassword DataType = "password"
	TypeNumber   DataType = "number"
	TypeDate     DataType = "date"
	TypeDateTime DataType = "datetime"
	TypeTime     DataType = "time"
	TypeTable    DataType = "table"
)

const (
	// DefaultMaxLength applies to string and password fields without max_length.
	DefaultMaxLength = 255
	// MaxMaxLength is the largest accepted max_length.
	MaxMaxLength = 10000
	// DefaultTableRows is the number of input rows offered by a table field.
	DefaultTableRows = 20
	// MaxTableRows is the largest accepted table_rows.
	MaxTableRows = 200
	// MaxColumnPosition is the largest accepted column_position.
	MaxColumnPosition = 10
	// DefaultTableColumn names the single column of a table without table_columns.
	// It matches the header earlier releases stored in records.
	DefaultTableColumn = "列1"
)

// legacyTypes maps the type names written by the first releases.
var legacyTypes = map[string]DataType{
	"文字列":   TypeString,
	"パスワード": TypePassword,
	"数値":    TypeNumber,
	"日付":    TypeDate,
	"日付時刻":  TypeDateTime,
	"時刻":    TypeTime,
	"表形式":   TypeTable,
}

// AllTypes returns every supported data type in declaration order.
func AllTypes() []DataType {
	return []DataType{TypeString, TypePassword, TypeNumber, TypeDate, TypeDateTime, TypeTime, TypeTable}
}

// ParseDataType resolves a type name, accepting legacy names.
func ParseDataType(s string) (DataType, error) {
	s = strings.TrimSpace(s)
	if t, ok := legacyTypes[s]; ok {
		return t, nil
	}
	t := DataType(strings.ToLower(s))
	if t.Valid() {
		return t, nil
	}
	return "", fmt.Errorf("unknown data type %q", s)
}

// Valid reports whether t is one of the supported types.
func (t DataType) Valid() bool {
	switch t {
	case TypeString, TypePassword, TypeNumber, TypeDate, TypeDateTime, TypeTime, TypeTable:
		return true
	}
	return false
}

// IsText reports whether t holds free text subject to pattern and length rules.
func (t DataType) IsText() bool {
	return t == TypeString || t == TypePassword
}

// IsTemporal reports whether t is a date, datetime or time.
func (t DataType) IsTemporal() bool {
	return t == TypeDate || t == TypeDateTime || t == TypeTime
}

// Field is the schema entry describing one input.
type Field struct {
	Label          string   `yaml:"label" json:"label" validate:"required"`
	Type           DataType `yaml:"type" json:"type" validate:"required,datatype"`
	Unit           string   `yaml:"unit,omitempty" json:"unit,omitempty"`
	Required       bool     `yaml:"required,omitempty" json:"required"`
	DisplayOrder   int      `yaml:"display_order" json:"display_order"`
	ColumnPosition int      `yaml:"column_position,omitempty" json:"column_position,omitempty" validate:"omitempty,min=1,max=10"`
	NewRow         bool     `yaml:"new_row,omitempty" json:"new_row"`

	MinValue *float64 `yaml:"min_value,omitempty" json:"min_value,omitempty"`
	MaxValue *float64 `yaml:"max_value,omitempty" json:"max_value,omitempty"`

	RegexPattern string `yaml:"regex_pattern,omitempty" json:"regex_pattern,omitempty"`
	MaxLength    int    `yaml:"max_length,omitempty" json:"max_length,omitempty" validate:"min=0,max=10000"`

	TableColumns []string `yaml:"table_columns,omitempty" json:"table_columns,omitempty" validate:"dive,required"`
	TableRows    int      `yaml:"table_rows,omitempty" json:"table_rows,omitempty" validate:"min=0,max=200"`

	Placeholder string `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	HelpText    string `yaml:"help_text,omitempty" json:"help_text,omitempty"`
}

// EffectiveMaxLength returns max_length or DefaultMaxLength when unset.
func (f Field) EffectiveMaxLength() int {
	if f.MaxLength > 0 {
		return f.MaxLength
	}
	return DefaultMaxLength
}

// EffectiveTableRows returns table_rows or DefaultTableRows when unset.
func (f Field) EffectiveTableRows() int {
	if f.TableRows > 0 {
		return f.TableRows
	}
	return DefaultTableRows
}

// Columns returns the table columns, falling back to DefaultTableColumn.
func (f Field) Columns() []string {
	if len(f.TableColumns) == 0 {
		return []string{DefaultTableColumn}
	}
	return f.TableColumns
}
