package validate

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/value"
)

func ptr(f float64) *float64 { return &f }

var fixed = time.Date(2025, 6, 7, 8, 9, 10, 0, time.Local)

func newEngine() *Engine { return &Engine{Now: func() time.Time { return fixed }} }

func codes(t *testing.T, err error) []Code {
	t.Helper()
	if err == nil {
		return nil
	}
	errs, ok := AsErrors(err)
	if !ok {
		t.Fatalf("error %T is not Errors", err)
	}
	return errs.Codes()
}

func TestNumberRange(t *testing.T) {
	e := newEngine()
	f := schema.Field{Label: "電圧", Type: schema.TypeNumber, Required: true, MinValue: ptr(0), MaxValue: ptr(100)}
	tests := []struct {
		raw  any
		want []Code
	}{
		{-5, []Code{CodeRangeMin}},
		{"", nil},
		{nil, nil},
		{150, []Code{CodeRangeMax}},
		{50, nil},
		{" 12.5 ", nil},
		{0, nil},
		{"abc", []Code{CodeInvalidNumber}},
		{float32(99.5), nil},
	}
	for _, tt := range tests {
		_, err := e.Validate(f, tt.raw)
		if diff := cmp.Diff(tt.want, codes(t, err)); diff != "" {
			t.Fatalf("raw %v mismatch (-want +got)\n%s", tt.raw, diff)
		}
	}
}

func TestNumberDefault(t *testing.T) {
	e := newEngine()
	v, err := e.Validate(schema.Field{Label: "n", Type: schema.TypeNumber, MinValue: ptr(5)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Number.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("default = %s", v.Number)
	}
	v, _ = e.Validate(schema.Field{Label: "n", Type: schema.TypeNumber, MaxValue: ptr(-1)}, "")
	if !v.Number.Equal(decimal.NewFromInt(-1)) {
		t.Fatalf("default = %s", v.Number)
	}
	v, _ = e.Validate(schema.Field{Label: "n", Type: schema.TypeNumber}, "12.50")
	if v.Kind != value.KindNumber || v.Number.String() != "12.5" {
		t.Fatalf("value = %+v", v)
	}
}

func TestNumberNonFinite(t *testing.T) {
	e := newEngine()
	f := schema.Field{Label: "n", Type: schema.TypeNumber, MaxValue: ptr(100)}
	for _, raw := range []any{math.NaN(), math.Inf(1), math.Inf(-1), float32(math.Inf(1)), "NaN"} {
		_, err := e.Validate(f, raw)
		if diff := cmp.Diff([]Code{CodeInvalidNumber}, codes(t, err)); diff != "" {
			t.Fatalf("raw %v mismatch (-want +got)\n%s", raw, diff)
		}
	}
	// a non-finite limit that bypassed schema.Check is ignored
	inf := schema.Field{Label: "n", Type: schema.TypeNumber, MinValue: ptr(math.NaN()), MaxValue: ptr(math.Inf(1))}
	v, err := e.Validate(inf, "5")
	if err != nil || v.Number.String() != "5" {
		t.Fatalf("value = %+v, err = %v", v, err)
	}
}

func TestText(t *testing.T) {
	e := newEngine()
	f := schema.Field{Label: "ロット", Type: schema.TypeString, Required: true, RegexPattern: `[A-Z]+-\d+`, MaxLength: 8}
	tests := []struct {
		raw  any
		want []Code
	}{
		{"  ", []Code{CodeRequired}},
		{nil, []Code{CodeRequired}},
		{"AB-12", nil},
		{" AB-12 ", nil},
		{"xAB-12", []Code{CodePattern}},
		{"AB-12x", []Code{CodePattern}},
		{"ABCDEF-12", []Code{CodeMaxLength}},
		{"abcdefghij", []Code{CodePattern, CodeMaxLength}},
	}
	for _, tt := range tests {
		_, err := e.Validate(f, tt.raw)
		if diff := cmp.Diff(tt.want, codes(t, err)); diff != "" {
			t.Fatalf("raw %v mismatch (-want +got)\n%s", tt.raw, diff)
		}
	}
	v, _ := e.Validate(f, " AB-12 ")
	if v.Text != "AB-12" {
		t.Fatalf("value not trimmed: %q", v.Text)
	}
}

func TestTextLengthCountsRunes(t *testing.T) {
	e := newEngine()
	f := schema.Field{Label: "名", Type: schema.TypePassword, MaxLength: 3}
	if _, err := e.Validate(f, "あいう"); err != nil {
		t.Fatalf("3 runes rejected: %v", err)
	}
	if _, err := e.Validate(f, "あいうえ"); err == nil {
		t.Fatalf("4 runes accepted")
	}
	long := strings.Repeat("a", schema.DefaultMaxLength+1)
	if _, err := e.Validate(schema.Field{Label: "x", Type: schema.TypeString}, long); err == nil {
		t.Fatalf("default max length not applied")
	}
}

func TestMalformedPatternIgnored(t *testing.T) {
	e := newEngine()
	f := schema.Field{Label: "x", Type: schema.TypeString, RegexPattern: "("}
	for i := 0; i < 2; i++ {
		if _, err := e.Validate(f, "anything"); err != nil {
			t.Fatalf("malformed pattern rejected input: %v", err)
		}
	}
}

func TestTemporal(t *testing.T) {
	e := newEngine()
	tests := []struct {
		typ  schema.DataType
		raw  any
		want string
	}{
		{schema.TypeDate, "2025/1/2", "2025-01-02"},
		{schema.TypeDate, "2025-01-02", "2025-01-02"},
		{schema.TypeDate, nil, "2025-06-07"},
		{schema.TypeDateTime, "2025-01-02T03:04", "2025-01-02 03:04:00"},
		{schema.TypeDateTime, "", "2025-06-07 08:09:10"},
		{schema.TypeTime, "7:05", "07:05"},
		{schema.TypeTime, "07:05:59", "07:05"},
		{schema.TypeTime, fixed, "08:09"},
	}
	for _, tt := range tests {
		f := schema.Field{Label: "t", Type: tt.typ, Required: true}
		v, err := e.Validate(f, tt.raw)
		if err != nil {
			t.Fatalf("%s %v: %v", tt.typ, tt.raw, err)
		}
		if v.Text != tt.want {
			t.Fatalf("%s %v = %q, want %q", tt.typ, tt.raw, v.Text, tt.want)
		}
	}
	_, err := e.Validate(schema.Field{Label: "d", Type: schema.TypeDate}, "tomorrow")
	if diff := cmp.Diff([]Code{CodeInvalidFormat}, codes(t, err)); diff != "" {
		t.Fatalf("codes mismatch (-want +got)\n%s", diff)
	}
}

func TestTable(t *testing.T) {
	e := newEngine()
	f := schema.Field{Label: "寸法表", Type: schema.TypeTable, Required: true, TableColumns: []string{"A", "B"}, TableRows: 2}

	v, err := e.Validate(f, []map[string]string{{"A": " 1 "}, {"A": "", "B": " "}, {"B": "2"}})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := []value.Row{
		{{Column: "A", Text: "1"}, {Column: "B", Text: ""}},
		{{Column: "A", Text: ""}, {Column: "B", Text: "2"}},
	}
	if diff := cmp.Diff(want, v.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got)\n%s", diff)
	}

	tests := []struct {
		name string
		raw  any
		want []Code
	}{
		{"no rows", nil, []Code{CodeRequired}},
		{"only empty rows", [][]string{{"", ""}, {" "}}, []Code{CodeRequired}},
		{"unknown column", []map[string]any{{"A": 1, "C": "x"}}, []Code{CodeUnknownColumn}},
		{"too many rows", [][]string{{"1"}, {"2"}, {"3"}}, []Code{CodeTooManyRows}},
		{"too many cells", []any{[]any{"1", "2", "3"}}, []Code{CodeUnknownColumn, CodeRequired}},
		{"not a table", 42, []Code{CodeInvalidFormat}},
		{"positional", [][]string{{"1", "2"}}, nil},
		{"json shape", []any{map[string]any{"A": "1", "B": nil}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Validate(f, tt.raw)
			if diff := cmp.Diff(tt.want, codes(t, err)); diff != "" {
				t.Fatalf("codes mismatch (-want +got)\n%s", diff)
			}
		})
	}
}

func TestTableDefaultColumn(t *testing.T) {
	e := newEngine()
	f := schema.Field{Label: "表", Type: schema.TypeTable}
	v, err := e.Validate(f, [][]string{{"x"}})
	if err != nil {
		t.Fatal(err)
	}
	if cell, _ := v.Rows[0].Get(schema.DefaultTableColumn); cell != "x" {
		t.Fatalf("cell = %q", cell)
	}
	if _, err := e.Validate(f, nil); err != nil {
		t.Fatalf("optional empty table: %v", err)
	}
}

func TestUnknownType(t *testing.T) {
	_, err := newEngine().Validate(schema.Field{Label: "x", Type: "blob"}, "v")
	if diff := cmp.Diff([]Code{CodeUnknownType}, codes(t, err)); diff != "" {
		t.Fatalf("codes mismatch (-want +got)\n%s", diff)
	}
}

func TestValidateAll(t *testing.T) {
	e := newEngine()
	fields := []schema.Field{
		{Label: "C", Type: schema.TypeNumber, DisplayOrder: 3, MaxValue: ptr(10)},
		{Label: "A", Type: schema.TypeString, DisplayOrder: 1, Required: true},
		{Label: "B", Type: schema.TypeDate, DisplayOrder: 2},
	}
	d := NewDraft()
	d.Set("C", 50)
	d.Set("B", "2025-02-03")
	d.Set("extra", "ignored")

	details, err := d.Validate(e, fields)
	errs, ok := AsErrors(err)
	if !ok {
		t.Fatalf("err = %v", err)
	}
	want := Errors{
		{Label: "A", Code: CodeRequired, Message: "is required"},
		{Label: "C", Code: CodeRangeMax, Message: "must be at most 10"},
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, details.Keys()); diff != "" {
		t.Fatalf("details order mismatch (-want +got)\n%s", diff)
	}
	if len(errs.For("C")) != 1 {
		t.Fatalf("For(C) = %v", errs.For("C"))
	}

	d.Set("A", "ok")
	d.Set("C", 3)
	if _, err := d.Validate(e, fields); err != nil {
		t.Fatalf("valid draft: %v", err)
	}
	if v, ok := d.Get("A"); !ok || v != "ok" {
		t.Fatalf("Get(A) = %v %v", v, ok)
	}
	d.Clear()
	if _, ok := d.Get("A"); ok || len(d.Values) != 0 {
		t.Fatalf("draft not cleared")
	}
}
