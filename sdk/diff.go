package sdk

import (
	"github.com/pmezard/go-difflib/difflib"

	"github.com/faciam-dev/gcform/pkg/codec"
	"github.com/faciam-dev/gcform/pkg/schema"
)

// UnifiedDiff returns a unified diff string of two inputs.
func UnifiedDiff(a, b string) string {
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "a",
		ToFile:   "b",
		Context:  3,
	}
	out, _ := difflib.GetUnifiedDiffString(d)
	return out
}

// SchemaDiff compares two schemas. Text is a unified diff of their canonical
// documents, so legacy and current files compare by content.
type SchemaDiff struct {
	Changes []schema.Change
	Report  schema.DiffReport
	Text    string
}

// DiffSchemas compares the schema documents a and b.
func DiffSchemas(a, b []byte) (SchemaDiff, error) {
	fa, err := codec.DecodeSchema(a)
	if err != nil {
		return SchemaDiff{}, err
	}
	fb, err := codec.DecodeSchema(b)
	if err != nil {
		return SchemaDiff{}, err
	}
	return DiffFields(fa, fb)
}

// DiffFields compares two field lists.
func DiffFields(a, b []schema.Field) (SchemaDiff, error) {
	ya, err := codec.EncodeSchema(a)
	if err != nil {
		return SchemaDiff{}, err
	}
	yb, err := codec.EncodeSchema(b)
	if err != nil {
		return SchemaDiff{}, err
	}
	changes := schema.Diff(a, b)
	return SchemaDiff{
		Changes: changes,
		Report:  schema.Summarize(changes),
		Text:    UnifiedDiff(string(ya), string(yb)),
	}, nil
}
