package validate

import (
	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/value"
)

// ValidateAll validates a whole submission. Fields are visited in display
// order, which is also the order of the returned details. Values for labels
// outside fields are ignored. Every problem is reported, not only the first.
func (e *Engine) ValidateAll(fields []schema.Field, values map[string]any) (value.Map, error) {
	sorted := schema.Sorted(fields)
	details := value.NewMap(len(sorted))
	var errs Errors
	for _, f := range sorted {
		v, err := e.Validate(f, values[f.Label])
		if fe, ok := AsErrors(err); ok {
			errs = append(errs, fe...)
		}
		details.Set(f.Label, v)
	}
	return details, errs.orNil()
}

// Draft is the in-progress input of one data-entry session. It belongs to
// the caller: create it, fill it, validate it and then commit or discard it.
type Draft struct {
	Header record.Header
	Values map[string]any
}

// NewDraft returns an empty draft.
func NewDraft() *Draft {
	return &Draft{Values: map[string]any{}}
}

// Set records the raw input for label.
func (d *Draft) Set(label string, raw any) {
	if d.Values == nil {
		d.Values = map[string]any{}
	}
	d.Values[label] = raw
}

// Get returns the raw input for label.
func (d *Draft) Get(label string) (any, bool) {
	v, ok := d.Values[label]
	return v, ok
}

// Clear discards all input, including the header.
func (d *Draft) Clear() {
	d.Header = record.Header{}
	d.Values = map[string]any{}
}

// Validate checks the draft against fields.
func (d *Draft) Validate(e *Engine, fields []schema.Field) (value.Map, error) {
	return e.ValidateAll(fields, d.Values)
}
