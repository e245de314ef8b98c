package validate

import (
	"errors"
	"strings"
)

// Code classifies a validation failure.
type Code string

const (
	CodeRequired      Code = "required"
	CodePattern       Code = "pattern"
	CodeMaxLength     Code = "max_length"
	CodeRangeMin      Code = "range_min"
	CodeRangeMax      Code = "range_max"
	CodeInvalidNumber Code = "invalid_number"
	CodeInvalidFormat Code = "invalid_format"
	CodeUnknownColumn Code = "unknown_column"
	CodeTooManyRows   Code = "too_many_rows"
	CodeUnknownType   Code = "unknown_type"
)

// Error is one user-facing problem with a submitted value.
type Error struct {
	Label   string `json:"label"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string { return e.Label + ": " + e.Message }

// Errors is every problem found in a value or a submission, in field order.
type Errors []Error

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// For returns the problems reported for label.
func (e Errors) For(label string) []Error {
	var out []Error
	for _, err := range e {
		if err.Label == label {
			out = append(out, err)
		}
	}
	return out
}

// Codes lists the codes in order.
func (e Errors) Codes() []Code {
	out := make([]Code, len(e))
	for i, err := range e {
		out[i] = err.Code
	}
	return out
}

// AsErrors extracts Errors from err.
func AsErrors(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// orNil keeps the nil interface for an empty list.
func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
