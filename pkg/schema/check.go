package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidField is returned when a field definition breaks a structural rule.
var ErrInvalidField = errors.New("invalid field definition")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return yamlName(f.Tag.Get("yaml"), f.Name)
	})
	_ = v.RegisterValidation("datatype", func(fl validator.FieldLevel) bool {
		return DataType(fl.Field().String()).Valid()
	})
	return v
}

// Check validates a field definition. Callers normally pass a normalized
// field; the error wraps ErrInvalidField and lists every broken rule.
func Check(f Field) error {
	var problems []string
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalidField, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fe.Field()+" "+ruleMessage(fe))
		}
	}
	if err := CheckBounds(f); err != nil {
		problems = append(problems, err.Error())
	} else if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		problems = append(problems, fmt.Sprintf("min_value %g is greater than max_value %g", *f.MinValue, *f.MaxValue))
	}
	if f.Type == TypeTable {
		seen := make(map[string]struct{}, len(f.TableColumns))
		for _, c := range f.TableColumns {
			if _, dup := seen[c]; dup {
				problems = append(problems, fmt.Sprintf("table_columns repeats %q", c))
			}
			seen[c] = struct{}{}
		}
	}
	if len(problems) == 0 {
		return nil
	}
	label := f.Label
	if label == "" {
		label = "(unnamed)"
	}
	return fmt.Errorf("%w %s: %s", ErrInvalidField, label, strings.Join(problems, "; "))
}

// CheckBounds reports a min_value or max_value that is NaN or infinite.
func CheckBounds(f Field) error {
	for _, b := range []struct {
		name string
		v    *float64
	}{{"min_value", f.MinValue}, {"max_value", f.MaxValue}} {
		if b.v != nil && (math.IsNaN(*b.v) || math.IsInf(*b.v, 0)) {
			return fmt.Errorf("%s %g is not a finite number", b.name, *b.v)
		}
	}
	return nil
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datatype":
		return fmt.Sprintf("%q is not a supported type", fe.Value())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}

func yamlName(tag, def string) string {
	name := strings.SplitN(tag, ",", 2)[0]
	if name == "" || name == "-" {
		return def
	}
	return name
}
