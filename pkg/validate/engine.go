// Package validate coerces raw input into canonical values and checks it
// against field definitions.
package validate

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/value"
)

var errNotFinite = errors.New("not a finite number")

// Engine validates values. The zero value is ready to use.
type Engine struct {
	// Now supplies the default for absent date, datetime and time values.
	Now func() time.Time

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// New returns an engine using the wall clock.
func New() *Engine { return &Engine{Now: time.Now} }

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// pattern compiles p as a full-string match. Malformed patterns return nil
// and are remembered so they are not recompiled.
func (e *Engine) pattern(p string) *regexp.Regexp {
	e.mu.Lock()
	defer e.mu.Unlock()
	if re, ok := e.patterns[p]; ok {
		return re
	}
	if e.patterns == nil {
		e.patterns = map[string]*regexp.Regexp{}
	}
	re, err := regexp.Compile(`^(?:` + p + `)$`)
	if err != nil {
		re = nil
	}
	e.patterns[p] = re
	return re
}

// Validate coerces raw for f. The returned value is usable even when err is
// non-nil; err is always of type Errors.
func (e *Engine) Validate(f schema.Field, raw any) (value.Value, error) {
	var errs Errors
	fail := func(code Code, format string, args ...any) {
		errs = append(errs, Error{Label: f.Label, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	var v value.Value
	switch f.Type {
	case schema.TypeString, schema.TypePassword:
		v = e.text(f, raw, fail)
	case schema.TypeNumber:
		v = number(f, raw, fail)
	case schema.TypeDate, schema.TypeDateTime, schema.TypeTime:
		v = e.temporal(f, raw, fail)
	case schema.TypeTable:
		v = table(f, raw, fail)
	default:
		fail(CodeUnknownType, "type %q is not supported", f.Type)
		v = value.Text(strings.TrimSpace(cast.ToString(raw)))
	}
	return v, errs.orNil()
}

type failFunc func(code Code, format string, args ...any)

func (e *Engine) text(f schema.Field, raw any, fail failFunc) value.Value {
	s, err := cast.ToStringE(raw)
	if err != nil {
		fail(CodeInvalidFormat, "cannot be read as text")
		return value.Text("")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		if f.Required {
			fail(CodeRequired, "is required")
		}
		return value.Text("")
	}
	if f.RegexPattern != "" {
		if re := e.pattern(f.RegexPattern); re != nil && !re.MatchString(s) {
			fail(CodePattern, "does not match the required format")
		}
	}
	if limit := f.EffectiveMaxLength(); utf8.RuneCountInString(s) > limit {
		fail(CodeMaxLength, "must be at most %d characters", limit)
	}
	return value.Text(s)
}

// number treats absent input as zero clamped into the allowed range.
func number(f schema.Field, raw any, fail failFunc) value.Value {
	lo, hasLo := bound(f.MinValue)
	hi, hasHi := bound(f.MaxValue)
	d, present, err := toDecimal(raw)
	if err != nil {
		fail(CodeInvalidNumber, "%v is not a number", raw)
		return value.Number(decimal.Zero)
	}
	if !present {
		d = decimal.Zero
		if hasLo && d.LessThan(lo) {
			d = lo
		}
		if hasHi && d.GreaterThan(hi) {
			d = hi
		}
		return value.Number(d)
	}
	if hasLo && d.LessThan(lo) {
		fail(CodeRangeMin, "must be at least %s", lo)
	}
	if hasHi && d.GreaterThan(hi) {
		fail(CodeRangeMax, "must be at most %s", hi)
	}
	return value.Number(d)
}

// bound converts a range limit. Non-finite limits are rejected by
// schema.Check and treated as unset here.
func bound(p *float64) (decimal.Decimal, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(*p), true
}

func toDecimal(raw any) (decimal.Decimal, bool, error) {
	switch x := raw.(type) {
	case nil:
		return decimal.Zero, false, nil
	case decimal.Decimal:
		return x, true, nil
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false, nil
		}
		return *x, true, nil
	case value.Value:
		if x.Kind == value.KindNumber {
			return x.Number, true, nil
		}
		return toDecimal(x.Text)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, false, nil
		}
		d, err := decimal.NewFromString(s)
		return d, true, err
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return decimal.NewFromInt(cast.ToInt64(x)), true, nil
	}
	fv, err := cast.ToFloat64E(raw)
	if err != nil {
		return decimal.Zero, true, err
	}
	if math.IsNaN(fv) || math.IsInf(fv, 0) {
		return decimal.Zero, true, errNotFinite
	}
	return decimal.NewFromFloat(fv), true, nil
}

var temporalLayouts = map[schema.DataType]struct {
	canonical string
	accepted  []string
}{
	schema.TypeDate: {"2006-01-02", []string{
		"2006-01-02", "2006/01/02", "2006-1-2", "2006/1/2",
		time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05",
	}},
	schema.TypeDateTime: {"2006-01-02 15:04:05", []string{
		"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02T15:04:05.999999999", "2006-01-02T15:04",
		time.RFC3339Nano, "2006/01/02 15:04:05", "2006/01/02 15:04",
	}},
	schema.TypeTime: {"15:04", []string{"15:04", "15:04:05", "15:04:05.999999999", "3:04PM", "3:04 PM"}},
}

// temporal treats absent input as the engine clock's current time.
func (e *Engine) temporal(f schema.Field, raw any, fail failFunc) value.Value {
	layouts := temporalLayouts[f.Type]
	switch x := raw.(type) {
	case time.Time:
		return value.Text(x.Format(layouts.canonical))
	case *time.Time:
		if x != nil {
			return value.Text(x.Format(layouts.canonical))
		}
		raw = nil
	case value.Value:
		raw = x.Text
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		fail(CodeInvalidFormat, "cannot be read as a %s", f.Type)
		return value.Text("")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return value.Text(e.now().Format(layouts.canonical))
	}
	for _, l := range layouts.accepted {
		if t, err := time.ParseInLocation(l, s, time.Local); err == nil {
			return value.Text(t.Format(layouts.canonical))
		}
	}
	fail(CodeInvalidFormat, "%q is not a valid %s (expected %s)", s, f.Type, layouts.canonical)
	return value.Text(s)
}
