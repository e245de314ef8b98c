package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var errJSONShape = errors.New("unexpected JSON shape")

// UnmarshalJSON reads the natural form. Numbers become KindNumber, arrays of
// objects become tables, null is empty text.
func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	out, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// UnmarshalJSON reads an object of column to text, keeping column order.
func (r *Row) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("table row: %w", errJSONShape)
	}
	out, err := decodeRow(dec)
	if err != nil {
		return err
	}
	*r = out
	return nil
}

// UnmarshalJSON reads an object, keeping key order.
func (m *Map) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	*m = Map{}
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("details: %w", errJSONShape)
	}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return err
		}
		label, _ := key.(string)
		v, err := decodeValue(dec)
		if err != nil {
			return fmt.Errorf("%q: %w", label, err)
		}
		m.Set(label, v)
	}
	_, err = dec.Token()
	return err
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Text(""), nil
	case string:
		return Text(t), nil
	case bool:
		return Text(fmt.Sprint(t)), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return Value{}, err
		}
		return Number(d), nil
	case json.Delim:
		if t != '[' {
			return Value{}, errJSONShape
		}
		rows := []Row{}
		for dec.More() {
			open, err := dec.Token()
			if err != nil {
				return Value{}, err
			}
			if d, ok := open.(json.Delim); !ok || d != '{' {
				return Value{}, fmt.Errorf("table row: %w", errJSONShape)
			}
			r, err := decodeRow(dec)
			if err != nil {
				return Value{}, err
			}
			rows = append(rows, r)
		}
		if _, err := dec.Token(); err != nil {
			return Value{}, err
		}
		return Table(rows), nil
	}
	return Value{}, errJSONShape
}

// decodeRow reads the members of an object whose opening brace was consumed.
func decodeRow(dec *json.Decoder) (Row, error) {
	out := Row{}
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, err
		}
		col, _ := key.(string)
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		var text string
		switch t := tok.(type) {
		case nil:
		case string:
			text = t
		case json.Number:
			text = t.String()
		case bool:
			text = fmt.Sprint(t)
		default:
			return nil, fmt.Errorf("table cell %q: %w", col, errJSONShape)
		}
		out = append(out, Cell{Column: col, Text: text})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}
