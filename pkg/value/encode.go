package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func (v Value) node() *yaml.Node {
	switch v.Kind {
	case KindNumber:
		tag := "!!float"
		if v.Number.IsInteger() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v.Number.String()}
	case KindTable:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, r := range v.Rows {
			n.Content = append(n.Content, r.node())
		}
		return n
	default:
		return strNode(v.Text)
	}
}

func (r Row) node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, c := range r {
		n.Content = append(n.Content, strNode(c.Column), strNode(c.Text))
	}
	return n
}

// MarshalYAML writes the natural form: a string, a number or a list of mappings.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.node(), nil
}

// UnmarshalYAML reads the natural form. Numbers become KindNumber, sequences
// become tables and every other scalar is text.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			d, err := decimal.NewFromString(n.Value)
			if err != nil {
				return fmt.Errorf("line %d: number %q: %w", n.Line, n.Value, err)
			}
			*v = Number(d)
		case "!!null":
			*v = Text("")
		default:
			*v = Text(n.Value)
		}
		return nil
	case yaml.SequenceNode:
		rows := make([]Row, 0, len(n.Content))
		for _, item := range n.Content {
			var r Row
			if err := r.UnmarshalYAML(item); err != nil {
				return err
			}
			rows = append(rows, r)
		}
		*v = Table(rows)
		return nil
	default:
		return fmt.Errorf("line %d: unexpected mapping where a value was expected", n.Line)
	}
}

// MarshalYAML writes the row as a mapping in column order.
func (r Row) MarshalYAML() (interface{}, error) {
	return r.node(), nil
}

// UnmarshalYAML reads a mapping of column to scalar text.
func (r *Row) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: table row must be a mapping", n.Line)
	}
	out := make(Row, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, val := n.Content[i], n.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: table cell %q must be a scalar", val.Line, k.Value)
		}
		text := val.Value
		if val.ShortTag() == "!!null" {
			text = ""
		}
		out = append(out, Cell{Column: k.Value, Text: text})
	}
	*r = out
	return nil
}

// MarshalYAML writes the map in insertion order.
func (m Map) MarshalYAML() (interface{}, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		n.Content = append(n.Content, strNode(k), m.vals[k].node())
	}
	return n, nil
}

// UnmarshalYAML reads a mapping, keeping document order.
func (m *Map) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	*m = Map{}
	if n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null" {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: details must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		var v Value
		if err := v.UnmarshalYAML(n.Content[i+1]); err != nil {
			return fmt.Errorf("%q: %w", n.Content[i].Value, err)
		}
		m.Set(n.Content[i].Value, v)
	}
	return nil
}

// MarshalJSON writes the natural form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return []byte(v.Number.String()), nil
	case KindTable:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, r := range v.Rows {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := r.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(v.Text)
	}
}

// MarshalJSON writes the row as an object in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONPair(&buf, c.Column, c.Text); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes the map as an object in insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONPair(&buf, k, m.vals[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONPair(buf *bytes.Buffer, key string, v any) error {
	kb, err := json.Marshal(key)
	if err != nil {
		return err
	}
	vb, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(kb)
	buf.WriteByte(':')
	buf.Write(vb)
	return nil
}
