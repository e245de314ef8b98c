package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/faciam-dev/gcform/pkg/schema"
)

type schemaFile struct {
	Version string         `yaml:"version"`
	Fields  []schema.Field `yaml:"fields"`
}

// legacyField is the JSON shape written before documents were versioned.
type legacyField struct {
	LabelName      string   `yaml:"label_name"`
	DataType       string   `yaml:"data_type"`
	Unit           string   `yaml:"unit"`
	IsRequired     bool     `yaml:"is_required"`
	DisplayOrder   int      `yaml:"display_order"`
	ColumnPosition int      `yaml:"column_position"`
	NewRow         bool     `yaml:"new_row"`
	MinValue       *float64 `yaml:"min_value"`
	MaxValue       *float64 `yaml:"max_value"`
	RegexPattern   string   `yaml:"regex_pattern"`
	MaxLength      int      `yaml:"max_length"`
	TableColumns   []string `yaml:"table_columns"`
	TableRows      int      `yaml:"table_rows"`
	Placeholder    string   `yaml:"placeholder"`
	HelpText       string   `yaml:"help_text"`
}

// EncodeSchema writes fields in the given order.
func EncodeSchema(fields []schema.Field) ([]byte, error) {
	if fields == nil {
		fields = []schema.Field{}
	}
	return encode(schemaFile{Version: currentVersion, Fields: fields})
}

// DecodeSchema parses a schema document. An empty document is an empty schema.
func DecodeSchema(b []byte) ([]schema.Field, error) {
	n, err := root(b)
	if err != nil || n == nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.SequenceNode:
		return decodeLegacySchema(n)
	case yaml.MappingNode:
		if err := checkVersion(n); err != nil {
			return nil, err
		}
		var sf schemaFile
		if err := n.Decode(&sf); err != nil {
			return nil, err
		}
		for i := range sf.Fields {
			t, err := schema.ParseDataType(string(sf.Fields[i].Type))
			if err != nil {
				return nil, fmt.Errorf("field %d (%s): %w", i, sf.Fields[i].Label, err)
			}
			sf.Fields[i].Type = t
		}
		return sf.Fields, nil
	default:
		return nil, fmt.Errorf("line %d: schema must be a mapping or a list", n.Line)
	}
}

func decodeLegacySchema(n *yaml.Node) ([]schema.Field, error) {
	var in []legacyField
	if err := n.Decode(&in); err != nil {
		return nil, err
	}
	out := make([]schema.Field, 0, len(in))
	for i, lf := range in {
		t := schema.TypeString
		if lf.DataType != "" {
			var err error
			if t, err = schema.ParseDataType(lf.DataType); err != nil {
				return nil, fmt.Errorf("field %d (%s): %w", i, lf.LabelName, err)
			}
		}
		out = append(out, schema.Field{
			Label:          lf.LabelName,
			Type:           t,
			Unit:           lf.Unit,
			Required:       lf.IsRequired,
			DisplayOrder:   lf.DisplayOrder,
			ColumnPosition: lf.ColumnPosition,
			NewRow:         lf.NewRow,
			MinValue:       lf.MinValue,
			MaxValue:       lf.MaxValue,
			RegexPattern:   lf.RegexPattern,
			MaxLength:      lf.MaxLength,
			TableColumns:   lf.TableColumns,
			TableRows:      lf.TableRows,
			Placeholder:    lf.Placeholder,
			HelpText:       lf.HelpText,
		})
	}
	return out, nil
}
