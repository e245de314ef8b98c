package codec

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/value"
)

type recordsFile struct {
	Version string      `yaml:"version"`
	Records []recordDoc `yaml:"records"`
}

// recordDoc is shared by version 1 and the legacy JSON list; only the
// timestamp layout differs.
type recordDoc struct {
	ID           string    `yaml:"id,omitempty"`
	EntryDate    string    `yaml:"entry_date"`
	ProductName  string    `yaml:"product_name"`
	LotNo        string    `yaml:"lot_no"`
	RegisteredAt string    `yaml:"registered_at"`
	Details      value.Map `yaml:"details"`
}

var stampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// EncodeRecords writes records in creation order.
func EncodeRecords(recs []record.Record) ([]byte, error) {
	docs := make([]recordDoc, len(recs))
	for i, r := range recs {
		docs[i] = recordDoc{
			ID:           r.ID,
			EntryDate:    r.EntryDate,
			ProductName:  r.ProductName,
			LotNo:        r.LotNo,
			RegisteredAt: r.RegisteredAt.Format(time.RFC3339Nano),
			Details:      r.Details,
		}
	}
	return encode(recordsFile{Version: currentVersion, Records: docs})
}

// DecodeRecords parses a record document. An empty document is an empty history.
func DecodeRecords(b []byte) ([]record.Record, error) {
	n, err := root(b)
	if err != nil || n == nil {
		return nil, err
	}
	var docs []recordDoc
	switch n.Kind {
	case yaml.SequenceNode:
		if err := n.Decode(&docs); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		if err := checkVersion(n); err != nil {
			return nil, err
		}
		var rf recordsFile
		if err := n.Decode(&rf); err != nil {
			return nil, err
		}
		docs = rf.Records
	default:
		return nil, fmt.Errorf("line %d: records must be a mapping or a list", n.Line)
	}

	out := make([]record.Record, 0, len(docs))
	for i, d := range docs {
		at, err := ParseStamp(d.RegisteredAt)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, record.Record{
			ID: d.ID,
			Header: record.Header{
				EntryDate:   d.EntryDate,
				ProductName: d.ProductName,
				LotNo:       d.LotNo,
			},
			RegisteredAt: at,
			Details:      d.Details,
		})
	}
	return out, nil
}

// ParseStamp parses a registration timestamp. Timestamps without a zone
// are read in local time, as earlier releases wrote them.
func ParseStamp(s string) (time.Time, error) {
	for _, layout := range stampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("registered_at %q is not a timestamp", s)
}
