package record

import (
	"strings"
	"time"

	"github.com/faciam-dev/gcform/pkg/value"
)

// DateLayout is the canonical entry date format.
const DateLayout = "2006-01-02"

// Header identifies what a record was entered for.
type Header struct {
	EntryDate   string `json:"entry_date" yaml:"entry_date"`
	ProductName string `json:"product_name" yaml:"product_name"`
	LotNo       string `json:"lot_no" yaml:"lot_no"`
}

// Trimmed returns h with surrounding whitespace removed from every part.
func (h Header) Trimmed() Header {
	return Header{
		EntryDate:   strings.TrimSpace(h.EntryDate),
		ProductName: strings.TrimSpace(h.ProductName),
		LotNo:       strings.TrimSpace(h.LotNo),
	}
}

// Record is one submitted data-entry event.
type Record struct {
	ID string `json:"id,omitempty"`
	Header
	RegisteredAt time.Time `json:"registered_at"`
	// Details uses the labels present in the schema at submission time.
	Details value.Map `json:"details"`
}
