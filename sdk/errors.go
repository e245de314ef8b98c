package sdk

import (
	"errors"

	"github.com/faciam-dev/gcform/internal/recordstore"
	"github.com/faciam-dev/gcform/internal/schemastore"
	"github.com/faciam-dev/gcform/pkg/codec"
	"github.com/faciam-dev/gcform/pkg/schema"
)

// Errors returned by Service. They alias the store sentinels so callers
// outside this module can match them with errors.Is.
var (
	ErrSchemaCorrupt      = schemastore.ErrSchemaCorrupt
	ErrDuplicateLabel     = schemastore.ErrDuplicateLabel
	ErrIndexOutOfRange    = schemastore.ErrIndexOutOfRange
	ErrInvalidField       = schema.ErrInvalidField
	ErrStoreCorrupt       = recordstore.ErrStoreCorrupt
	ErrMissingHeader      = recordstore.ErrMissingHeader
	ErrInvalidEntryDate   = recordstore.ErrInvalidEntryDate
	ErrUnsupportedVersion = codec.ErrUnsupportedVersion
)

// IsCorrupt reports whether err means a state document could not be read.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrSchemaCorrupt) || errors.Is(err, ErrStoreCorrupt)
}
