// Package client gives command line tools one interface over a local form
// service or a remote API server.
package client

import (
	"context"
	"errors"

	"github.com/faciam-dev/gcform/pkg/layout"
	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/validate"
	"github.com/faciam-dev/gcform/pkg/value"
)

// ErrUnauthorized is returned when the API server rejected the token.
var ErrUnauthorized = errors.New("unauthorized")

// Client provides access to the form operations.
type Client interface {
	Fields(ctx context.Context) ([]schema.Field, error)
	AddField(ctx context.Context, f schema.Field) (schema.Field, error)
	UpdateField(ctx context.Context, index int, f schema.Field) (schema.Field, error)
	DeleteField(ctx context.Context, index int) error
	NormalizeOrder(ctx context.Context) error
	ResetSchema(ctx context.Context) error
	Layout(ctx context.Context, columns int) ([]layout.Cell, error)
	Validate(ctx context.Context, d *validate.Draft) (value.Map, error)
	// Submit clears d once the record was stored.
	Submit(ctx context.Context, d *validate.Draft) (record.Record, error)
	Records(ctx context.Context) ([]record.Record, error)
	ResetRecords(ctx context.Context) error
	Mode() string
}
