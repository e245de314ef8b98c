package client

import (
	"context"

	"github.com/faciam-dev/gcform/pkg/layout"
	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/validate"
	"github.com/faciam-dev/gcform/pkg/value"
	sdk "github.com/faciam-dev/gcform/sdk"
)

type localClient struct{ svc *sdk.Service }

// NewLocalService wraps an existing sdk.Service as a Client.
func NewLocalService(svc *sdk.Service) Client { return &localClient{svc: svc} }

func (l *localClient) Fields(context.Context) ([]schema.Field, error) { return l.svc.Fields() }

func (l *localClient) AddField(_ context.Context, f schema.Field) (schema.Field, error) {
	stored, _, err := l.svc.AddField(f)
	return stored, err
}

func (l *localClient) UpdateField(_ context.Context, i int, f schema.Field) (schema.Field, error) {
	return l.svc.UpdateField(i, f)
}

func (l *localClient) DeleteField(_ context.Context, i int) error { return l.svc.DeleteField(i) }

func (l *localClient) NormalizeOrder(context.Context) error { return l.svc.NormalizeOrder() }

func (l *localClient) ResetSchema(context.Context) error { return l.svc.ResetSchema() }

func (l *localClient) Layout(_ context.Context, columns int) ([]layout.Cell, error) {
	return l.svc.Layout(columns)
}

func (l *localClient) Validate(_ context.Context, d *validate.Draft) (value.Map, error) {
	return l.svc.Validate(d)
}

func (l *localClient) Submit(_ context.Context, d *validate.Draft) (record.Record, error) {
	return l.svc.Submit(d)
}

func (l *localClient) Records(context.Context) ([]record.Record, error) { return l.svc.Records() }

func (l *localClient) ResetRecords(context.Context) error { return l.svc.ResetRecords() }

func (l *localClient) Mode() string { return "local" }
