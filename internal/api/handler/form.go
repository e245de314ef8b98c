package handler

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/faciam-dev/gcform/internal/api/schema"
	"github.com/faciam-dev/gcform/sdk"
)

// FormHandler serves the schema, layout and record endpoints.
type FormHandler struct {
	Svc *sdk.Service
}

type schemaOutput struct {
	Body schema.Schema
}

type fieldInput struct {
	Body schema.Field
}

type fieldOutput struct {
	Body schema.IndexedField
}

type indexedFieldInput struct {
	Index int `path:"index"`
	Body  schema.Field
}

type indexInput struct {
	Index int `path:"index"`
}

type layoutParams struct {
	Columns int `query:"columns" doc:"fields per row, 0 for the configured width"`
}

type layoutOutput struct {
	Body schema.Layout
}

type submitInput struct {
	Body schema.Submission
}

type recordOutput struct {
	Body schema.Stored
}

type recordsOutput struct {
	Body schema.Records
}

type validateOutput struct {
	Body schema.Validated
}

// Register adds the schema, layout and record operations to api.
func Register(api huma.API, h *FormHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "getSchema",
		Method:      http.MethodGet,
		Path:        "/v1/schema",
		Summary:     "List field definitions in storage order",
		Tags:        []string{"Schema"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.getSchema)
	huma.Register(api, huma.Operation{
		OperationID:   "resetSchema",
		Method:        http.MethodDelete,
		Path:          "/v1/schema",
		Summary:       "Remove every field definition",
		Tags:          []string{"Schema"},
		DefaultStatus: http.StatusNoContent,
	}, h.resetSchema)
	huma.Register(api, huma.Operation{
		OperationID:   "createField",
		Method:        http.MethodPost,
		Path:          "/v1/schema/fields",
		Summary:       "Append a field definition",
		Tags:          []string{"Schema"},
		Errors:        []int{http.StatusConflict, http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
		DefaultStatus: http.StatusCreated,
	}, h.createField)
	huma.Register(api, huma.Operation{
		OperationID: "updateField",
		Method:      http.MethodPut,
		Path:        "/v1/schema/fields/{index}",
		Summary:     "Replace the field definition at a storage index",
		Tags:        []string{"Schema"},
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, h.updateField)
	huma.Register(api, huma.Operation{
		OperationID:   "deleteField",
		Method:        http.MethodDelete,
		Path:          "/v1/schema/fields/{index}",
		Summary:       "Delete the field definition at a storage index",
		Tags:          []string{"Schema"},
		Errors:        []int{http.StatusNotFound, http.StatusServiceUnavailable},
		DefaultStatus: http.StatusNoContent,
	}, h.deleteField)
	huma.Register(api, huma.Operation{
		OperationID:   "normalizeSchema",
		Method:        http.MethodPost,
		Path:          "/v1/schema/normalize",
		Summary:       "Rewrite storage order by display order",
		Tags:          []string{"Schema"},
		Errors:        []int{http.StatusServiceUnavailable},
		DefaultStatus: http.StatusNoContent,
	}, h.normalize)
	huma.Register(api, huma.Operation{
		OperationID: "getLayout",
		Method:      http.MethodGet,
		Path:        "/v1/layout",
		Summary:     "Resolve the data-entry grid",
		Tags:        []string{"Layout"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.layout)
	huma.Register(api, huma.Operation{
		OperationID:   "submitRecord",
		Method:        http.MethodPost,
		Path:          "/v1/records",
		Summary:       "Validate a submission and append it to the history",
		Tags:          []string{"Records"},
		Errors:        []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
		DefaultStatus: http.StatusCreated,
	}, h.submit)
	huma.Register(api, huma.Operation{
		OperationID: "validateRecord",
		Method:      http.MethodPost,
		Path:        "/v1/records/validate",
		Summary:     "Validate a submission without storing it",
		Tags:        []string{"Records"},
		Errors:      []int{http.StatusUnprocessableEntity, http.StatusServiceUnavailable},
	}, h.validate)
	huma.Register(api, huma.Operation{
		OperationID: "listRecords",
		Method:      http.MethodGet,
		Path:        "/v1/records",
		Summary:     "List the history in creation order",
		Tags:        []string{"Records"},
		Errors:      []int{http.StatusServiceUnavailable},
	}, h.listRecords)
	huma.Register(api, huma.Operation{
		OperationID:   "resetRecords",
		Method:        http.MethodDelete,
		Path:          "/v1/records",
		Summary:       "Delete the whole history",
		Tags:          []string{"Records"},
		DefaultStatus: http.StatusNoContent,
	}, h.resetRecords)
}

func (h *FormHandler) getSchema(ctx context.Context, _ *struct{}) (*schemaOutput, error) {
	fields, err := h.Svc.Fields()
	if err != nil {
		return nil, toHTTP(err)
	}
	return &schemaOutput{Body: schema.Schema{Fields: nonNil(fields)}}, nil
}

func (h *FormHandler) resetSchema(ctx context.Context, _ *struct{}) (*struct{}, error) {
	return nil, toHTTP(h.Svc.ResetSchema())
}

func (h *FormHandler) createField(ctx context.Context, in *fieldInput) (*fieldOutput, error) {
	f, err := in.Body.ToField(sdk.AutoOrder)
	if err != nil {
		return nil, huma.NewError(http.StatusUnprocessableEntity, err.Error(), &huma.ErrorDetail{Location: "body.type", Message: err.Error(), Value: in.Body.Type})
	}
	stored, index, err := h.Svc.AddField(f)
	if err != nil {
		return nil, toHTTP(err)
	}
	return &fieldOutput{Body: schema.IndexedField{Index: index, Field: stored}}, nil
}

func (h *FormHandler) updateField(ctx context.Context, in *indexedFieldInput) (*fieldOutput, error) {
	f, err := in.Body.ToField(sdk.AutoOrder)
	if err != nil {
		return nil, huma.NewError(http.StatusUnprocessableEntity, err.Error(), &huma.ErrorDetail{Location: "body.type", Message: err.Error(), Value: in.Body.Type})
	}
	stored, err := h.Svc.UpdateField(in.Index, f)
	if err != nil {
		return nil, toHTTP(err)
	}
	return &fieldOutput{Body: schema.IndexedField{Index: in.Index, Field: stored}}, nil
}

func (h *FormHandler) deleteField(ctx context.Context, in *indexInput) (*struct{}, error) {
	return nil, toHTTP(h.Svc.DeleteField(in.Index))
}

func (h *FormHandler) normalize(ctx context.Context, _ *struct{}) (*struct{}, error) {
	return nil, toHTTP(h.Svc.NormalizeOrder())
}

func (h *FormHandler) layout(ctx context.Context, in *layoutParams) (*layoutOutput, error) {
	columns := in.Columns
	if columns <= 0 {
		columns = h.Svc.ColumnsPerRow()
	}
	cells, err := h.Svc.Layout(columns)
	if err != nil {
		return nil, toHTTP(err)
	}
	return &layoutOutput{Body: schema.FromCells(columns, cells)}, nil
}

func (h *FormHandler) submit(ctx context.Context, in *submitInput) (*recordOutput, error) {
	d := h.Svc.NewDraft()
	d.Header = in.Body.Header()
	for label, v := range in.Body.Values {
		d.Set(label, v)
	}
	rec, err := h.Svc.Submit(d)
	if err != nil {
		return nil, toHTTP(err)
	}
	return &recordOutput{Body: schema.Stored{Record: rec}}, nil
}

func (h *FormHandler) validate(ctx context.Context, in *submitInput) (*validateOutput, error) {
	d := h.Svc.NewDraft()
	d.Header = in.Body.Header()
	for label, v := range in.Body.Values {
		d.Set(label, v)
	}
	details, err := h.Svc.Validate(d)
	if err != nil {
		return nil, toHTTP(err)
	}
	return &validateOutput{Body: schema.Validated{Details: details}}, nil
}

func (h *FormHandler) listRecords(ctx context.Context, _ *struct{}) (*recordsOutput, error) {
	recs, err := h.Svc.Records()
	if err != nil {
		return nil, toHTTP(err)
	}
	return &recordsOutput{Body: schema.Records{Records: nonNil(recs)}}, nil
}

func (h *FormHandler) resetRecords(ctx context.Context, _ *struct{}) (*struct{}, error) {
	return nil, toHTTP(h.Svc.ResetRecords())
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
