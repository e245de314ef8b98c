package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/faciam-dev/gcform/internal/api/handler"
	apischema "github.com/faciam-dev/gcform/internal/api/schema"
	"github.com/faciam-dev/gcform/pkg/layout"
	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/validate"
	"github.com/faciam-dev/gcform/pkg/value"
	sdk "github.com/faciam-dev/gcform/sdk"
)

type httpClient struct {
	base string
	http *resty.Client
}

type Option func(*httpClient)

// WithToken sets the Authorization token
func WithToken(tok string) Option {
	return func(c *httpClient) {
		if tok != "" {
			c.http.SetAuthToken(tok)
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = resty.NewWithClient(hc)
	}
}

// NewHTTP returns a new Client for the given base URL.
func NewHTTP(base string, opts ...Option) Client {
	c := &httpClient{base: strings.TrimRight(base, "/"), http: resty.New()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Fields(ctx context.Context) ([]schema.Field, error) {
	var out apischema.Schema
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/schema")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out.Fields, nil
}

func (c *httpClient) AddField(ctx context.Context, f schema.Field) (schema.Field, error) {
	body := apischema.FromField(f)
	if f.DisplayOrder == sdk.AutoOrder {
		body.DisplayOrder = nil
	}
	var out apischema.IndexedField
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Post(c.base + "/v1/schema/fields")
	if err != nil {
		return schema.Field{}, err
	}
	if resp.IsError() {
		return schema.Field{}, restyErr(resp)
	}
	return out.Field, nil
}

func (c *httpClient) UpdateField(ctx context.Context, i int, f schema.Field) (schema.Field, error) {
	body := apischema.FromField(f)
	if f.DisplayOrder == sdk.AutoOrder {
		body.DisplayOrder = nil
	}
	var out apischema.IndexedField
	resp, err := c.http.R().SetContext(ctx).SetBody(body).SetResult(&out).Put(c.base + "/v1/schema/fields/" + strconv.Itoa(i))
	if err != nil {
		return schema.Field{}, err
	}
	if resp.IsError() {
		return schema.Field{}, restyErr(resp)
	}
	return out.Field, nil
}

func (c *httpClient) DeleteField(ctx context.Context, i int) error {
	return c.send(ctx, http.MethodDelete, "/v1/schema/fields/"+strconv.Itoa(i))
}

func (c *httpClient) NormalizeOrder(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/v1/schema/normalize")
}

func (c *httpClient) ResetSchema(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, "/v1/schema")
}

func (c *httpClient) Layout(ctx context.Context, columns int) ([]layout.Cell, error) {
	var out apischema.Layout
	req := c.http.R().SetContext(ctx).SetResult(&out)
	if columns > 0 {
		req.SetQueryParam("columns", strconv.Itoa(columns))
	}
	resp, err := req.Get(c.base + "/v1/layout")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out.ToCells(), nil
}

func (c *httpClient) Validate(ctx context.Context, d *validate.Draft) (value.Map, error) {
	var out apischema.Validated
	resp, err := c.http.R().SetContext(ctx).SetBody(submission(d)).SetResult(&out).Post(c.base + "/v1/records/validate")
	if err != nil {
		return value.Map{}, err
	}
	if resp.IsError() {
		return value.Map{}, restyErr(resp)
	}
	return out.Details, nil
}

func (c *httpClient) Submit(ctx context.Context, d *validate.Draft) (record.Record, error) {
	var out apischema.Stored
	resp, err := c.http.R().SetContext(ctx).SetBody(submission(d)).SetResult(&out).Post(c.base + "/v1/records")
	if err != nil {
		return record.Record{}, err
	}
	if resp.IsError() {
		return record.Record{}, restyErr(resp)
	}
	d.Clear()
	return out.Record, nil
}

func (c *httpClient) Records(ctx context.Context) ([]record.Record, error) {
	var out apischema.Records
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(c.base + "/v1/records")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, restyErr(resp)
	}
	return out.Records, nil
}

func (c *httpClient) ResetRecords(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, "/v1/records")
}

func (c *httpClient) Mode() string { return "http" }

func (c *httpClient) send(ctx context.Context, method, path string) error {
	resp, err := c.http.R().SetContext(ctx).Execute(method, c.base+path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return restyErr(resp)
	}
	return nil
}

func submission(d *validate.Draft) apischema.Submission {
	return apischema.Submission{
		EntryDate:   d.Header.EntryDate,
		ProductName: d.Header.ProductName,
		LotNo:       d.Header.LotNo,
		Values:      d.Values,
	}
}

type errorModel struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Errors []struct {
		Message  string `json:"message"`
		Location string `json:"location"`
		Value    any    `json:"value"`
	} `json:"errors"`
}

// restyErr turns an API error response back into the sentinel errors the
// local service returns.
func restyErr(resp *resty.Response) error {
	var em errorModel
	if err := json.Unmarshal(resp.Body(), &em); err != nil || em.Detail == "" {
		return fmt.Errorf("%s", resp.Status())
	}
	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, em.Detail)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", sdk.ErrDuplicateLabel, em.Detail)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", sdk.ErrIndexOutOfRange, em.Detail)
	case http.StatusServiceUnavailable:
		if strings.HasPrefix(em.Detail, sdk.ErrStoreCorrupt.Error()) {
			return fmt.Errorf("%w: %s", sdk.ErrStoreCorrupt, strings.TrimPrefix(em.Detail, sdk.ErrStoreCorrupt.Error()+": "))
		}
		return fmt.Errorf("%w: %s", sdk.ErrSchemaCorrupt, strings.TrimPrefix(em.Detail, sdk.ErrSchemaCorrupt.Error()+": "))
	case http.StatusUnprocessableEntity:
		var errs validate.Errors
		for _, d := range em.Errors {
			if label, ok := strings.CutPrefix(d.Location, handler.LocationValues); ok {
				code, _ := d.Value.(string)
				errs = append(errs, validate.Error{Label: label, Code: validate.Code(code), Message: d.Message})
				continue
			}
			switch d.Location {
			case "body.product_name", "body.lot_no":
				return sdk.ErrMissingHeader
			case "body.entry_date":
				return fmt.Errorf("%w: %s", sdk.ErrInvalidEntryDate, strings.TrimPrefix(em.Detail, sdk.ErrInvalidEntryDate.Error()+": "))
			}
		}
		if len(errs) > 0 {
			return errs
		}
		return fmt.Errorf("%w: %s", sdk.ErrInvalidField, em.Detail)
	}
	return fmt.Errorf("%s: %s", resp.Status(), em.Detail)
}
