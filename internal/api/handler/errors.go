package handler

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/faciam-dev/gcform/pkg/validate"
	"github.com/faciam-dev/gcform/sdk"
)

// LocationValues prefixes the location of per-field validation details.
const LocationValues = "body.values."

// toHTTP maps service errors onto API statuses. Unknown errors pass through
// and become 500.
func toHTTP(err error) error {
	if err == nil {
		return nil
	}
	if errs, ok := validate.AsErrors(err); ok {
		details := make([]error, len(errs))
		for i, e := range errs {
			details[i] = &huma.ErrorDetail{Location: LocationValues + e.Label, Message: e.Message, Value: string(e.Code)}
		}
		return huma.NewError(http.StatusUnprocessableEntity, "validation failed", details...)
	}
	switch {
	case sdk.IsCorrupt(err):
		return huma.Error503ServiceUnavailable(err.Error())
	case errors.Is(err, sdk.ErrDuplicateLabel):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, sdk.ErrIndexOutOfRange):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, sdk.ErrMissingHeader):
		return huma.NewError(http.StatusUnprocessableEntity, err.Error(),
			&huma.ErrorDetail{Location: "body.product_name", Message: "product_name and lot_no are required"})
	case errors.Is(err, sdk.ErrInvalidEntryDate):
		return huma.NewError(http.StatusUnprocessableEntity, err.Error(),
			&huma.ErrorDetail{Location: "body.entry_date", Message: err.Error()})
	case errors.Is(err, sdk.ErrInvalidField):
		return huma.NewError(http.StatusUnprocessableEntity, err.Error(),
			&huma.ErrorDetail{Location: "body", Message: err.Error()})
	}
	return err
}
