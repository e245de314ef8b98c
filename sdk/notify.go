package sdk

import (
	"context"
	"errors"

	"github.com/faciam-dev/gcform/internal/events"
	"github.com/faciam-dev/gcform/internal/metrics"
	"github.com/faciam-dev/gcform/internal/recordstore"
	"github.com/faciam-dev/gcform/internal/schemastore"
	"github.com/faciam-dev/gcform/pkg/schema"
)

type schemaPayload struct {
	Op     string            `json:"op"`
	Fields int               `json:"fields"`
	Report schema.DiffReport `json:"report"`
}

type recordPayload struct {
	ID          string `json:"id,omitempty"`
	EntryDate   string `json:"entry_date,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	LotNo       string `json:"lot_no,omitempty"`
	Count       int    `json:"count"`
}

func (s *Service) onSchemaChanged(ev schemastore.Event) {
	metrics.SchemaChanges.WithLabelValues(string(ev.Op)).Inc()
	metrics.Fields.Set(float64(len(ev.Fields)))
	name := events.SchemaChanged
	if ev.Op == schemastore.OpReset {
		name = events.SchemaReset
	}
	s.emit(name, schemaPayload{Op: string(ev.Op), Fields: len(ev.Fields), Report: ev.Report})
}

func (s *Service) onRecordsChanged(ev recordstore.Event) {
	metrics.Records.Set(float64(ev.Count))
	switch ev.Type {
	case recordstore.EventAppended:
		r := ev.Record
		s.emit(events.RecordAppended, recordPayload{
			ID: r.ID, EntryDate: r.EntryDate, ProductName: r.ProductName, LotNo: r.LotNo, Count: ev.Count,
		})
	case recordstore.EventReset:
		s.emit(events.RecordsReset, recordPayload{})
	}
}

func (s *Service) emit(name string, data any) {
	if s.events == nil {
		return
	}
	s.events.Dispatch(context.Background(), events.New(name, data))
}

func errKind(err error) string {
	switch {
	case errors.Is(err, schemastore.ErrSchemaCorrupt), errors.Is(err, recordstore.ErrStoreCorrupt):
		return "corrupt"
	default:
		return "io"
	}
}
