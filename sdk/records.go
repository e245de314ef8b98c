package sdk

import (
	"errors"

	"github.com/faciam-dev/gcform/internal/metrics"
	"github.com/faciam-dev/gcform/internal/recordstore"
	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/validate"
	"github.com/faciam-dev/gcform/pkg/value"
)

// NewDraft starts a data-entry session.
func (s *Service) NewDraft() *validate.Draft { return validate.NewDraft() }

// Validate checks d against the current schema without storing anything.
func (s *Service) Validate(d *validate.Draft) (value.Map, error) {
	fields, err := s.SortedFields()
	if err != nil {
		return value.Map{}, err
	}
	return d.Validate(s.engine, fields)
}

// Submit validates d against the current schema and appends it to the
// history. The draft is cleared only when the record was stored.
func (s *Service) Submit(d *validate.Draft) (record.Record, error) {
	s.mu.Lock()
	defer s.unlock()

	h := d.Header.Trimmed()
	if h.ProductName == "" || h.LotNo == "" {
		metrics.Submissions.WithLabelValues("rejected").Inc()
		return record.Record{}, recordstore.ErrMissingHeader
	}
	fields, err := s.loadFields()
	if err != nil {
		return record.Record{}, err
	}
	details, err := d.Validate(s.engine, fields)
	if err != nil {
		metrics.Submissions.WithLabelValues("rejected").Inc()
		if errs, ok := validate.AsErrors(err); ok {
			for _, e := range errs {
				metrics.ValidationErrors.WithLabelValues(string(e.Code)).Inc()
			}
		}
		return record.Record{}, err
	}
	rec, err := s.records.Append(d.Header, details)
	if err != nil {
		metrics.Submissions.WithLabelValues("failed").Inc()
		if !errors.Is(err, recordstore.ErrInvalidEntryDate) {
			metrics.StoreErrors.WithLabelValues("records", errKind(err)).Inc()
		}
		return record.Record{}, err
	}
	metrics.Submissions.WithLabelValues("accepted").Inc()
	d.Clear()
	return rec, nil
}

// Records returns the history in creation order.
func (s *Service) Records() ([]record.Record, error) {
	s.mu.Lock()
	defer s.unlock()
	recs, err := s.records.LoadAll()
	if err != nil {
		metrics.StoreErrors.WithLabelValues("records", errKind(err)).Inc()
		return nil, err
	}
	metrics.Records.Set(float64(len(recs)))
	return recs, nil
}

// ResetRecords deletes the whole history.
func (s *Service) ResetRecords() error {
	s.mu.Lock()
	defer s.unlock()
	return s.records.Reset()
}

// QuarantineRecords moves a corrupt record document aside.
func (s *Service) QuarantineRecords() (string, error) {
	s.mu.Lock()
	defer s.unlock()
	return s.records.Quarantine()
}

// CountRecords implements metrics.Counter.
func (s *Service) CountRecords() (int, error) {
	recs, err := s.Records()
	return len(recs), err
}

// SubscribeRecords registers fn for record store changes. Like
// SubscribeSchema, fn runs after the service has been released.
func (s *Service) SubscribeRecords(fn func(recordstore.Event)) (cancel func()) {
	return s.records.Subscribe(func(ev recordstore.Event) {
		s.queue(func() { fn(ev) })
	})
}
