package sdk

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/faciam-dev/gcform/internal/events"
	"github.com/faciam-dev/gcform/internal/metrics"
	"github.com/faciam-dev/gcform/internal/recordstore"
	"github.com/faciam-dev/gcform/internal/schemastore"
	"github.com/faciam-dev/gcform/pkg/layout"
	"github.com/faciam-dev/gcform/pkg/schema"
	"github.com/faciam-dev/gcform/pkg/validate"
)

// AutoOrder as a field's DisplayOrder asks AddField to place it after every
// existing field.
const AutoOrder = math.MinInt

// Service is the form engine used by presentation layers: it owns the two
// stores and the validation engine and serializes every call.
type Service struct {
	mu      sync.Mutex
	schema  *schemastore.Store
	records *recordstore.Store
	engine  *validate.Engine
	columns int
	logger  *zap.SugaredLogger
	events  *events.Dispatcher
	cancel  []func()
	// pending holds subscriber calls queued by mutations; they run once mu
	// is released so subscribers may call back into the service.
	pending []func()
}

// New returns a Service initialized with the given configuration.
func New(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	columns := cfg.ColumnsPerRow
	if columns <= 0 {
		columns = layout.DefaultColumns
	}
	s := &Service{
		schema: schemastore.New(cfg.SchemaPath,
			schemastore.WithLogger(logger), schemastore.WithClock(now)),
		records: recordstore.New(cfg.RecordPath,
			recordstore.WithLogger(logger), recordstore.WithClock(now)),
		engine:  &validate.Engine{Now: now},
		columns: columns,
		logger:  logger,
		events:  cfg.Events,
	}
	s.cancel = append(s.cancel,
		s.schema.Subscribe(s.onSchemaChanged),
		s.records.Subscribe(s.onRecordsChanged),
	)
	return s
}

// Close detaches the service from its stores and waits for pending event
// deliveries.
func (s *Service) Close() {
	s.mu.Lock()
	for _, c := range s.cancel {
		c()
	}
	s.cancel = nil
	s.mu.Unlock()
	if s.events != nil {
		s.events.Wait()
	}
}

// ColumnsPerRow returns the configured layout width.
func (s *Service) ColumnsPerRow() int { return s.columns }

// SchemaPath returns the schema document path.
func (s *Service) SchemaPath() string { return s.schema.Path() }

// RecordPath returns the record document path.
func (s *Service) RecordPath() string { return s.records.Path() }

// Fields returns the schema in storage order.
func (s *Service) Fields() ([]schema.Field, error) {
	s.mu.Lock()
	defer s.unlock()
	return s.loadFields()
}

// SortedFields returns the schema in display order.
func (s *Service) SortedFields() ([]schema.Field, error) {
	s.mu.Lock()
	defer s.unlock()
	fields, err := s.loadFields()
	if err != nil {
		return nil, err
	}
	return schema.Sorted(fields), nil
}

// AddField appends f and returns the stored definition with its storage
// index. A DisplayOrder of AutoOrder is replaced with the next free order.
func (s *Service) AddField(f schema.Field) (schema.Field, int, error) {
	s.mu.Lock()
	defer s.unlock()
	fields, err := s.loadFields()
	if err != nil {
		return schema.Field{}, 0, err
	}
	if f.DisplayOrder == AutoOrder {
		f.DisplayOrder = schema.NextDisplayOrder(fields)
	}
	if err := s.schema.Append(f); err != nil {
		return schema.Field{}, 0, err
	}
	return f.Normalize(), len(fields), nil
}

// UpdateField replaces the field at storage index i.
func (s *Service) UpdateField(i int, f schema.Field) (schema.Field, error) {
	s.mu.Lock()
	defer s.unlock()
	if f.DisplayOrder == AutoOrder {
		fields, err := s.loadFields()
		if err != nil {
			return schema.Field{}, err
		}
		if i >= 0 && i < len(fields) {
			f.DisplayOrder = fields[i].DisplayOrder
		}
	}
	if err := s.schema.Update(i, f); err != nil {
		return schema.Field{}, err
	}
	return f.Normalize(), nil
}

// DeleteField removes the field at storage index i.
func (s *Service) DeleteField(i int) error {
	s.mu.Lock()
	defer s.unlock()
	return s.schema.Delete(i)
}

// NormalizeOrder rewrites storage order by display order.
func (s *Service) NormalizeOrder() error {
	s.mu.Lock()
	defer s.unlock()
	return s.schema.NormalizeOrder()
}

// ResetSchema removes every field.
func (s *Service) ResetSchema() error {
	s.mu.Lock()
	defer s.unlock()
	return s.schema.Reset()
}

// QuarantineSchema moves a corrupt schema document aside.
func (s *Service) QuarantineSchema() (string, error) {
	s.mu.Lock()
	defer s.unlock()
	return s.schema.Quarantine()
}

// Layout resolves the grid for the current schema. columns <= 0 uses the
// configured width.
func (s *Service) Layout(columns int) ([]layout.Cell, error) {
	if columns <= 0 {
		columns = s.columns
	}
	fields, err := s.SortedFields()
	if err != nil {
		return nil, err
	}
	return layout.Resolve(fields, columns), nil
}

// SchemaReloaded is called when the schema document may have changed outside
// this service. It announces the change only when the content differs from
// what the service last wrote or announced. Reads in between do not hide an
// edit.
func (s *Service) SchemaReloaded() error {
	s.mu.Lock()
	defer s.unlock()
	changed, err := s.schema.Modified()
	if err != nil || !changed {
		return err
	}
	fields, err := s.loadFields()
	if err != nil {
		return err
	}
	s.logger.Infow("schema changed on disk", "path", s.schema.Path(), "fields", len(fields))
	s.emit(events.SchemaChanged, schemaPayload{Op: "reload", Fields: len(fields)})
	return nil
}

// CountFields implements metrics.Counter.
func (s *Service) CountFields() (int, error) {
	fields, err := s.Fields()
	return len(fields), err
}

// SubscribeSchema registers fn for schema changes made through this service.
// fn runs after the mutating call has released the service, so it may read
// the schema or layout again.
func (s *Service) SubscribeSchema(fn func(schemastore.Event)) (cancel func()) {
	return s.schema.Subscribe(func(ev schemastore.Event) {
		s.queue(func() { fn(ev) })
	})
}

// queue queues fn until the current call releases mu. Store events are only
// published from mutations, which always run with mu held.
func (s *Service) queue(fn func()) {
	s.pending = append(s.pending, fn)
}

// unlock releases mu and runs the queued subscriber calls.
func (s *Service) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (s *Service) loadFields() ([]schema.Field, error) {
	fields, err := s.schema.Load()
	if err != nil {
		metrics.StoreErrors.WithLabelValues("schema", errKind(err)).Inc()
		s.logger.Warnw("schema load failed", "path", s.schema.Path(), "error", err)
		return nil, err
	}
	metrics.Fields.Set(float64(len(fields)))
	return fields, nil
}
