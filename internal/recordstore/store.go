// Package recordstore keeps the append-only history of submitted records.
package recordstore

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/faciam-dev/gcform/internal/fileutil"
	"github.com/faciam-dev/gcform/pkg/codec"
	"github.com/faciam-dev/gcform/pkg/record"
	"github.com/faciam-dev/gcform/pkg/value"
)

var (
	// ErrStoreCorrupt is returned when the stored history cannot be decoded.
	ErrStoreCorrupt = errors.New("record store is corrupt")
	// ErrMissingHeader is returned when the product name or lot number is empty.
	ErrMissingHeader = errors.New("product name and lot number are required")
	// ErrInvalidEntryDate is returned when the entry date is not yyyy-MM-dd.
	ErrInvalidEntryDate = errors.New("invalid entry date")
)

// EventType distinguishes record store events.
type EventType string

const (
	EventAppended EventType = "appended"
	EventReset    EventType = "reset"
)

// Event is delivered to subscribers after a change has been persisted.
type Event struct {
	Type EventType
	// Record is set for EventAppended.
	Record record.Record
	// Count is the number of records held after the change.
	Count int
}

// Store reads and writes one record document.
type Store struct {
	path   string
	logger *zap.SugaredLogger
	now    func() time.Time
	newID  func() string

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(Event)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence messages.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the clock used for registered_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDs overrides record ID generation.
func WithIDs(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New returns a store backed by the file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: zap.NewNop().Sugar(),
		now:    time.Now,
		newID:  uuid.NewString,
		subs:   map[int]func(Event){},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// LoadAll returns every record in creation order.
func (s *Store) LoadAll() ([]record.Record, error) {
	b, ok, err := fileutil.ReadIfExists(s.path)
	if err != nil || !ok {
		return nil, err
	}
	recs, err := codec.DecodeRecords(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStoreCorrupt, s.path, err)
	}
	return recs, nil
}

// Append stores a new record built from header and details. An empty entry
// date means today. registered_at never goes backwards, even if the clock does.
func (s *Store) Append(header record.Header, details value.Map) (record.Record, error) {
	h := header.Trimmed()
	if h.ProductName == "" || h.LotNo == "" {
		return record.Record{}, ErrMissingHeader
	}
	now := s.now()
	if h.EntryDate == "" {
		h.EntryDate = now.Format(record.DateLayout)
	} else if _, err := time.Parse(record.DateLayout, h.EntryDate); err != nil {
		return record.Record{}, fmt.Errorf("%w: %q", ErrInvalidEntryDate, h.EntryDate)
	}

	recs, err := s.LoadAll()
	if err != nil {
		return record.Record{}, err
	}
	if n := len(recs); n > 0 && now.Before(recs[n-1].RegisteredAt) {
		now = recs[n-1].RegisteredAt
	}
	rec := record.Record{
		ID:           s.newID(),
		Header:       h,
		RegisteredAt: now,
		Details:      details,
	}
	recs = append(recs, rec)

	b, err := codec.EncodeRecords(recs)
	if err != nil {
		return record.Record{}, err
	}
	if err := fileutil.WriteAtomic(s.path, b); err != nil {
		s.logger.Errorw("record write failed", "path", s.path, "error", err)
		return record.Record{}, fmt.Errorf("write records: %w", err)
	}
	s.logger.Debugw("record appended", "path", s.path, "id", rec.ID, "lot_no", rec.LotNo, "count", len(recs))
	s.publish(Event{Type: EventAppended, Record: rec, Count: len(recs)})
	return rec, nil
}

// Reset deletes the whole history. Resetting an empty store succeeds.
func (s *Store) Reset() error {
	if err := fileutil.RemoveIfExists(s.path); err != nil {
		return err
	}
	s.logger.Debugw("records reset", "path", s.path)
	s.publish(Event{Type: EventReset})
	return nil
}

// Quarantine moves the stored document aside and returns its new path.
func (s *Store) Quarantine() (string, error) {
	dst, err := fileutil.Quarantine(s.path, s.now())
	if err != nil {
		return "", err
	}
	s.logger.Warnw("records quarantined", "path", s.path, "moved_to", dst)
	return dst, nil
}

// Subscribe registers fn for change events and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) publish(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
