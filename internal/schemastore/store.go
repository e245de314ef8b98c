// Package schemastore persists the ordered list of field definitions.
package schemastore

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/faciam-dev/gcform/internal/fileutil"
	"github.com/faciam-dev/gcform/pkg/codec"
	"github.com/faciam-dev/gcform/pkg/schema"
)

var (
	// ErrSchemaCorrupt is returned when the stored document cannot be decoded.
	ErrSchemaCorrupt = errors.New("schema document is corrupt")
	// ErrDuplicateLabel is returned when a label is already used by another field.
	ErrDuplicateLabel = errors.New("duplicate field label")
	// ErrIndexOutOfRange is returned for a storage index outside the schema.
	ErrIndexOutOfRange = errors.New("field index out of range")
)

// Op names the mutation that produced an Event.
type Op string

const (
	OpAppend    Op = "append"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpNormalize Op = "normalize"
	OpReset     Op = "reset"
)

// Event is delivered to subscribers after a mutation has been persisted.
type Event struct {
	Op     Op
	Fields []schema.Field
	Report schema.DiffReport
}

// Store reads and writes one schema document. It is not safe for concurrent
// writers; callers serialize access.
type Store struct {
	path   string
	logger *zap.SugaredLogger
	now    func() time.Time

	mu      sync.Mutex
	nextSub int
	subs    map[int]func(Event)
	digest  [sha256.Size]byte
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

// WithClock overrides the clock used to name quarantined files.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a store backed by the file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: zap.NewNop().Sugar(),
		now:    time.Now,
		subs:   map[int]func(Event){},
	}
	for _, o := range opts {
		o(s)
	}
	if b, _, err := fileutil.ReadIfExists(path); err == nil {
		s.remember(b)
	}
	return s
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Load returns the fields in storage order. A missing file is an empty schema.
func (s *Store) Load() ([]schema.Field, error) {
	b, ok, err := fileutil.ReadIfExists(s.path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	fields, err := codec.DecodeSchema(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSchemaCorrupt, s.path, err)
	}
	seen := make(map[string]struct{}, len(fields))
	for i, f := range fields {
		if strings.TrimSpace(f.Label) == "" {
			return nil, fmt.Errorf("%w: %s: field %d has no label", ErrSchemaCorrupt, s.path, i)
		}
		if _, dup := seen[f.Label]; dup {
			return nil, fmt.Errorf("%w: %s: label %q appears twice", ErrSchemaCorrupt, s.path, f.Label)
		}
		seen[f.Label] = struct{}{}
		if err := schema.CheckBounds(f); err != nil {
			return nil, fmt.Errorf("%w: %s: field %q: %v", ErrSchemaCorrupt, s.path, f.Label, err)
		}
	}
	return fields, nil
}

// Sorted returns the fields in display order.
func (s *Store) Sorted() ([]schema.Field, error) {
	fields, err := s.Load()
	if err != nil {
		return nil, err
	}
	return schema.Sorted(fields), nil
}

// Append adds f at the end of storage order.
func (s *Store) Append(f schema.Field) error {
	f = f.Normalize()
	if err := schema.Check(f); err != nil {
		return err
	}
	fields, err := s.Load()
	if err != nil {
		return err
	}
	if schema.IndexOf(fields, f.Label) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, f.Label)
	}
	next := append(append([]schema.Field(nil), fields...), f)
	return s.commit(OpAppend, fields, next)
}

// Update replaces the field at storage index i.
func (s *Store) Update(i int, f schema.Field) error {
	fields, err := s.Load()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(fields) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(fields))
	}
	f = f.Normalize()
	if err := schema.Check(f); err != nil {
		return err
	}
	if j := schema.IndexOf(fields, f.Label); j >= 0 && j != i {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, f.Label)
	}
	next := append([]schema.Field(nil), fields...)
	next[i] = f
	return s.commit(OpUpdate, fields, next)
}

// Delete removes the field at storage index i.
func (s *Store) Delete(i int) error {
	fields, err := s.Load()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(fields) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(fields))
	}
	next := make([]schema.Field, 0, len(fields)-1)
	next = append(next, fields[:i]...)
	next = append(next, fields[i+1:]...)
	return s.commit(OpDelete, fields, next)
}

// NormalizeOrder rewrites storage order sorted by display order. It does
// nothing when no schema has been stored.
func (s *Store) NormalizeOrder() error {
	_, ok, err := fileutil.ReadIfExists(s.path)
	if err != nil || !ok {
		return err
	}
	fields, err := s.Load()
	if err != nil {
		return err
	}
	return s.commit(OpNormalize, fields, schema.Sorted(fields))
}

// Reset removes the stored schema. Resetting an absent schema succeeds.
func (s *Store) Reset() error {
	prev, _ := s.Load()
	if err := fileutil.RemoveIfExists(s.path); err != nil {
		return err
	}
	s.remember(nil)
	s.logger.Debugw("schema reset", "path", s.path)
	s.publish(Event{Op: OpReset, Report: schema.Summarize(schema.Diff(prev, nil))})
	return nil
}

// Quarantine moves the stored document aside and returns its new path. Use
// it after Load reported ErrSchemaCorrupt and the user agreed to start over.
func (s *Store) Quarantine() (string, error) {
	dst, err := fileutil.Quarantine(s.path, s.now())
	if err != nil {
		return "", err
	}
	s.logger.Warnw("schema quarantined", "path", s.path, "moved_to", dst)
	return dst, nil
}

// Modified reports whether the document on disk differs from the one found
// when the store was opened, last written by it, or seen by the previous
// Modified call. The current document becomes the new reference. Load does
// not move the reference, so an external edit stays pending until checked.
func (s *Store) Modified() (bool, error) {
	b, _, err := fileutil.ReadIfExists(s.path)
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256(b)
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := sum != s.digest
	s.digest = sum
	return changed, nil
}

func (s *Store) remember(b []byte) {
	sum := sha256.Sum256(b)
	s.mu.Lock()
	s.digest = sum
	s.mu.Unlock()
}

// Subscribe registers fn for change events and returns a function that
// removes it. fn runs synchronously after each persisted mutation.
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

func (s *Store) commit(op Op, prev, next []schema.Field) error {
	b, err := codec.EncodeSchema(next)
	if err != nil {
		return err
	}
	if err := fileutil.WriteAtomic(s.path, b); err != nil {
		s.logger.Errorw("schema write failed", "path", s.path, "op", op, "error", err)
		return fmt.Errorf("write schema: %w", err)
	}
	s.remember(b)
	report := schema.Summarize(schema.Diff(prev, next))
	s.logger.Debugw("schema persisted", "path", s.path, "op", op, "fields", len(next),
		"added", report.Added, "deleted", report.Deleted, "updated", report.Updated)
	s.publish(Event{Op: op, Fields: next, Report: report})
	return nil
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
