package multirow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrEmptyField   = errors.New("field name must not be empty")
)

// Store is the state container of a hosting form: it holds the value of
// many named multi-row fields, folds intents into them, and serves
// materialized views. Every accepted intent is appended to the intent log.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	fields    map[string]FieldValue
	revisions map[string]int
	log       *IntentLog

	cache   *ViewCache
	metrics *Metrics
	logger  *slog.Logger
	inspect bool
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics collectors.
func WithMetrics(m *Metrics) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates an empty store.
func NewStore(cfg Config, opts ...StoreOption) *Store {
	s := &Store{
		fields:    make(map[string]FieldValue),
		revisions: make(map[string]int),
		log:       NewIntentLog(),
		cache:     NewViewCache(cfg.ViewCacheSize),
		logger:    slog.Default(),
		inspect:   cfg.InspectOnMutation,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init (re)initializes a field with a value supplied by the hosting form.
func (s *Store) Init(field string, v FieldValue) error {
	if field == "" {
		return ErrEmptyField
	}
	_, err := s.apply(Intent{Type: IntentInit, Field: field, Value: v}, false)
	return err
}

// Value returns the current value of a field.
func (s *Store) Value(field string) (FieldValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.fields[field]
	if !ok {
		return FieldValue{}, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return v, nil
}

// Revision returns the number of intents applied to a field, or -1 if unknown.
func (s *Store) Revision(field string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rev, ok := s.revisions[field]
	if !ok {
		return -1
	}
	return rev
}

// Fields returns the names of every initialized field.
func (s *Store) Fields() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	return names
}

// Edit applies a single-field edit to a record of field.
func (s *Store) Edit(field string, c Change) (FieldValue, error) {
	return s.apply(Intent{Type: IntentEdit, Field: field, Change: c}, true)
}

// Delete removes a record from field.
func (s *Store) Delete(field string, id RecordID) (FieldValue, error) {
	return s.apply(Intent{Type: IntentDelete, Field: field, ID: id}, true)
}

// Add appends a not-yet-persisted record to field.
func (s *Store) Add(field string, rec Record) (FieldValue, error) {
	return s.apply(Intent{Type: IntentAdd, Field: field, Record: rec}, true)
}

// Dispatch folds a payload built by BuildEditPayload or BuildAddPayload.
func (s *Store) Dispatch(field string, p ChangeRecord) (FieldValue, error) {
	return s.apply(Intent{Type: IntentChange, Field: field, Payload: p}, true)
}

// Commit replaces the baseline of field with the server-confirmed records
// and clears its pending mutations.
func (s *Store) Commit(field string, confirmed []Record) (FieldValue, error) {
	return s.apply(Intent{Type: IntentCommit, Field: field, Records: confirmed}, true)
}

// Reset drops the pending mutations of field.
func (s *Store) Reset(field string) (FieldValue, error) {
	return s.apply(Intent{Type: IntentReset, Field: field}, true)
}

// View returns the materialized view of field, memoized per revision.
func (s *Store) View(field string) ([]Record, error) {
	s.mu.RLock()
	v, ok := s.fields[field]
	rev := s.revisions[field]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	if view, hit := s.cache.Get(field, rev); hit {
		s.metrics.observeCache(true)
		return cloneRecords(view), nil
	}
	s.metrics.observeCache(false)

	start := time.Now()
	view := Materialize(v)
	s.metrics.observeMaterialize(start)
	s.cache.Put(field, rev, view)
	return cloneRecords(view), nil
}

// キャッシュ内のスライスは呼び出し側に渡さない。
func cloneRecords(records []Record) []Record {
	if records == nil {
		return nil
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out
}

// Diff returns what the submit step needs to persist for field.
func (s *Store) Diff(field string) (Submission, error) {
	v, err := s.Value(field)
	if err != nil {
		return Submission{}, err
	}
	return Diff(v), nil
}

// Log returns a copy of the intents applied so far.
func (s *Store) Log() *IntentLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := NewIntentLog()
	for _, in := range s.log.Range(0, s.log.Len()) {
		out.Append(in)
	}
	return out
}

func (s *Store) apply(in Intent, mustExist bool) (FieldValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.fields[in.Field]
	if mustExist && !ok {
		return FieldValue{}, fmt.Errorf("%w: %s", ErrUnknownField, in.Field)
	}

	after := in.Apply(before)
	s.fields[in.Field] = after
	s.revisions[in.Field]++
	offset := s.log.Append(in)

	s.metrics.observeTransition(in.Type)
	if in.Type == IntentEdit && isCleanRevert(before, in.Change) {
		s.metrics.observeRevert()
	}

	s.logger.Debug("field intent applied",
		slog.String("field", in.Field),
		slog.String("intent", in.Type.String()),
		slog.Int("offset", offset),
		slog.Int("revision", s.revisions[in.Field]),
		slog.String("shape", after.Shape().String()),
	)

	if s.inspect {
		if state, tracked := after.State(); tracked {
			result := Inspect(context.Background(), state)
			if !result.Valid {
				s.metrics.observeIssues(result.Issues)
				for _, issue := range result.Issues {
					s.logger.Warn("field invariant violated",
						slog.String("field", in.Field),
						slog.String("issue", issue.Type),
						slog.String("record_id", issue.RecordID.String()),
						slog.String("message", issue.Message),
					)
				}
			}
		}
	}
	return after, nil
}

// isCleanRevert reports whether c restores a baseline value that had a pending edit.
func isCleanRevert(before FieldValue, c Change) bool {
	state, ok := before.State()
	if !ok {
		return false
	}
	pending := false
	for _, e := range state.Edits {
		if e.ID == c.ID && e.Name == c.Name {
			pending = true
			break
		}
	}
	if !pending {
		return false
	}
	original, found := findRecord(state.Baseline, c.ID)
	if !found {
		return false
	}
	current, _ := original.Get(c.Name)
	return Equal(current, c.Value)
}
