package multirow

// ChangeRecord is one pending single-field edit, and also the normalized
// change descriptor the payload builders hand to the hosting form.
// Source is the record snapshot the edit is based on; nil when unknown.
type ChangeRecord struct {
	ID        RecordID
	Name      string
	Value     Value
	Source    *Record
	NewRecord bool
}

// Record returns the source record with this change applied.
// Without a source it returns a record carrying only the id and the field.
func (c ChangeRecord) Record() Record {
	base := Record{ID: c.ID}
	if c.Source != nil {
		base = *c.Source
	}
	if c.Name == "" {
		return base
	}
	return base.With(c.Name, c.Value)
}

// SameTarget reports whether two changes address the same (id, field) pair.
func SameTarget(a, b ChangeRecord) bool {
	return a.ID == b.ID && a.Name == b.Name
}

// TrackedState is the pending-mutation aggregate of a multi-row field.
//
// Invariants:
//   - Baseline is never mutated; it is the last known persisted snapshot.
//   - Removals only holds records that exist in Baseline.
//   - Edits holds at most one entry per (id, field).
//   - An edit equal to the baseline attribute is dropped (clean revert).
//
// NOTE: the slices are shared between successive states; callers must not
// mutate them in place. Every transition returns fresh slices.
type TrackedState struct {
	Baseline  []Record
	Additions []Record
	Removals  []Record
	Edits     []ChangeRecord
}

// Track lifts a field value into a TrackedState.
// Simple values become the baseline of a pristine state.
// スナップショットは以後変更しない前提。
func Track(v FieldValue) TrackedState {
	switch v.Shape() {
	case ShapeTracked:
		s, _ := v.State()
		return s
	case ShapeAbsent, ShapeList, ShapeScalar:
		return NewTrackedState(Normalize(v))
	default:
		return TrackedState{}
	}
}

// NewTrackedState returns a pristine state over baseline.
func NewTrackedState(baseline []Record) TrackedState {
	out := make([]Record, len(baseline))
	copy(out, baseline)
	return TrackedState{
		Baseline:  out,
		Additions: []Record{},
		Removals:  []Record{},
		Edits:     []ChangeRecord{},
	}
}

// Dirty reports whether any mutation is pending.
func (s TrackedState) Dirty() bool {
	return len(s.Additions) > 0 || len(s.Removals) > 0 || len(s.Edits) > 0
}

// Pristine drops every pending mutation and keeps the baseline.
func (s TrackedState) Pristine() TrackedState {
	return NewTrackedState(s.Baseline)
}

// Commit replaces the baseline with the server-confirmed collection and
// clears pending mutations.
func Commit(confirmed []Record) TrackedState {
	return NewTrackedState(confirmed)
}
