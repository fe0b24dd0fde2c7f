package multirow

import (
	"encoding/json"
	"sort"
)

// Submission is what the submit step sends for one field: new rows,
// deleted ids, and the changed fields of persisted rows.
type Submission struct {
	Added   []Record           `json:"added"`
	Removed []RecordID         `json:"removed"`
	Changed map[RecordID]Attrs `json:"-"`
}

// Diff reads the pending mutations of v into a Submission.
// Simple values have nothing pending and yield an empty submission.
func Diff(v FieldValue) Submission {
	out := Submission{
		Added:   []Record{},
		Removed: []RecordID{},
		Changed: map[RecordID]Attrs{},
	}
	s, ok := v.State()
	if !ok {
		return out
	}
	out.Added = append(out.Added, s.Additions...)
	for _, r := range s.Removals {
		out.Removed = append(out.Removed, r.ID)
	}
	out.Changed = FieldChanges(s.Edits)
	return out
}

// Empty reports whether nothing needs to be persisted.
func (s Submission) Empty() bool {
	return len(s.Added) == 0 && len(s.Removed) == 0 && len(s.Changed) == 0
}

// ChangedRecords returns the changed fields as records, ordered like ids.
// Ids without changes are skipped.
func (s Submission) ChangedRecords(ids []RecordID) []Record {
	out := make([]Record, 0, len(s.Changed))
	for _, id := range ids {
		attrs, ok := s.Changed[id]
		if !ok {
			continue
		}
		out = append(out, Record{ID: id, Attrs: attrs})
	}
	return out
}

// MarshalJSON encodes Changed as a list of partial records sorted by id.
func (s Submission) MarshalJSON() ([]byte, error) {
	ids := make([]RecordID, 0, len(s.Changed))
	for id := range s.Changed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return lessID(ids[i], ids[j]) })
	return json.Marshal(struct {
		Added   []Record   `json:"added"`
		Removed []RecordID `json:"removed"`
		Changed []Record   `json:"changed"`
	}{
		Added:   s.Added,
		Removed: s.Removed,
		Changed: s.ChangedRecords(ids),
	})
}

// lessID orders numeric ids before string ids.
func lessID(a, b RecordID) bool {
	if a.kind != b.kind {
		return a.kind < b.kind
	}
	if a.kind == idNumber {
		return a.num < b.num
	}
	return a.str < b.str
}
