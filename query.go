package multirow

// RecordCount returns how many records the user currently sees.
// Absent input counts as zero.
func RecordCount(v FieldValue) int {
	switch v.Shape() {
	case ShapeAbsent:
		return 0
	case ShapeList, ShapeScalar:
		return len(Normalize(v))
	case ShapeTracked:
		return len(Materialize(v))
	default:
		return 0
	}
}

// RecordIDs returns the ids of the materialized view in display order.
// Absent input yields nil, a known-empty field yields an empty slice.
func RecordIDs(v FieldValue) []RecordID {
	return MapRecords(v, func(r Record, _ int) RecordID { return r.ID })
}

// MapRecords projects every record of the materialized view.
// Absent input yields nil so callers can tell "unknown" from "empty".
func MapRecords[T any](v FieldValue, fn func(r Record, index int) T) []T {
	records := Materialize(v)
	if records == nil {
		return nil
	}
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = fn(r, i)
	}
	return out
}

// PendingEdits returns the pending edits of a Tracked value, or def for Simple input.
func PendingEdits(v FieldValue, def []ChangeRecord) []ChangeRecord {
	s, ok := v.State()
	if !ok {
		return def
	}
	return s.Edits
}

// AddedRecords returns the pending additions of a Tracked value, or def for Simple input.
func AddedRecords(v FieldValue, def []Record) []Record {
	s, ok := v.State()
	if !ok {
		return def
	}
	return s.Additions
}

// RemovedRecords returns the pending removals of a Tracked value, or def for Simple input.
func RemovedRecords(v FieldValue, def []Record) []Record {
	s, ok := v.State()
	if !ok {
		return def
	}
	return s.Removals
}

// BaselineRecords returns the baseline of a Tracked value, or the
// normalized records of a Simple one.
func BaselineRecords(v FieldValue) []Record {
	switch v.Shape() {
	case ShapeTracked:
		s, _ := v.State()
		return s.Baseline
	case ShapeAbsent, ShapeList, ShapeScalar:
		return Normalize(v)
	default:
		return nil
	}
}

// MergedEdits returns one record per edited id, built from the baseline
// copy with every pending edit of that id folded in. Simple values are
// returned normalized; Absent yields nil.
func MergedEdits(v FieldValue) []Record {
	switch v.Shape() {
	case ShapeAbsent, ShapeList, ShapeScalar:
		return Normalize(v)
	case ShapeTracked:
		s, _ := v.State()
		return mergeEdits(s.Baseline, s.Edits, indexByID(s.Baseline))
	default:
		return nil
	}
}

// EditedRecordIDs returns the ids of MergedEdits.
func EditedRecordIDs(v FieldValue) []RecordID {
	merged := MergedEdits(v)
	if merged == nil {
		return nil
	}
	ids := make([]RecordID, len(merged))
	for i, r := range merged {
		ids[i] = r.ID
	}
	return ids
}

// LastAddedID returns the id most recently added to the field.
// A Scalar value is its own last addition.
func LastAddedID(v FieldValue) (RecordID, bool) {
	switch v.Shape() {
	case ShapeScalar:
		return v.ScalarID()
	case ShapeTracked:
		s, _ := v.State()
		if len(s.Additions) == 0 {
			return RecordID{}, false
		}
		return s.Additions[len(s.Additions)-1].ID, true
	case ShapeAbsent, ShapeList:
		return RecordID{}, false
	default:
		return RecordID{}, false
	}
}
