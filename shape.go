package multirow

// Shape discriminates what a multi-row field currently holds.
type Shape int

const (
	// ShapeAbsent means no field value is known.
	ShapeAbsent Shape = iota
	// ShapeList is a plain collection of full records.
	ShapeList
	// ShapeScalar is a single bare record identifier.
	ShapeScalar
	// ShapeTracked is a pending-mutation set on top of a baseline.
	ShapeTracked
)

func (s Shape) String() string {
	switch s {
	case ShapeAbsent:
		return "Absent"
	case ShapeList:
		return "List"
	case ShapeScalar:
		return "Scalar"
	case ShapeTracked:
		return "Tracked"
	default:
		return "Unknown"
	}
}

// FieldValue is the tagged union a multi-row field holds.
// The zero value is Absent.
type FieldValue struct {
	shape   Shape
	records []Record
	id      RecordID
	state   TrackedState
}

// Absent returns the "no field value known" marker.
func Absent() FieldValue { return FieldValue{} }

// ListOf returns a Simple value holding records. An empty call yields a
// known-empty list, which is distinct from Absent.
func ListOf(records ...Record) FieldValue {
	out := make([]Record, len(records))
	copy(out, records)
	return FieldValue{shape: ShapeList, records: out}
}

// ScalarOf returns a Simple value holding a single record identifier.
func ScalarOf(id RecordID) FieldValue {
	return FieldValue{shape: ShapeScalar, id: id}
}

// TrackedOf wraps a pending-mutation set.
func TrackedOf(s TrackedState) FieldValue {
	return FieldValue{shape: ShapeTracked, state: s}
}

// Shape returns the discriminator.
func (v FieldValue) Shape() Shape { return v.shape }

// IsAbsent reports whether no value is known.
func (v FieldValue) IsAbsent() bool { return v.shape == ShapeAbsent }

// State returns the pending-mutation set when the value is Tracked.
func (v FieldValue) State() (TrackedState, bool) {
	if v.shape != ShapeTracked {
		return TrackedState{}, false
	}
	return v.state, true
}

// ScalarID returns the identifier of a Scalar value.
func (v FieldValue) ScalarID() (RecordID, bool) {
	if v.shape != ShapeScalar {
		return RecordID{}, false
	}
	return v.id, true
}

// IsSimple reports whether v carries no pending-mutation tracking.
// Absent counts as Simple, like a bare primitive.
func IsSimple(v FieldValue) bool {
	switch v.shape {
	case ShapeAbsent, ShapeList, ShapeScalar:
		return true
	case ShapeTracked:
		return false
	default:
		return false
	}
}

// Normalize turns a Simple value into a record collection.
// A scalar id becomes [{id}] and a list is returned as a fresh slice. Absent yields nil.
// Tracked values are not Simple and also yield nil.
func Normalize(v FieldValue) []Record {
	switch v.shape {
	case ShapeScalar:
		return []Record{{ID: v.id}}
	case ShapeList:
		out := make([]Record, len(v.records))
		copy(out, v.records)
		return out
	case ShapeAbsent, ShapeTracked:
		return nil
	default:
		return nil
	}
}
