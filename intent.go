package multirow

// IntentType represents the kind of user intent applied to a field.
// ここでのIntentは「フィールドに対する最小単位の操作」を表す。
type IntentType int

const (
	IntentInit IntentType = iota
	IntentEdit
	IntentDelete
	IntentAdd
	IntentChange
	IntentCommit
	IntentReset
)

func (t IntentType) String() string {
	switch t {
	case IntentInit:
		return "Init"
	case IntentEdit:
		return "Edit"
	case IntentDelete:
		return "Delete"
	case IntentAdd:
		return "Add"
	case IntentChange:
		return "Change"
	case IntentCommit:
		return "Commit"
	case IntentReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// Intent is a single self-contained operation on one named field.
type Intent struct {
	Type  IntentType
	Field string

	// For Init
	Value FieldValue

	// For Edit
	Change Change

	// For Delete
	ID RecordID

	// For Add
	Record Record

	// For Change (a payload from the builders)
	Payload ChangeRecord

	// For Commit
	Records []Record
}

// Apply returns the field value after the intent.
// Mutating intents lift Simple values into a TrackedState first.
// Commit and Reset turn the field back into a Simple list.
func (in Intent) Apply(v FieldValue) FieldValue {
	switch in.Type {
	case IntentInit:
		return in.Value
	case IntentEdit:
		return TrackedOf(ApplyEdit(Track(v), in.Change))
	case IntentDelete:
		return TrackedOf(ApplyDelete(Track(v), in.ID))
	case IntentAdd:
		return TrackedOf(ApplyAdd(Track(v), in.Record))
	case IntentChange:
		return TrackedOf(ApplyChange(Track(v), in.Payload))
	case IntentCommit:
		return ListOf(in.Records...)
	case IntentReset:
		if s, ok := v.State(); ok {
			return ListOf(s.Baseline...)
		}
		return v
	default:
		return v
	}
}

// IntentLog is an append-only sequence of intents.
// It is not safe for concurrent use on its own; Store guards it.
type IntentLog struct {
	intents []Intent
}

// NewIntentLog creates an empty intent log.
func NewIntentLog() *IntentLog {
	return &IntentLog{intents: make([]Intent, 0)}
}

// Append adds an intent to the log and returns its offset (revision).
func (l *IntentLog) Append(in Intent) int {
	l.intents = append(l.intents, in)
	return len(l.intents) - 1
}

// Len returns the current length (latest revision + 1).
func (l *IntentLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.intents)
}

// Get returns the intent at a given offset.
func (l *IntentLog) Get(offset int) (Intent, bool) {
	if l == nil || offset < 0 || offset >= len(l.intents) {
		return Intent{}, false
	}
	return l.intents[offset], true
}

// Range returns intents from start (inclusive) to end (exclusive).
func (l *IntentLog) Range(start, end int) []Intent {
	if l == nil {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end > len(l.intents) {
		end = len(l.intents)
	}
	if start >= end {
		return nil
	}
	result := make([]Intent, end-start)
	copy(result, l.intents[start:end])
	return result
}
