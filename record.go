package multirow

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

type idKind uint8

const (
	idNone idKind = iota
	idNumber
	idString
)

// RecordID identifies a record within a multi-row field.
// Numeric and string ids never compare equal (NumID(1) != StrID("1")).
// The zero value means "no id" and is what sparse payloads carry when
// their source record could not be found.
type RecordID struct {
	kind idKind
	num  int64
	str  string
}

// NumID returns a numeric record id.
func NumID(n int64) RecordID { return RecordID{kind: idNumber, num: n} }

// StrID returns a string record id.
func StrID(s string) RecordID { return RecordID{kind: idString, str: s} }

// NewRecordID returns a fresh string id for a record that was never persisted.
func NewRecordID() RecordID { return StrID(uuid.NewString()) }

// IsZero reports whether the id is unset.
func (id RecordID) IsZero() bool { return id.kind == idNone }

// IsNumeric reports whether the id is a number.
func (id RecordID) IsNumeric() bool { return id.kind == idNumber }

func (id RecordID) String() string {
	switch id.kind {
	case idNumber:
		return strconv.FormatInt(id.num, 10)
	case idString:
		return id.str
	default:
		return ""
	}
}

// Value returns the id as an attribute value (number, string, or nil).
func (id RecordID) Value() Value {
	switch id.kind {
	case idNumber:
		return NumberValue(float64(id.num))
	case idString:
		return StringValue(id.str)
	default:
		return nil
	}
}

func (id RecordID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idNumber:
		return []byte(strconv.FormatInt(id.num, 10)), nil
	case idString:
		return json.Marshal(id.str)
	default:
		return []byte("null"), nil
	}
}

func (id *RecordID) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRecordID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseRecordID converts a decoded scalar into a RecordID.
// Integral numbers become numeric ids, strings become string ids, nil the zero id.
func ParseRecordID(v any) (RecordID, error) {
	switch x := v.(type) {
	case nil:
		return RecordID{}, nil
	case RecordID:
		return x, nil
	case int:
		return NumID(int64(x)), nil
	case int64:
		return NumID(x), nil
	case uint64:
		return NumID(int64(x)), nil
	case float64:
		if x != math.Trunc(x) {
			return RecordID{}, fmt.Errorf("record id must be integral: %v", x)
		}
		return NumID(int64(x)), nil
	case NumberValue:
		return ParseRecordID(float64(x))
	case StringValue:
		return StrID(string(x)), nil
	case string:
		return StrID(x), nil
	default:
		return RecordID{}, fmt.Errorf("unsupported record id type %T", v)
	}
}

// Attrs holds the named attributes of a record (everything except the id).
// Callers must treat the map as immutable; use Record.With to derive changes.
type Attrs map[string]Value

// Record is a domain entity identified by ID only.
type Record struct {
	ID    RecordID
	Attrs Attrs
}

// R builds a record from plain Go attribute values. Intended for fixtures and tests.
func R(id RecordID, attrs map[string]any) Record {
	rec := Record{ID: id}
	if len(attrs) == 0 {
		return rec
	}
	rec.Attrs = make(Attrs, len(attrs))
	for k, v := range attrs {
		rec.Attrs[k] = MustFromAny(v)
	}
	return rec
}

// Get returns the named attribute. The id is addressable as "id".
func (r Record) Get(name string) (Value, bool) {
	if name == "id" {
		v := r.ID.Value()
		return v, v != nil
	}
	v, ok := r.Attrs[name]
	return v, ok
}

// With returns a copy of the record with one attribute replaced.
// Setting "id" is ignored; identity never changes through an edit.
func (r Record) With(name string, v Value) Record {
	if name == "id" {
		return r
	}
	attrs := make(Attrs, len(r.Attrs)+1)
	for k, old := range r.Attrs {
		attrs[k] = old
	}
	attrs[name] = v
	return Record{ID: r.ID, Attrs: attrs}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r.Attrs == nil {
		return Record{ID: r.ID}
	}
	attrs := make(Attrs, len(r.Attrs))
	for k, v := range r.Attrs {
		attrs[k] = DeepCopyValue(v)
	}
	return Record{ID: r.ID, Attrs: attrs}
}

// Object returns the record as a single object value including its id.
func (r Record) Object() ObjectValue {
	out := make(ObjectValue, len(r.Attrs)+1)
	for k, v := range r.Attrs {
		out[k] = v
	}
	if v := r.ID.Value(); v != nil {
		out["id"] = v
	}
	return out
}

// MarshalJSON flattens the record into a single object: {"id": ..., attrs...}.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Attrs)+1)
	for k, v := range r.Attrs {
		if v == nil {
			continue
		}
		out[k] = ToAny(v)
	}
	if !r.ID.IsZero() {
		out["id"] = r.ID
	}
	return json.Marshal(out)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rec, err := RecordFromMap(raw)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// RecordFromMap builds a record from a decoded object; the "id" key becomes the ID.
func RecordFromMap(raw map[string]any) (Record, error) {
	id, err := ParseRecordID(raw["id"])
	if err != nil {
		return Record{}, err
	}
	rec := Record{ID: id}
	for k, v := range raw {
		if k == "id" {
			continue
		}
		val, err := FromAny(v)
		if err != nil {
			return Record{}, fmt.Errorf("attribute %q: %w", k, err)
		}
		if rec.Attrs == nil {
			rec.Attrs = make(Attrs, len(raw))
		}
		rec.Attrs[k] = val
	}
	return rec, nil
}

func (r Record) String() string {
	keys := make([]string, 0, len(r.Attrs))
	for k := range r.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := "{id: " + r.ID.String()
	for _, k := range keys {
		v := r.Attrs[k]
		if v == nil {
			continue
		}
		out += ", " + k + ": " + v.String()
	}
	return out + "}"
}

// indexByID returns the first position of every id in records.
func indexByID(records []Record) map[RecordID]int {
	idx := make(map[RecordID]int, len(records))
	for i, r := range records {
		if _, seen := idx[r.ID]; !seen {
			idx[r.ID] = i
		}
	}
	return idx
}

func findRecord(records []Record, id RecordID) (Record, bool) {
	for _, r := range records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

func containsID(records []Record, id RecordID) bool {
	_, ok := findRecord(records, id)
	return ok
}
