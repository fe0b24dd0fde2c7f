package multirow

import "encoding/json"

// RecordFactory materializes the record an add payload is attached to.
// isNew is true when no pending addition matched; found is nil in that case.
type RecordFactory func(isNew bool, found *Record) *Record

// NewRecordFactory returns a factory that creates a fresh record with a
// generated id for new rows and reuses the matched addition otherwise.
func NewRecordFactory() RecordFactory {
	return func(isNew bool, found *Record) *Record {
		if !isNew && found != nil {
			return found
		}
		return &Record{ID: NewRecordID()}
	}
}

// BuildChangeRecord assembles a change descriptor keyed off source.
// A nil source yields a sparse payload without id or raw data.
func BuildChangeRecord(name string, value Value, source *Record, newRecord bool) ChangeRecord {
	c := ChangeRecord{Name: name, Value: value, NewRecord: newRecord}
	if source != nil {
		src := *source
		c.ID = src.ID
		c.Source = &src
	}
	return c
}

// BuildEditPayload builds the payload for editing field name of the record
// selected by match.
//
// The pending edit that matches (compared through its applied record) is
// handed to next, which computes the new value; it is nil when none matches.
// The payload is keyed off the baseline record, not the in-flight edit, so
// applying it repeatedly from the same source state is idempotent.
func BuildEditPayload(name string, v FieldValue, match func(Record) bool, next func(edit *ChangeRecord) Value) ChangeRecord {
	var edit *ChangeRecord
	for _, e := range PendingEdits(v, nil) {
		if match(e.Record()) {
			e := e
			edit = &e
			break
		}
	}
	var source *Record
	for _, r := range BaselineRecords(v) {
		if match(r) {
			r := r
			source = &r
			break
		}
	}
	return BuildChangeRecord(name, next(edit), source, false)
}

// BuildAddPayload builds the payload for setting field name on a row that
// is not persisted yet.
//
// The pending addition selected by match is handed to next (nil when none
// matches). When nothing matched the payload is flagged NewRecord. A
// non-nil factory decides which record the payload is attached to.
func BuildAddPayload(name string, v FieldValue, match func(Record) bool, next func(added *Record) Value, factory RecordFactory) ChangeRecord {
	var added *Record
	for _, r := range AddedRecords(v, nil) {
		if match(r) {
			r := r
			added = &r
			break
		}
	}
	isNew := added == nil
	source := added
	if factory != nil {
		source = factory(isNew, added)
	}
	return BuildChangeRecord(name, next(added), source, isNew)
}

// FieldChanges groups changes by record id into the fields they set.
// Later changes to the same field win.
func FieldChanges(changes []ChangeRecord) map[RecordID]Attrs {
	out := make(map[RecordID]Attrs)
	for _, c := range changes {
		attrs, ok := out[c.ID]
		if !ok {
			attrs = make(Attrs)
			out[c.ID] = attrs
		}
		attrs[c.Name] = c.Value
	}
	return out
}

type changeRecordJSON struct {
	ID        *RecordID `json:"id,omitempty"`
	Value     any       `json:"value,omitempty"`
	Name      string    `json:"name,omitempty"`
	RawData   *Record   `json:"rawData,omitempty"`
	NewRecord bool      `json:"newRecord,omitempty"`
}

// MarshalJSON encodes the sparse descriptor {id, value, name, rawData, newRecord};
// absent members are omitted.
func (c ChangeRecord) MarshalJSON() ([]byte, error) {
	out := changeRecordJSON{Name: c.Name, RawData: c.Source, NewRecord: c.NewRecord}
	if !c.ID.IsZero() {
		id := c.ID
		out.ID = &id
	}
	if c.Value != nil {
		out.Value = ToAny(c.Value)
		if _, isNull := c.Value.(NullValue); isNull {
			return marshalWithNullValue(out)
		}
	}
	return json.Marshal(out)
}

// marshalWithNullValue keeps an explicit null value, which omitempty would drop.
func marshalWithNullValue(out changeRecordJSON) ([]byte, error) {
	m := map[string]any{"value": nil}
	if out.ID != nil {
		m["id"] = *out.ID
	}
	if out.Name != "" {
		m["name"] = out.Name
	}
	if out.RawData != nil {
		m["rawData"] = *out.RawData
	}
	if out.NewRecord {
		m["newRecord"] = true
	}
	return json.Marshal(m)
}

func (c *ChangeRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        json.RawMessage `json:"id"`
		Value     json.RawMessage `json:"value"`
		Name      string          `json:"name"`
		RawData   *Record         `json:"rawData"`
		NewRecord bool            `json:"newRecord"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := ChangeRecord{Name: raw.Name, Source: raw.RawData, NewRecord: raw.NewRecord}
	if len(raw.ID) > 0 {
		if err := json.Unmarshal(raw.ID, &out.ID); err != nil {
			return err
		}
	}
	if len(raw.Value) > 0 {
		var v any
		if err := json.Unmarshal(raw.Value, &v); err != nil {
			return err
		}
		val, err := FromAny(v)
		if err != nil {
			return err
		}
		out.Value = val
	}
	*c = out
	return nil
}
