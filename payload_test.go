package multirow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byID(id RecordID) func(Record) bool {
	return func(r Record) bool { return r.ID == id }
}

func countPlusOne(edit *ChangeRecord) Value {
	if edit == nil {
		return nil
	}
	v, _ := edit.Record().Get("count")
	return NumberValue(float64(v.(NumberValue)) + 1)
}

func TestBuildEditPayload(t *testing.T) {
	record := R(NumID(1), map[string]any{"count": 100})
	v := TrackedOf(TrackedState{
		Baseline:  []Record{record},
		Additions: []Record{},
		Removals:  []Record{},
		Edits:     []ChangeRecord{{ID: NumID(1), Name: "count", Value: NumberValue(101), Source: &record}},
	})

	p := BuildEditPayload("count", v, byID(NumID(1)), countPlusOne)
	assert.Equal(t, NumID(1), p.ID)
	assert.Equal(t, "count", p.Name)
	assert.Equal(t, NumberValue(102), p.Value)
	require.NotNil(t, p.Source)
	assert.Equal(t, record, *p.Source)
	assert.False(t, p.NewRecord)

	// building from the same source state is idempotent
	assert.Equal(t, p, BuildEditPayload("count", v, byID(NumID(1)), countPlusOne))

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"value":102,"name":"count","rawData":{"id":1,"count":100}}`, string(raw))
}

func TestBuildEditPayloadNoMatch(t *testing.T) {
	p := BuildEditPayload("count", ListOf(orderLines()...), byID(NumID(9)), countPlusOne)
	assert.True(t, p.ID.IsZero())
	assert.Nil(t, p.Source)
	assert.Nil(t, p.Value)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"count"}`, string(raw))
}

func TestBuildEditPayloadSimpleValue(t *testing.T) {
	var seen *ChangeRecord
	p := BuildEditPayload("qty", ListOf(orderLines()...), byID(NumID(3)), func(e *ChangeRecord) Value {
		seen = e
		return NumberValue(4)
	})
	assert.Nil(t, seen, "simple values have no pending edits")
	assert.Equal(t, NumID(3), p.ID)
	assert.Equal(t, NumberValue(4), p.Value)
}

func TestBuildAddPayload(t *testing.T) {
	v := dirtyOrderLines()
	next := func(added *Record) Value {
		if added == nil {
			return StringValue("fresh")
		}
		return StringValue("existing")
	}

	p := BuildAddPayload("sku", v, byID(StrID("tmp-1")), next, nil)
	assert.Equal(t, StrID("tmp-1"), p.ID)
	assert.Equal(t, StringValue("existing"), p.Value)
	assert.False(t, p.NewRecord)

	p = BuildAddPayload("sku", v, byID(StrID("nope")), next, nil)
	assert.True(t, p.NewRecord)
	assert.True(t, p.ID.IsZero())
	assert.Nil(t, p.Source)
	assert.Equal(t, StringValue("fresh"), p.Value)

	p = BuildAddPayload("sku", v, byID(StrID("nope")), next, NewRecordFactory())
	assert.True(t, p.NewRecord)
	assert.False(t, p.ID.IsZero())
	require.NotNil(t, p.Source)
	assert.Equal(t, p.ID, p.Source.ID)

	// folding the payload adds the new row with the field set
	s := ApplyChange(Track(v), p)
	last, ok := LastAddedID(TrackedOf(s))
	assert.True(t, ok)
	assert.Equal(t, p.ID, last)
}

func TestNewRecordFactory(t *testing.T) {
	f := NewRecordFactory()
	found := &Record{ID: NumID(1)}
	assert.Same(t, found, f(false, found))

	a, b := f(true, nil), f(true, nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.ID.IsNumeric())
}

func TestFieldChanges(t *testing.T) {
	got := FieldChanges([]ChangeRecord{
		{ID: NumID(1), Name: "qty", Value: NumberValue(1)},
		{ID: NumID(1), Name: "sku", Value: StringValue("x")},
		{ID: NumID(2), Name: "qty", Value: NumberValue(3)},
		{ID: NumID(1), Name: "qty", Value: NumberValue(2)},
	})
	assert.Equal(t, map[RecordID]Attrs{
		NumID(1): {"qty": NumberValue(2), "sku": StringValue("x")},
		NumID(2): {"qty": NumberValue(3)},
	}, got)
}

func TestChangeRecordJSON(t *testing.T) {
	src := R(StrID("a"), map[string]any{"note": "hi"})
	in := BuildChangeRecord("note", NullValue{}, &src, true)

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a","value":null,"name":"note","rawData":{"id":"a","note":"hi"},"newRecord":true}`, string(raw))

	var out ChangeRecord
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)
}

func TestChangeRecordNewRecordFalseOnWire(t *testing.T) {
	src := R(NumID(1), map[string]any{"qty": 1})
	raw, err := json.Marshal(BuildChangeRecord("qty", NumberValue(2), &src, false))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "newRecord")

	var explicit, omitted ChangeRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"qty","value":2,"newRecord":false}`), &explicit))
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"qty","value":2}`), &omitted))
	assert.Equal(t, explicit, omitted)
	assert.False(t, explicit.NewRecord)
}
