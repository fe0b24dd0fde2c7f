package multirow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeSimple(t *testing.T) {
	assert.Nil(t, Materialize(Absent()))

	lines := ListOf(orderLines()...)
	assert.Equal(t, Normalize(lines), Materialize(lines))
	assert.Equal(t, []Record{{ID: NumID(5)}}, Materialize(ScalarOf(NumID(5))))
}

func TestMaterializeTracked(t *testing.T) {
	view := Materialize(dirtyOrderLines())
	require.Len(t, view, 3)
	assert.Equal(t, []RecordID{StrID("tmp-1"), NumID(1), NumID(2)}, ids(view))
	assert.Equal(t, NumberValue(2), view[2].Attrs["qty"])
	assert.Equal(t, NumberValue(250), view[2].Attrs["price"], "unedited attributes come from the baseline")
}

func TestMaterializeKeepsBaselinePosition(t *testing.T) {
	s := NewTrackedState(orderLines())
	s = ApplyEdit(s, Change{ID: NumID(1), Name: "qty", Value: NumberValue(7)})
	view := materialize(s)
	assert.Equal(t, []RecordID{NumID(1), NumID(2), NumID(3)}, ids(view))
	assert.Equal(t, NumberValue(7), view[0].Attrs["qty"])
}

func TestMaterializeAdditionsFirstInInsertionOrder(t *testing.T) {
	s := NewTrackedState(orderLines())
	s = ApplyAdd(s, Record{ID: StrID("a")})
	s = ApplyAdd(s, Record{ID: StrID("b")})
	s = ApplyAdd(s, Record{ID: StrID("c")})
	view := materialize(s)
	assert.Equal(t, []RecordID{StrID("a"), StrID("b"), StrID("c"), NumID(1), NumID(2), NumID(3)}, ids(view))
}

func TestMaterializeEditOfUnknownID(t *testing.T) {
	s := NewTrackedState(orderLines())
	s = ApplyEdit(s, Change{ID: NumID(42), Name: "qty", Value: NumberValue(1)})
	view := materialize(s)
	require.Len(t, view, 4)
	assert.Equal(t, NumID(42), view[0].ID)
	assert.Equal(t, Attrs{"qty": NumberValue(1)}, view[0].Attrs)
}

func TestMaterializeDuplicateBaselineIDs(t *testing.T) {
	s := NewTrackedState([]Record{{ID: NumID(1)}, {ID: NumID(2)}, {ID: NumID(1)}})
	view := materialize(s)
	// both copies sort at the first occurrence
	assert.Equal(t, []RecordID{NumID(1), NumID(1), NumID(2)}, ids(view))
}

func TestMaterializeDoesNotMutateInput(t *testing.T) {
	v := dirtyOrderLines()
	before, _ := v.State()
	baseline := append([]Record(nil), before.Baseline...)
	_ = Materialize(v)
	after, _ := v.State()
	assert.Equal(t, baseline, after.Baseline)
	assert.Equal(t, before, after)
}
