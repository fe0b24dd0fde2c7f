package multirow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracked(add, remove []Record, edit []ChangeRecord, source []Record) FieldValue {
	return TrackedOf(TrackedState{Baseline: source, Additions: add, Removals: remove, Edits: edit})
}

func TestRecordIDs(t *testing.T) {
	tests := []struct {
		name string
		in   FieldValue
		want []RecordID
	}{
		{"empty tracked", tracked(nil, nil, nil, nil), []RecordID{}},
		{
			"addition first",
			tracked([]Record{{ID: NumID(1)}}, nil, nil, []Record{{ID: NumID(2)}, {ID: NumID(3)}}),
			[]RecordID{NumID(1), NumID(2), NumID(3)},
		},
		{
			"removal excluded",
			tracked(nil, []Record{{ID: NumID(3)}}, nil, []Record{{ID: NumID(3)}, {ID: NumID(4)}}),
			[]RecordID{NumID(4)},
		},
		{"absent", Absent(), nil},
		{"scalar", ScalarOf(StrID("a")), []RecordID{StrID("a")}},
		{"empty list", ListOf(), []RecordID{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecordIDs(tt.in))
		})
	}
}

func TestRecordCount(t *testing.T) {
	v := tracked([]Record{{ID: NumID(1)}}, []Record{{ID: NumID(2)}}, nil, []Record{{ID: NumID(3)}})
	assert.Equal(t, 2, RecordCount(v))
	assert.Equal(t, 0, RecordCount(Absent()))
	assert.Equal(t, 1, RecordCount(ScalarOf(NumID(1))))
	assert.Equal(t, 3, RecordCount(ListOf(orderLines()...)))

	dirty := dirtyOrderLines()
	assert.Equal(t, len(Materialize(dirty)), RecordCount(dirty))
}

func TestSubCollectionQueries(t *testing.T) {
	def := []Record{{ID: NumID(-1)}}
	simple := ListOf(orderLines()...)
	assert.Equal(t, def, AddedRecords(simple, def))
	assert.Equal(t, def, RemovedRecords(simple, def))
	assert.Nil(t, PendingEdits(simple, nil))

	dirty := dirtyOrderLines()
	assert.Equal(t, []RecordID{StrID("tmp-1")}, ids(AddedRecords(dirty, def)))
	assert.Equal(t, []RecordID{NumID(3)}, ids(RemovedRecords(dirty, def)))
	edits := PendingEdits(dirty, nil)
	require.Len(t, edits, 1)
	assert.Equal(t, NumID(2), edits[0].ID)
	assert.Equal(t, "qty", edits[0].Name)

	assert.Equal(t, orderLines(), BaselineRecords(dirty))
	assert.Equal(t, orderLines(), BaselineRecords(simple))
}

func TestMergedEdits(t *testing.T) {
	s := NewTrackedState(orderLines())
	s = ApplyEdit(s, Change{ID: NumID(3), Name: "qty", Value: NumberValue(9)})
	s = ApplyEdit(s, Change{ID: NumID(1), Name: "sku", Value: StringValue("A-9")})
	s = ApplyEdit(s, Change{ID: NumID(3), Name: "price", Value: NumberValue(1)})
	v := TrackedOf(s)

	merged := MergedEdits(v)
	require.Len(t, merged, 2)
	assert.Equal(t, NumID(3), merged[0].ID)
	assert.Equal(t, NumberValue(9), merged[0].Attrs["qty"])
	assert.Equal(t, NumberValue(1), merged[0].Attrs["price"])
	assert.Equal(t, StringValue("C-3"), merged[0].Attrs["sku"])
	assert.Equal(t, StringValue("A-9"), merged[1].Attrs["sku"])

	assert.Equal(t, []RecordID{NumID(3), NumID(1)}, EditedRecordIDs(v))
	assert.Nil(t, EditedRecordIDs(Absent()))
	assert.Equal(t, []RecordID{NumID(4)}, EditedRecordIDs(ScalarOf(NumID(4))))
}

func TestMapRecords(t *testing.T) {
	skus := MapRecords(dirtyOrderLines(), func(r Record, i int) string {
		v, _ := r.Get("sku")
		return v.String()
	})
	assert.Equal(t, []string{`"D-4"`, `"A-1"`, `"B-2"`}, skus)
	assert.Nil(t, MapRecords(Absent(), func(Record, int) int { return 0 }))
}

func TestLastAddedID(t *testing.T) {
	id, ok := LastAddedID(dirtyOrderLines())
	assert.True(t, ok)
	assert.Equal(t, StrID("tmp-1"), id)

	id, ok = LastAddedID(ScalarOf(NumID(8)))
	assert.True(t, ok)
	assert.Equal(t, NumID(8), id)

	_, ok = LastAddedID(ListOf(orderLines()...))
	assert.False(t, ok)
	_, ok = LastAddedID(TrackedOf(NewTrackedState(orderLines())))
	assert.False(t, ok)
}
