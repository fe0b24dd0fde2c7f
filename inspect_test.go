package multirow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueTypes(r *InspectionResult) []string {
	out := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		out = append(out, i.Type)
	}
	return out
}

func TestInspectValidStates(t *testing.T) {
	ctx := context.Background()
	for _, v := range []FieldValue{dirtyOrderLines(), TrackedOf(NewTrackedState(nil))} {
		s, _ := v.State()
		r := Inspect(ctx, s)
		assert.True(t, r.Valid)
		assert.Empty(t, r.Issues)
	}
}

func TestInspectBrokenState(t *testing.T) {
	base := orderLines()
	s := TrackedState{
		Baseline:  base,
		Additions: []Record{base[0], {ID: StrID("n")}, {ID: StrID("n")}},
		Removals:  []Record{base[1], base[1], {ID: NumID(99)}},
		Edits: []ChangeRecord{
			{ID: NumID(3), Name: "qty", Value: NumberValue(3)},
			{ID: NumID(2), Name: "sku", Value: StringValue("x")},
			{ID: NumID(2), Name: "sku", Value: StringValue("y")},
		},
	}
	r := Inspect(context.Background(), s)
	require.False(t, r.Valid)
	assert.Equal(t, []string{
		IssueDuplicateRemoval,
		IssueRemovalNotInBaseline,
		IssueAdditionInBaseline,
		IssueDuplicateAddition,
		IssueStaleRevert,
		IssueDuplicateEdit,
	}, issueTypes(r))
	assert.Equal(t, NumID(3), r.Issues[4].RecordID)
	assert.Equal(t, "qty", r.Issues[4].Field)
}

func TestInspectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := TrackedState{Baseline: []Record{}, Removals: []Record{{ID: NumID(1)}}}
	r := Inspect(ctx, s)
	assert.True(t, r.Cancelled)
	assert.Equal(t, []string{IssueRemovalNotInBaseline}, issueTypes(r))
}
