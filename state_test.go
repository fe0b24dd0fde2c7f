package multirow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangeRecordRecord(t *testing.T) {
	src := R(NumID(1), map[string]any{"qty": 1, "sku": "A"})
	c := ChangeRecord{ID: NumID(1), Name: "qty", Value: NumberValue(5), Source: &src}
	assert.Equal(t, R(NumID(1), map[string]any{"qty": 5, "sku": "A"}), c.Record())
	assert.Equal(t, NumberValue(1), src.Attrs["qty"])

	bare := ChangeRecord{ID: NumID(2), Name: "qty", Value: NumberValue(5)}
	assert.Equal(t, Record{ID: NumID(2), Attrs: Attrs{"qty": NumberValue(5)}}, bare.Record())
	assert.Equal(t, src, ChangeRecord{Source: &src}.Record())
}

func TestSameTarget(t *testing.T) {
	a := ChangeRecord{ID: NumID(1), Name: "qty", Value: NumberValue(1)}
	assert.True(t, SameTarget(a, ChangeRecord{ID: NumID(1), Name: "qty", Value: NumberValue(2)}))
	assert.False(t, SameTarget(a, ChangeRecord{ID: NumID(1), Name: "sku"}))
	assert.False(t, SameTarget(a, ChangeRecord{ID: StrID("1"), Name: "qty"}))
}

func TestTrackedStateLifecycle(t *testing.T) {
	v := dirtyOrderLines()
	s, _ := v.State()
	assert.True(t, s.Dirty())

	p := s.Pristine()
	assert.False(t, p.Dirty())
	assert.Equal(t, s.Baseline, p.Baseline)

	c := Commit([]Record{{ID: NumID(9)}})
	assert.False(t, c.Dirty())
	assert.Equal(t, []Record{{ID: NumID(9)}}, c.Baseline)

	baseline := orderLines()
	fresh := NewTrackedState(baseline)
	baseline[0] = Record{ID: NumID(100)}
	assert.Equal(t, NumID(1), fresh.Baseline[0].ID, "the baseline is copied")
}
