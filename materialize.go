package multirow

import "sort"

// Materialize computes the record list the user currently sees.
//
// Absent input yields nil. Simple input is returned normalized. For a
// Tracked value the view is:
//
//	baseline − removed − edited, then additions, then edit-merged records,
//
// stable-sorted by each record's position in the unfiltered baseline.
// Records not found in the baseline sort with position -1, so pure
// additions come before every baseline-derived record.
// 追加行は常に先頭に並ぶ。
func Materialize(v FieldValue) []Record {
	switch v.Shape() {
	case ShapeAbsent:
		return nil
	case ShapeList, ShapeScalar:
		return Normalize(v)
	case ShapeTracked:
		s, _ := v.State()
		return materialize(s)
	default:
		return nil
	}
}

func materialize(s TrackedState) []Record {
	position := indexByID(s.Baseline)

	removed := make(map[RecordID]bool, len(s.Removals))
	for _, r := range s.Removals {
		removed[r.ID] = true
	}
	edited := make(map[RecordID]bool, len(s.Edits))
	for _, e := range s.Edits {
		edited[e.ID] = true
	}

	merged := mergeEdits(s.Baseline, s.Edits, position)
	out := make([]Record, 0, len(s.Baseline)+len(s.Additions)+len(merged))
	for _, r := range s.Baseline {
		if removed[r.ID] || edited[r.ID] {
			continue
		}
		out = append(out, r)
	}
	out = append(out, s.Additions...)
	out = append(out, merged...)

	keys := make([]int, len(out))
	for i, r := range out {
		keys[i] = baselinePosition(position, r.ID)
	}
	sort.Stable(byBaselinePosition{records: out, keys: keys})
	return out
}

func baselinePosition(position map[RecordID]int, id RecordID) int {
	if i, ok := position[id]; ok {
		return i
	}
	return -1
}

// byBaselinePosition sorts records and their precomputed keys together.
type byBaselinePosition struct {
	records []Record
	keys    []int
}

func (b byBaselinePosition) Len() int           { return len(b.records) }
func (b byBaselinePosition) Less(i, j int) bool { return b.keys[i] < b.keys[j] }
func (b byBaselinePosition) Swap(i, j int) {
	b.records[i], b.records[j] = b.records[j], b.records[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}

// mergeEdits folds every edit into one record per id, in order of first
// appearance in edits. The base is the baseline copy of the record, or a
// bare record with only the id when the baseline does not know it.
func mergeEdits(baseline []Record, edits []ChangeRecord, position map[RecordID]int) []Record {
	if len(edits) == 0 {
		return []Record{}
	}
	slot := make(map[RecordID]int, len(edits))
	merged := make([]Record, 0, len(edits))
	for _, e := range edits {
		i, ok := slot[e.ID]
		if !ok {
			base := Record{ID: e.ID}
			if p, found := position[e.ID]; found {
				base = baseline[p]
			}
			merged = append(merged, base)
			i = len(merged) - 1
			slot[e.ID] = i
		}
		merged[i] = merged[i].With(e.Name, e.Value)
	}
	return merged
}
