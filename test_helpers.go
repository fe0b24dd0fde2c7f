package multirow

// orderLines returns a three-row baseline used across tests.
// 受注明細（3行）のベースラインを返す。
func orderLines() []Record {
	return []Record{
		R(NumID(1), map[string]any{"sku": "A-1", "qty": 1, "price": 100}),
		R(NumID(2), map[string]any{"sku": "B-2", "qty": 1, "price": 250}),
		R(NumID(3), map[string]any{"sku": "C-3", "qty": 3, "price": 80}),
	}
}

// dirtyOrderLines returns a tracked value with one edit, one removal and
// one addition on top of orderLines.
//
//	edit   #2 qty 1 -> 2
//	delete #3
//	add    "tmp-1"
func dirtyOrderLines() FieldValue {
	s := NewTrackedState(orderLines())
	s = ApplyEdit(s, Change{ID: NumID(2), Name: "qty", Value: NumberValue(2)})
	s = ApplyDelete(s, NumID(3))
	s = ApplyAdd(s, R(StrID("tmp-1"), map[string]any{"sku": "D-4"}))
	return TrackedOf(s)
}

// buildIntentLog records a short editing session on two fields.
func buildIntentLog() *IntentLog {
	log := NewIntentLog()
	log.Append(Intent{Type: IntentInit, Field: "lines", Value: ListOf(orderLines()...)})
	log.Append(Intent{Type: IntentInit, Field: "owner", Value: ScalarOf(NumID(7))})
	log.Append(Intent{Type: IntentEdit, Field: "lines", Change: Change{ID: NumID(1), Name: "qty", Value: NumberValue(5)}})
	log.Append(Intent{Type: IntentDelete, Field: "lines", ID: NumID(2)})
	log.Append(Intent{Type: IntentAdd, Field: "owner", Record: R(NumID(8), nil)})
	log.Append(Intent{Type: IntentReset, Field: "lines"})
	return log
}

func ids(records []Record) []RecordID {
	out := make([]RecordID, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
