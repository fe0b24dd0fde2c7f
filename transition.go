package multirow

// Change is a single-field edit intent.
// A nil Value means "undefined": on a not-yet-persisted record it drops the record.
type Change struct {
	ID    RecordID
	Name  string
	Value Value
}

// ApplyEdit returns the state that results from editing one field of one record.
//
// Records that only exist in Additions are updated in place (a new slice);
// an undefined value removes such a record entirely. Records from the
// baseline get a pending edit, replacing any earlier edit of the same
// field; when the value equals the baseline attribute the edit is dropped.
// Baseline and Removals pass through unchanged.
func ApplyEdit(s TrackedState, c Change) TrackedState {
	next := TrackedState{
		Baseline:  s.Baseline,
		Additions: s.Additions,
		Removals:  s.Removals,
		Edits:     s.Edits,
	}

	if containsID(s.Additions, c.ID) {
		if c.Value == nil {
			next.Additions = withoutID(s.Additions, c.ID)
			return next
		}
		additions := make([]Record, len(s.Additions))
		for i, r := range s.Additions {
			if r.ID == c.ID {
				r = r.With(c.Name, c.Value)
			}
			additions[i] = r
		}
		next.Additions = additions
		return next
	}

	target := ChangeRecord{ID: c.ID, Name: c.Name, Value: c.Value}
	edits := make([]ChangeRecord, 0, len(s.Edits)+1)
	for _, e := range s.Edits {
		if SameTarget(e, target) {
			continue
		}
		edits = append(edits, e)
	}

	original, found := findRecord(s.Baseline, c.ID)
	if found {
		current, _ := original.Get(c.Name)
		if Equal(current, c.Value) {
			// clean revert
			next.Edits = edits
			return next
		}
		src := original
		target.Source = &src
	}
	next.Edits = append(edits, target)
	return next
}

// ApplyDelete returns the state that results from deleting a record.
//
// All edits of the id and its addition entry are dropped. A record that
// was only added locally leaves no trace; a baseline record is prepended
// to Removals (most recent first). Deleting an id that is already in
// Removals does not duplicate the entry. Unknown ids leave Removals as is.
func ApplyDelete(s TrackedState, id RecordID) TrackedState {
	next := TrackedState{
		Baseline:  s.Baseline,
		Additions: withoutID(s.Additions, id),
		Removals:  s.Removals,
		Edits:     withoutEditsOf(s.Edits, id),
	}
	if len(next.Additions) != len(s.Additions) {
		return next
	}
	if containsID(s.Removals, id) {
		return next
	}
	original, found := findRecord(s.Baseline, id)
	if !found {
		return next
	}
	removals := make([]Record, 0, len(s.Removals)+1)
	removals = append(removals, original)
	next.Removals = append(removals, s.Removals...)
	return next
}

// ApplyAdd returns the state with rec appended to the pending additions.
// Records without an id and ids already known to the baseline or the
// additions are ignored.
// A baseline record that is pending removal is restored instead of re-added.
func ApplyAdd(s TrackedState, rec Record) TrackedState {
	if rec.ID.IsZero() || containsID(s.Additions, rec.ID) {
		return s
	}
	if containsID(s.Baseline, rec.ID) {
		if !containsID(s.Removals, rec.ID) {
			return s
		}
		return TrackedState{
			Baseline:  s.Baseline,
			Additions: s.Additions,
			Removals:  withoutID(s.Removals, rec.ID),
			Edits:     s.Edits,
		}
	}
	additions := make([]Record, 0, len(s.Additions)+1)
	additions = append(additions, s.Additions...)
	return TrackedState{
		Baseline:  s.Baseline,
		Additions: append(additions, rec),
		Removals:  s.Removals,
		Edits:     s.Edits,
	}
}

// ApplyChange folds a payload produced by the builders into the state.
// A NewRecord payload for an id the state does not know yet adds the record
// (source with the change applied); everything else is an edit.
// A payload without an id targets no record and leaves the state unchanged.
func ApplyChange(s TrackedState, p ChangeRecord) TrackedState {
	if p.ID.IsZero() {
		return s
	}
	if p.NewRecord && !containsID(s.Additions, p.ID) && !containsID(s.Baseline, p.ID) {
		if p.Value == nil && p.Name != "" {
			return s
		}
		return ApplyAdd(s, p.Record())
	}
	return ApplyEdit(s, Change{ID: p.ID, Name: p.Name, Value: p.Value})
}

func withoutID(records []Record, id RecordID) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.ID == id {
			continue
		}
		out = append(out, r)
	}
	return out
}

func withoutEditsOf(edits []ChangeRecord, id RecordID) []ChangeRecord {
	out := make([]ChangeRecord, 0, len(edits))
	for _, e := range edits {
		if e.ID == id {
			continue
		}
		out = append(out, e)
	}
	return out
}
