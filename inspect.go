package multirow

import "context"

// Issue types reported by Inspect.
const (
	IssueRemovalNotInBaseline = "removal_not_in_baseline"
	IssueDuplicateRemoval     = "duplicate_removal"
	IssueAdditionInBaseline   = "addition_in_baseline"
	IssueDuplicateAddition    = "duplicate_addition"
	IssueDuplicateEdit        = "duplicate_edit"
	IssueStaleRevert          = "stale_revert"
)

// Issue is a broken TrackedState invariant.
// 状態の不整合を表す。エンジン自体は例外を投げない。
type Issue struct {
	Type     string   `json:"type"`
	RecordID RecordID `json:"record_id"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

// InspectionResult contains the result of Inspect.
type InspectionResult struct {
	Valid  bool
	Issues []Issue
	// Whether the inspection was cancelled
	Cancelled bool
}

// Inspect checks the invariants of a TrackedState.
// States built only through the transition functions are always valid;
// hand-assembled or deserialized states may not be.
func Inspect(ctx context.Context, s TrackedState) *InspectionResult {
	result := &InspectionResult{
		Valid:  true,
		Issues: make([]Issue, 0),
	}
	report := func(issue Issue) {
		result.Valid = false
		result.Issues = append(result.Issues, issue)
	}
	cancelled := func() bool {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			return true
		default:
			return false
		}
	}

	baseline := indexByID(s.Baseline)

	seenRemoval := make(map[RecordID]bool, len(s.Removals))
	for _, r := range s.Removals {
		if _, ok := baseline[r.ID]; !ok {
			report(Issue{
				Type:     IssueRemovalNotInBaseline,
				RecordID: r.ID,
				Message:  "removed record does not exist in baseline",
			})
		}
		if seenRemoval[r.ID] {
			report(Issue{
				Type:     IssueDuplicateRemoval,
				RecordID: r.ID,
				Message:  "record removed more than once",
			})
		}
		seenRemoval[r.ID] = true
	}
	if cancelled() {
		return result
	}

	seenAddition := make(map[RecordID]bool, len(s.Additions))
	for _, r := range s.Additions {
		if _, ok := baseline[r.ID]; ok {
			report(Issue{
				Type:     IssueAdditionInBaseline,
				RecordID: r.ID,
				Message:  "added record already exists in baseline",
			})
		}
		if seenAddition[r.ID] {
			report(Issue{
				Type:     IssueDuplicateAddition,
				RecordID: r.ID,
				Message:  "record added more than once",
			})
		}
		seenAddition[r.ID] = true
	}
	if cancelled() {
		return result
	}

	type target struct {
		id   RecordID
		name string
	}
	seenEdit := make(map[target]bool, len(s.Edits))
	for _, e := range s.Edits {
		key := target{id: e.ID, name: e.Name}
		if seenEdit[key] {
			report(Issue{
				Type:     IssueDuplicateEdit,
				RecordID: e.ID,
				Field:    e.Name,
				Message:  "more than one pending edit for the same field",
			})
		}
		seenEdit[key] = true

		if p, ok := baseline[e.ID]; ok {
			current, _ := s.Baseline[p].Get(e.Name)
			if Equal(current, e.Value) {
				report(Issue{
					Type:     IssueStaleRevert,
					RecordID: e.ID,
					Field:    e.Name,
					Message:  "pending edit equals the baseline value",
				})
			}
		}
	}
	return result
}
