package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	mr "github.com/user/multirow"
	"github.com/user/multirow/packages/expr"
)

// Scenario is a scripted editing session on one multi-row field.
//
//	field: items
//	baseline:
//	  - {id: 1, name: apple, qty: 1}
//	steps:
//	  - {op: edit, id: 1, name: qty, value: 3}
//	  - {op: edit_payload, name: qty, match: "$row:id == 1", next: "COALESCE($edit:value, 0) + 1"}
type Scenario struct {
	Field    string           `yaml:"field" validate:"required"`
	Baseline []map[string]any `yaml:"baseline"`
	Steps    []Step           `yaml:"steps" validate:"required,min=1,dive"`
}

// Step is one user intent. Which members are read depends on Op.
type Step struct {
	Op string `yaml:"op" validate:"required,oneof=edit delete add edit_payload add_payload commit reset"`

	ID    any    `yaml:"id"`
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
	// Unset edits with an undefined value, which drops a pending addition.
	Unset bool `yaml:"unset"`

	Record  map[string]any   `yaml:"record"`
	Records []map[string]any `yaml:"records"`

	// Expressions for payload steps.
	Match string `yaml:"match"`
	Next  string `yaml:"next"`
}

var (
	errBadStep        = errors.New("invalid step")
	scenarioValidator = validator.New()
)

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := scenarioValidator.Struct(sc); err != nil {
		return nil, fmt.Errorf("validate scenario %s: %w", path, err)
	}
	for i, st := range sc.Steps {
		if err := st.check(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &sc, nil
}

func (st Step) check() error {
	switch st.Op {
	case "edit":
		if st.ID == nil || st.Name == "" {
			return fmt.Errorf("%w: edit needs id and name", errBadStep)
		}
	case "delete":
		if st.ID == nil {
			return fmt.Errorf("%w: delete needs id", errBadStep)
		}
	case "add":
		if st.Record == nil {
			return fmt.Errorf("%w: add needs record", errBadStep)
		}
	case "edit_payload", "add_payload":
		if st.Name == "" || st.Match == "" || st.Next == "" {
			return fmt.Errorf("%w: %s needs name, match and next", errBadStep, st.Op)
		}
		for _, src := range []string{st.Match, st.Next} {
			if _, err := expr.Compile(src); err != nil {
				return fmt.Errorf("%w: %q: %v", errBadStep, src, err)
			}
		}
	}
	return nil
}

// BaselineValue returns the initial field value.
func (sc *Scenario) BaselineValue() (mr.FieldValue, error) {
	records, err := toRecords(sc.Baseline)
	if err != nil {
		return mr.FieldValue{}, fmt.Errorf("baseline: %w", err)
	}
	return mr.ListOf(records...), nil
}

// Apply runs one step against the store.
func (st Step) Apply(store *mr.Store, field string) (mr.FieldValue, error) {
	switch st.Op {
	case "edit":
		id, err := mr.ParseRecordID(st.ID)
		if err != nil {
			return mr.FieldValue{}, err
		}
		var value mr.Value
		if !st.Unset {
			if value, err = mr.FromAny(st.Value); err != nil {
				return mr.FieldValue{}, err
			}
		}
		return store.Edit(field, mr.Change{ID: id, Name: st.Name, Value: value})
	case "delete":
		id, err := mr.ParseRecordID(st.ID)
		if err != nil {
			return mr.FieldValue{}, err
		}
		return store.Delete(field, id)
	case "add":
		rec, err := mr.RecordFromMap(st.Record)
		if err != nil {
			return mr.FieldValue{}, err
		}
		if rec.ID.IsZero() {
			rec.ID = mr.NewRecordID()
		}
		return store.Add(field, rec)
	case "edit_payload", "add_payload":
		current, err := store.Value(field)
		if err != nil {
			return mr.FieldValue{}, err
		}
		match, err := expr.Compile(st.Match)
		if err != nil {
			return mr.FieldValue{}, err
		}
		next, err := expr.Compile(st.Next)
		if err != nil {
			return mr.FieldValue{}, err
		}
		var payload mr.ChangeRecord
		if st.Op == "edit_payload" {
			payload = mr.BuildEditPayload(st.Name, current, match.Match(), next.EditNext())
		} else {
			payload = mr.BuildAddPayload(st.Name, current, match.Match(), next.AddNext(), mr.NewRecordFactory())
		}
		return store.Dispatch(field, payload)
	case "commit":
		records, err := toRecords(st.Records)
		if err != nil {
			return mr.FieldValue{}, err
		}
		return store.Commit(field, records)
	case "reset":
		return store.Reset(field)
	}
	return mr.FieldValue{}, fmt.Errorf("%w: unknown op %q", errBadStep, st.Op)
}

func toRecords(raw []map[string]any) ([]mr.Record, error) {
	out := make([]mr.Record, 0, len(raw))
	for i, m := range raw {
		rec, err := mr.RecordFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
