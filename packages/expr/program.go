package expr

import (
	"fmt"

	core "github.com/user/multirow"
)

// Namespaces a Program may reference.
//
//	$row:<attr>   attribute of the record under consideration ($row:id is its id)
//	$edit:value   value of the matched pending edit (null when none matched)
//	$edit:name    field name of the matched pending edit
//	$edit:id      record id of the matched pending edit
const (
	NamespaceRow  = "row"
	NamespaceEdit = "edit"
)

// Program is a parsed and checked expression.
type Program struct {
	src  string
	root *Node
}

// Compile parses src and checks it against the row and edit namespaces.
func Compile(src string) (*Program, error) {
	root, diags := Parse(src)
	if diags.HasErrors() {
		return nil, diags
	}
	if diags := Check(root, NamespaceRow, NamespaceEdit); diags.HasErrors() {
		return nil, diags
	}
	return &Program{src: src, root: root}, nil
}

// MustCompile is like Compile but panics on error. Use for constant expressions.
func MustCompile(src string) *Program {
	p, err := Compile(src)
	if err != nil {
		panic(fmt.Sprintf("expr: compile %q: %v", src, err))
	}
	return p
}

func (p *Program) String() string { return p.src }

// Eval evaluates the program with row (may be nil) and edit (may be nil) bound.
func (p *Program) Eval(row *core.Record, edit *core.ChangeRecord) (core.Value, error) {
	return Eval(p.root, bindings{row: row, edit: edit})
}

// Match returns a record predicate. Evaluation errors and non-boolean
// results count as "no match".
func (p *Program) Match() func(core.Record) bool {
	return func(r core.Record) bool {
		v, err := p.Eval(&r, nil)
		if err != nil {
			return false
		}
		b, ok := v.(core.BoolValue)
		return ok && bool(b)
	}
}

// EditNext returns a next-value function for BuildEditPayload.
// $row refers to the matched edit applied to its source record.
// Evaluation errors yield an undefined (nil) value.
func (p *Program) EditNext() func(*core.ChangeRecord) core.Value {
	return func(edit *core.ChangeRecord) core.Value {
		var row *core.Record
		if edit != nil {
			r := edit.Record()
			row = &r
		}
		v, err := p.Eval(row, edit)
		if err != nil {
			return nil
		}
		return v
	}
}

// AddNext returns a next-value function for BuildAddPayload.
// $row refers to the matched pending addition. Evaluation errors yield nil.
func (p *Program) AddNext() func(*core.Record) core.Value {
	return func(added *core.Record) core.Value {
		v, err := p.Eval(added, nil)
		if err != nil {
			return nil
		}
		return v
	}
}

// bindings resolves $row and $edit references. Missing records and
// attributes resolve to null so COALESCE can supply defaults.
type bindings struct {
	row  *core.Record
	edit *core.ChangeRecord
}

func (b bindings) ResolveValue(namespace string, path []string) (core.Value, bool) {
	if len(path) == 0 {
		return nil, false
	}
	var v core.Value
	switch namespace {
	case NamespaceRow:
		if b.row != nil {
			v, _ = b.row.Get(path[0])
		}
	case NamespaceEdit:
		if b.edit != nil {
			switch path[0] {
			case "value":
				v = b.edit.Value
			case "name":
				v = core.StringValue(b.edit.Name)
			case "id":
				v = b.edit.ID.Value()
			default:
				return nil, false
			}
		}
	default:
		return nil, false
	}
	for _, key := range path[1:] {
		obj, ok := v.(core.ObjectValue)
		if !ok {
			v = nil
			break
		}
		v = obj[key]
	}
	if v == nil {
		return core.NullValue{}, true
	}
	return v, true
}
