package expr

import "strings"

// Ref is a reference found in an expression.
type Ref struct {
	Namespace string
	Path      []string
	Span      Span
}

// Check reports references to namespaces outside allowed, unknown
// functions, and bare identifiers. It does not evaluate anything.
func Check(root *Node, allowed ...string) Diagnostics {
	var diags Diagnostics
	ns := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		ns[a] = true
	}
	var visitor func(n *Node) bool
	visitor = func(n *Node) bool {
		switch n.Kind {
		case KindRef:
			if !ns[n.RefNamespace] {
				diags = append(diags, Diagnostic{
					Level:   DiagError,
					Span:    n.Span,
					Message: "unknown namespace $" + n.RefNamespace + " (allowed: " + strings.Join(allowed, ", ") + ")",
					Code:    "UNKNOWN_NAMESPACE",
				})
			}
		case KindIdentifier:
			diags = append(diags, Diagnostic{Level: DiagError, Span: n.Span, Message: "undefined identifier " + n.Name, Code: "UNDEFINED_IDENTIFIER"})
		case KindCall:
			if n.Callee == nil || n.Callee.Kind != KindIdentifier {
				diags = append(diags, Diagnostic{Level: DiagError, Span: n.Span, Message: "invalid call target", Code: "INVALID_CALL"})
				return false
			}
			arity, known := Functions[n.Callee.Name]
			switch {
			case !known:
				diags = append(diags, Diagnostic{Level: DiagError, Span: n.Callee.Span, Message: "unknown function " + n.Callee.Name, Code: "UNKNOWN_FUNCTION"})
			case arity >= 0 && len(n.Args) != arity:
				diags = append(diags, Diagnostic{Level: DiagError, Span: n.Span, Message: n.Callee.Name + " has wrong number of arguments", Code: "BAD_ARITY"})
			}
			// the callee identifier is not a value; only the arguments are visited
			for _, arg := range n.Args {
				walk(arg, visitor)
			}
			return false
		}
		return true
	}
	walk(root, visitor)
	return diags
}

// Refs returns every reference in the expression, in source order.
func Refs(root *Node) []Ref {
	refs := []Ref{}
	walk(root, func(n *Node) bool {
		if n.Kind == KindRef {
			refs = append(refs, Ref{Namespace: n.RefNamespace, Path: n.RefPath, Span: n.Span})
		}
		return true
	})
	return refs
}

// walk visits n and its children depth first. visit returning false skips
// the children of that node.
func walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	switch n.Kind {
	case KindBinary:
		walk(n.Left, visit)
		walk(n.Right, visit)
	case KindUnary:
		walk(n.Expr, visit)
	case KindIf:
		walk(n.Cond, visit)
		walk(n.Then, visit)
		walk(n.Else, visit)
	case KindCall:
		for _, arg := range n.Args {
			walk(arg, visit)
		}
	case KindProperty:
		walk(n.Object, visit)
	case KindGroup:
		walk(n.Inner, visit)
	}
}
