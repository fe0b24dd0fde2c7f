package expr

import (
	"strings"

	core "github.com/user/multirow"
)

// Span is a half-open range of UTF-8 byte offsets into the source.
type Span struct {
	Start int
	End   int
}

// NodeKind discriminates Node.
type NodeKind int

const (
	KindRef NodeKind = iota
	KindLiteral
	KindIdentifier
	KindBinary
	KindUnary
	KindCall
	KindIf
	KindProperty
	KindGroup
)

var kindNames = [...]string{
	KindRef:        "ref",
	KindLiteral:    "literal",
	KindIdentifier: "identifier",
	KindBinary:     "binary",
	KindUnary:      "unary",
	KindCall:       "call",
	KindIf:         "if",
	KindProperty:   "property",
	KindGroup:      "group",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is one expression node. Only the members of its Kind are set.
type Node struct {
	Kind NodeKind
	Span Span

	// ref: $RefNamespace:RefPath[0].RefPath[1]...
	RefNamespace string
	RefPath      []string

	Literal core.Value // literal
	Name    string     // identifier

	Op    string // unary, binary
	Left  *Node  // binary
	Right *Node  // binary
	Expr  *Node  // unary

	Callee *Node // call; an identifier for every valid call
	Args   []*Node

	Cond, Then, Else *Node // if

	Object   *Node // property
	Property string

	Inner *Node // group
}

// String renders the node back to source form with minimal spacing.
// Parsing the result yields an equivalent tree.
func (n *Node) String() string {
	var b strings.Builder
	n.format(&b)
	return b.String()
}

func (n *Node) format(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	switch n.Kind {
	case KindRef:
		b.WriteString("$" + n.RefNamespace + ":" + strings.Join(n.RefPath, "."))
	case KindLiteral:
		if n.Literal == nil {
			b.WriteString("null")
			return
		}
		b.WriteString(n.Literal.String())
	case KindIdentifier:
		b.WriteString(n.Name)
	case KindBinary:
		n.Left.format(b)
		b.WriteString(" " + n.Op + " ")
		n.Right.format(b)
	case KindUnary:
		b.WriteString(n.Op)
		n.Expr.format(b)
	case KindCall:
		n.Callee.format(b)
		formatList(b, n.Args...)
	case KindIf:
		b.WriteString("IF")
		formatList(b, n.Cond, n.Then, n.Else)
	case KindProperty:
		n.Object.format(b)
		b.WriteString("." + n.Property)
	case KindGroup:
		b.WriteString("(")
		n.Inner.format(b)
		b.WriteString(")")
	}
}

func formatList(b *strings.Builder, nodes ...*Node) {
	b.WriteString("(")
	for i, arg := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}
		arg.format(b)
	}
	b.WriteString(")")
}
