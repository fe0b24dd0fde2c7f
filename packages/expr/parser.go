package expr

import (
	"fmt"
	"strconv"

	core "github.com/user/multirow"
)

// binaryLevels lists binary operators from lowest to highest precedence.
var binaryLevels = [][]string{
	{"||"},
	{"&&"},
	{"==", "!=", "<", ">", "<=", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

type parser struct {
	tokens []token
	pos    int
	diags  Diagnostics
}

// Parse turns an expression into an AST. The AST may be partial when
// diagnostics are returned.
func Parse(input string) (*Node, Diagnostics) {
	p := &parser{}
	if err := p.lexAll(newLexer(input)); err != nil {
		p.errorf(Span{}, "LEX_ERROR", "%v", err)
		return nil, p.diags
	}
	node := p.parseExpression()
	if node == nil && len(p.diags) == 0 {
		p.errorf(Span{}, "PARSE_ERROR", "empty expression")
	}
	if t := p.current(); t.typ != tokEOF {
		p.errorf(t.span, "PARSE_ERROR", "unexpected trailing tokens")
	}
	return node, p.diags
}

func (p *parser) lexAll(lex *lexer) error {
	for {
		tok, err := lex.nextToken()
		if err != nil {
			return err
		}
		p.tokens = append(p.tokens, tok)
		if tok.typ == tokEOF {
			return nil
		}
	}
}

func (p *parser) errorf(span Span, code, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Level: DiagError, Span: span, Message: fmt.Sprintf(format, args...), Code: code})
}

func (p *parser) current() token {
	if p.pos >= len(p.tokens) {
		return token{typ: tokEOF}
	}
	return p.tokens[p.pos]
}

func (p *parser) peekType(offset int) tokenType {
	if idx := p.pos + offset; idx < len(p.tokens) {
		return p.tokens[idx].typ
	}
	return tokEOF
}

func (p *parser) next() token {
	t := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *parser) expect(tt tokenType, msg string) token {
	t := p.current()
	if t.typ != tt {
		p.errorf(t.span, "PARSE_ERROR", "%s", msg)
		return token{typ: tt, span: t.span}
	}
	return p.next()
}

func (p *parser) parseExpression() *Node {
	// IF(cond, then, else) is a special form so only one branch is evaluated.
	if t := p.current(); t.typ == tokIdentifier && t.lit == "IF" && p.peekType(1) == tokLParen {
		p.next()
		p.next()
		cond := p.parseExpression()
		p.expect(tokComma, "expected ',' after IF condition")
		thenExpr := p.parseExpression()
		p.expect(tokComma, "expected ',' after IF then")
		elseExpr := p.parseExpression()
		end := p.expect(tokRParen, "expected ')' to close IF")
		return &Node{Kind: KindIf, Span: Span{Start: t.span.Start, End: end.span.End}, Cond: cond, Then: thenExpr, Else: elseExpr}
	}
	return p.parseBinary(0)
}

func (p *parser) parseBinary(level int) *Node {
	if level == len(binaryLevels) {
		return p.parseUnary()
	}
	left := p.parseBinary(level + 1)
	for p.atOperator(binaryLevels[level]) {
		op := p.next()
		right := p.parseBinary(level + 1)
		if left == nil || right == nil {
			p.errorf(op.span, "PARSE_ERROR", "missing operand for %s", op.lit)
			return left
		}
		left = &Node{Kind: KindBinary, Span: Span{Start: left.Span.Start, End: right.Span.End}, Op: op.lit, Left: left, Right: right}
	}
	return left
}

func (p *parser) atOperator(ops []string) bool {
	t := p.current()
	if t.typ != tokOp {
		return false
	}
	for _, op := range ops {
		if t.lit == op {
			return true
		}
	}
	return false
}

func (p *parser) parseUnary() *Node {
	if p.atOperator([]string{"-", "!"}) {
		op := p.next()
		operand := p.parseUnary()
		if operand == nil {
			p.errorf(op.span, "PARSE_ERROR", "missing operand for %s", op.lit)
			return nil
		}
		return &Node{Kind: KindUnary, Span: Span{Start: op.span.Start, End: operand.Span.End}, Op: op.lit, Expr: operand}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() *Node {
	node := p.parsePrimary()
	for node != nil {
		switch p.current().typ {
		case tokDot:
			p.next()
			id := p.expect(tokIdentifier, "expected identifier after '.'")
			node = &Node{Kind: KindProperty, Span: Span{Start: node.Span.Start, End: id.span.End}, Object: node, Property: id.lit}
		case tokLParen:
			p.next()
			args := []*Node{}
			if p.current().typ != tokRParen {
				args = append(args, p.parseExpression())
				for p.current().typ == tokComma {
					p.next()
					args = append(args, p.parseExpression())
				}
			}
			end := p.expect(tokRParen, "expected ')' after arguments")
			node = &Node{Kind: KindCall, Span: Span{Start: node.Span.Start, End: end.span.End}, Callee: node, Args: args}
		default:
			return node
		}
	}
	return node
}

func (p *parser) parsePrimary() *Node {
	t := p.current()
	switch t.typ {
	case tokDollar:
		p.next()
		ns := p.expect(tokIdentifier, "expected namespace").lit
		p.expect(tokColon, "expected ':' after namespace")
		name := p.expect(tokIdentifier, "expected name")
		path := []string{name.lit}
		end := name.span.End
		for p.current().typ == tokDot {
			p.next()
			part := p.expect(tokIdentifier, "expected name segment")
			path = append(path, part.lit)
			end = part.span.End
		}
		return &Node{Kind: KindRef, Span: Span{Start: t.span.Start, End: end}, RefNamespace: ns, RefPath: path}
	case tokNumber:
		p.next()
		num, err := strconv.ParseFloat(t.lit, 64)
		if err != nil {
			p.errorf(t.span, "PARSE_ERROR", "invalid number %q", t.lit)
		}
		return &Node{Kind: KindLiteral, Span: t.span, Literal: core.NumberValue(num)}
	case tokString:
		p.next()
		return &Node{Kind: KindLiteral, Span: t.span, Literal: core.StringValue(t.lit)}
	case tokBool:
		p.next()
		return &Node{Kind: KindLiteral, Span: t.span, Literal: core.BoolValue(t.lit == "true")}
	case tokNull:
		p.next()
		return &Node{Kind: KindLiteral, Span: t.span, Literal: core.NullValue{}}
	case tokIdentifier:
		p.next()
		return &Node{Kind: KindIdentifier, Span: t.span, Name: t.lit}
	case tokLParen:
		p.next()
		inner := p.parseExpression()
		end := p.expect(tokRParen, "expected ')'")
		return &Node{Kind: KindGroup, Span: Span{Start: t.span.Start, End: end.span.End}, Inner: inner}
	default:
		p.errorf(t.span, "PARSE_ERROR", "unexpected token: %s", t.lit)
		p.next()
		return nil
	}
}
