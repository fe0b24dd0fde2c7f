package expr

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

type tokenType int

const (
	tokEOF tokenType = iota
	tokIdentifier
	tokNumber
	tokString
	tokBool
	tokNull
	tokDollar
	tokColon
	tokDot
	tokComma
	tokLParen
	tokRParen
	tokOp
)

type token struct {
	typ  tokenType
	lit  string
	span Span
}

type lexer struct {
	src string
	pos int // byte offset
}

func newLexer(input string) *lexer {
	return &lexer{src: input}
}

func (l *lexer) nextRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	return r
}

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *lexer) token(typ tokenType, start int, lit string) token {
	return token{typ: typ, lit: lit, span: Span{Start: start, End: l.pos}}
}

func (l *lexer) skipWhile(pred func(rune) bool) {
	for r := l.peekRune(); r != 0 && pred(r); r = l.peekRune() {
		l.nextRune()
	}
}

func (l *lexer) nextToken() (token, error) {
	l.skipWhile(unicode.IsSpace)
	start := l.pos
	ch := l.nextRune()
	if ch == 0 {
		return l.token(tokEOF, start, ""), nil
	}

	switch ch {
	case '$':
		return l.token(tokDollar, start, "$"), nil
	case ':':
		return l.token(tokColon, start, ":"), nil
	case '.':
		return l.token(tokDot, start, "."), nil
	case ',':
		return l.token(tokComma, start, ","), nil
	case '(':
		return l.token(tokLParen, start, "("), nil
	case ')':
		return l.token(tokRParen, start, ")"), nil
	case '"', '\'':
		return l.lexString(start, ch)
	}

	if unicode.IsDigit(ch) {
		l.skipWhile(unicode.IsDigit)
		if l.peekRune() == '.' {
			l.nextRune()
			l.skipWhile(unicode.IsDigit)
		}
		return l.token(tokNumber, start, l.src[start:l.pos]), nil
	}

	if isIdentStart(ch) {
		l.skipWhile(isIdentPart)
		lit := l.src[start:l.pos]
		switch lit {
		case "true", "false":
			return l.token(tokBool, start, lit), nil
		case "null":
			return l.token(tokNull, start, lit), nil
		default:
			return l.token(tokIdentifier, start, lit), nil
		}
	}

	switch ch {
	case '+', '-', '*', '/', '%', '!', '<', '>', '=':
		op := string(ch)
		if l.peekRune() == '=' {
			l.nextRune()
			op += "="
		}
		return l.token(tokOp, start, op), nil
	case '&', '|':
		if l.peekRune() == ch {
			l.nextRune()
			return l.token(tokOp, start, string([]rune{ch, ch})), nil
		}
	}

	return token{}, fmt.Errorf("unexpected character %q at %d", ch, start)
}

// lexString reads a quoted string; escapes follow Go syntax.
func (l *lexer) lexString(start int, quote rune) (token, error) {
	for {
		n := l.nextRune()
		if n == 0 {
			return token{}, fmt.Errorf("unterminated string at %d", start)
		}
		if n == quote {
			break
		}
		if n == '\\' && l.nextRune() == 0 {
			return token{}, fmt.Errorf("unterminated escape at %d", start)
		}
	}
	body := l.src[start+1 : l.pos-1]
	if quote == '\'' {
		body = unescapeSingle(body)
	}
	lit, err := strconv.Unquote(`"` + body + `"`)
	if err != nil {
		return token{}, fmt.Errorf("invalid string literal at %d: %w", start, err)
	}
	return l.token(tokString, start, lit), nil
}

// unescapeSingle turns \' into ' and escapes bare double quotes so the body
// can be unquoted as a Go string.
func unescapeSingle(s string) string {
	out := make([]rune, 0, len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch {
		case runes[i] == '\\' && i+1 < len(runes) && runes[i+1] == '\'':
			out = append(out, '\'')
			i++
		case runes[i] == '\\' && i+1 < len(runes):
			out = append(out, runes[i], runes[i+1])
			i++
		case runes[i] == '"':
			out = append(out, '\\', '"')
		default:
			out = append(out, runes[i])
		}
	}
	return string(out)
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
