package expr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	core "github.com/user/multirow"
)

var ErrEval = errors.New("eval error")

// ValueResolver resolves references to runtime values.
type ValueResolver interface {
	ResolveValue(namespace string, path []string) (core.Value, bool)
}

// Eval evaluates the AST and returns a Value.
func Eval(root *Node, resolver ValueResolver) (core.Value, error) {
	return evalNode(root, resolver)
}

func evalNode(n *Node, resolver ValueResolver) (core.Value, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrEval)
	}
	switch n.Kind {
	case KindLiteral:
		return n.Literal, nil
	case KindRef:
		if resolver == nil {
			return nil, fmt.Errorf("%w: resolver not provided", ErrEval)
		}
		v, ok := resolver.ResolveValue(n.RefNamespace, n.RefPath)
		if !ok {
			return nil, fmt.Errorf("%w: unresolved ref $%s:%s", ErrEval, n.RefNamespace, strings.Join(n.RefPath, "."))
		}
		return v, nil
	case KindIdentifier:
		return nil, fmt.Errorf("%w: undefined identifier %s", ErrEval, n.Name)
	case KindGroup:
		return evalNode(n.Inner, resolver)
	case KindUnary:
		val, err := evalNode(n.Expr, resolver)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "-":
			num, err := toNumber(val)
			if err != nil {
				return nil, err
			}
			return core.NumberValue(-num), nil
		case "!":
			b, err := toBool(val)
			if err != nil {
				return nil, err
			}
			return core.BoolValue(!b), nil
		default:
			return nil, fmt.Errorf("%w: unknown unary op %s", ErrEval, n.Op)
		}
	case KindBinary:
		return evalBinary(n, resolver)
	case KindIf:
		cond, err := evalNode(n.Cond, resolver)
		if err != nil {
			return nil, err
		}
		ok, err := toBool(cond)
		if err != nil {
			return nil, err
		}
		if ok {
			return evalNode(n.Then, resolver)
		}
		return evalNode(n.Else, resolver)
	case KindCall:
		if n.Callee == nil || n.Callee.Kind != KindIdentifier {
			return nil, fmt.Errorf("%w: invalid call target", ErrEval)
		}
		return evalCall(n.Callee.Name, n.Args, resolver)
	case KindProperty:
		obj, err := evalNode(n.Object, resolver)
		if err != nil {
			return nil, err
		}
		m, ok := obj.(core.ObjectValue)
		if !ok {
			return nil, fmt.Errorf("%w: property access on non-object", ErrEval)
		}
		if v, ok := m[n.Property]; ok && v != nil {
			return v, nil
		}
		return core.NullValue{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown node kind", ErrEval)
	}
}

func evalBinary(n *Node, resolver ValueResolver) (core.Value, error) {
	left, err := evalNode(n.Left, resolver)
	if err != nil {
		return nil, err
	}
	// && and || short-circuit
	if n.Op == "&&" || n.Op == "||" {
		a, err := toBool(left)
		if err != nil {
			return nil, err
		}
		if (n.Op == "&&" && !a) || (n.Op == "||" && a) {
			return core.BoolValue(a), nil
		}
		right, err := evalNode(n.Right, resolver)
		if err != nil {
			return nil, err
		}
		b, err := toBool(right)
		if err != nil {
			return nil, err
		}
		return core.BoolValue(b), nil
	}

	right, err := evalNode(n.Right, resolver)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "==":
		return core.BoolValue(core.Equal(left, right)), nil
	case "!=":
		return core.BoolValue(!core.Equal(left, right)), nil
	case "<", ">", "<=", ">=":
		return compare(n.Op, left, right)
	case "+":
		// + concatenates two strings
		ls, lok := left.(core.StringValue)
		rs, rok := right.(core.StringValue)
		if lok && rok {
			return ls + rs, nil
		}
	}
	a, err := toNumber(left)
	if err != nil {
		return nil, err
	}
	b, err := toNumber(right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "+":
		return core.NumberValue(a + b), nil
	case "-":
		return core.NumberValue(a - b), nil
	case "*":
		return core.NumberValue(a * b), nil
	case "/":
		if b == 0 {
			return nil, fmt.Errorf("%w: division by zero", ErrEval)
		}
		return core.NumberValue(a / b), nil
	case "%":
		if b == 0 {
			return nil, fmt.Errorf("%w: division by zero", ErrEval)
		}
		return core.NumberValue(math.Mod(a, b)), nil
	}
	return nil, fmt.Errorf("%w: unknown op %s", ErrEval, n.Op)
}

func compare(op string, left, right core.Value) (core.Value, error) {
	var c int
	switch l := left.(type) {
	case core.NumberValue:
		r, ok := right.(core.NumberValue)
		if !ok {
			return nil, fmt.Errorf("%w: type mismatch", ErrEval)
		}
		c = cmpOrdered(float64(l), float64(r))
	case core.StringValue:
		r, ok := right.(core.StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: type mismatch", ErrEval)
		}
		c = strings.Compare(string(l), string(r))
	default:
		return nil, fmt.Errorf("%w: unsupported comparison", ErrEval)
	}
	switch op {
	case "<":
		return core.BoolValue(c < 0), nil
	case ">":
		return core.BoolValue(c > 0), nil
	case "<=":
		return core.BoolValue(c <= 0), nil
	default:
		return core.BoolValue(c >= 0), nil
	}
}

func cmpOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Functions lists the callable functions.
var Functions = map[string]int{
	"COALESCE": -1,
	"SUM":      -1,
	"MIN":      -1,
	"MAX":      -1,
	"ABS":      1,
	"ROUND":    1,
	"CONCAT":   -1,
	"UPPER":    1,
	"LOWER":    1,
	"TRIM":     1,
	"LEN":      1,
	"CONTAINS": 2,
	"IS_NULL":  1,
}

func evalCall(name string, args []*Node, resolver ValueResolver) (core.Value, error) {
	arity, known := Functions[name]
	if !known {
		return nil, fmt.Errorf("%w: unsupported function %s", ErrEval, name)
	}
	if arity >= 0 && len(args) != arity {
		return nil, fmt.Errorf("%w: %s expects %d arguments", ErrEval, name, arity)
	}

	if name == "COALESCE" {
		for _, arg := range args {
			v, err := evalNode(arg, resolver)
			if err != nil {
				return nil, err
			}
			if !isNull(v) {
				return v, nil
			}
		}
		return core.NullValue{}, nil
	}

	vals := make([]core.Value, len(args))
	for i, arg := range args {
		v, err := evalNode(arg, resolver)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}

	switch name {
	case "SUM", "MIN", "MAX":
		if len(vals) == 0 {
			return nil, fmt.Errorf("%w: %s needs arguments", ErrEval, name)
		}
		acc, err := toNumber(vals[0])
		if err != nil {
			return nil, err
		}
		for _, v := range vals[1:] {
			n, err := toNumber(v)
			if err != nil {
				return nil, err
			}
			switch name {
			case "SUM":
				acc += n
			case "MIN":
				acc = math.Min(acc, n)
			case "MAX":
				acc = math.Max(acc, n)
			}
		}
		return core.NumberValue(acc), nil
	case "ABS", "ROUND":
		n, err := toNumber(vals[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects number", ErrEval, name)
		}
		if name == "ABS" {
			return core.NumberValue(math.Abs(n)), nil
		}
		return core.NumberValue(math.Round(n)), nil
	case "CONCAT":
		var out strings.Builder
		for _, v := range vals {
			s, err := toString(v)
			if err != nil {
				return nil, err
			}
			out.WriteString(s)
		}
		return core.StringValue(out.String()), nil
	case "UPPER", "LOWER", "TRIM", "LEN":
		s, err := toString(vals[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects string", ErrEval, name)
		}
		switch name {
		case "UPPER":
			return core.StringValue(strings.ToUpper(s)), nil
		case "LOWER":
			return core.StringValue(strings.ToLower(s)), nil
		case "TRIM":
			return core.StringValue(strings.TrimSpace(s)), nil
		default:
			return core.NumberValue(float64(len([]rune(s)))), nil
		}
	case "CONTAINS":
		s, err := toString(vals[0])
		if err != nil {
			return nil, fmt.Errorf("%w: CONTAINS expects string", ErrEval)
		}
		sub, err := toString(vals[1])
		if err != nil {
			return nil, fmt.Errorf("%w: CONTAINS expects string", ErrEval)
		}
		return core.BoolValue(strings.Contains(s, sub)), nil
	case "IS_NULL":
		return core.BoolValue(isNull(vals[0])), nil
	}
	return nil, fmt.Errorf("%w: unsupported function %s", ErrEval, name)
}

func isNull(v core.Value) bool {
	if v == nil {
		return true
	}
	_, null := v.(core.NullValue)
	return null
}

func toNumber(v core.Value) (float64, error) {
	n, ok := v.(core.NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: expected number", ErrEval)
	}
	return float64(n), nil
}

func toBool(v core.Value) (bool, error) {
	b, ok := v.(core.BoolValue)
	if !ok {
		return false, fmt.Errorf("%w: expected bool", ErrEval)
	}
	return bool(b), nil
}

func toString(v core.Value) (string, error) {
	s, ok := v.(core.StringValue)
	if !ok {
		return "", fmt.Errorf("%w: expected string", ErrEval)
	}
	return string(s), nil
}
