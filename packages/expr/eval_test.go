package expr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "github.com/user/multirow"
)

type mapResolver map[string]core.Value

func (r mapResolver) ResolveValue(namespace string, path []string) (core.Value, bool) {
	v, ok := r[namespace+":"+strings.Join(path, ".")]
	return v, ok
}

func evalString(t *testing.T, src string, r ValueResolver) (core.Value, error) {
	t.Helper()
	ast, diags := Parse(src)
	require.Empty(t, diags, src)
	return Eval(ast, r)
}

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		want core.Value
	}{
		{`1 + 2 * 3`, core.NumberValue(7)},
		{`(1 + 2) * 3`, core.NumberValue(9)},
		{`-4 + 1`, core.NumberValue(-3)},
		{`7 % 4`, core.NumberValue(3)},
		{`"ab" + "cd"`, core.StringValue("abcd")},
		{`1 == 1 && "a" != "b"`, core.BoolValue(true)},
		{`!(2 > 1)`, core.BoolValue(false)},
		{`"a" < "b"`, core.BoolValue(true)},
		{`IF(true, 1, 2)`, core.NumberValue(1)},
		{`IF(false, 1 / 0, 2)`, core.NumberValue(2)},
		{`COALESCE(null, "x")`, core.StringValue("x")},
		{`COALESCE(null, null)`, core.NullValue{}},
		{`SUM(1, 2, 3)`, core.NumberValue(6)},
		{`MIN(4, 2, 9)`, core.NumberValue(2)},
		{`MAX(4, 2, 9)`, core.NumberValue(9)},
		{`ABS(-2)`, core.NumberValue(2)},
		{`ROUND(2.5)`, core.NumberValue(3)},
		{`CONCAT("a", "b", "c")`, core.StringValue("abc")},
		{`UPPER("ab")`, core.StringValue("AB")},
		{`LOWER("AB")`, core.StringValue("ab")},
		{`TRIM("  x ")`, core.StringValue("x")},
		{`LEN("日本")`, core.NumberValue(2)},
		{`CONTAINS("widget", "dg")`, core.BoolValue(true)},
		{`IS_NULL(null)`, core.BoolValue(true)},
		{`false && 1 / 0 == 1`, core.BoolValue(false)},
		{`true || 1 / 0 == 1`, core.BoolValue(true)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := evalString(t, tt.src, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvalRef(t *testing.T) {
	r := mapResolver{
		"row:qty":       core.NumberValue(10),
		"row:meta.tags": core.ArrayValue{core.StringValue("a")},
	}
	got, err := evalString(t, `$row:qty * 2`, r)
	require.NoError(t, err)
	assert.Equal(t, core.NumberValue(20), got)

	got, err = evalString(t, `$row:meta.tags == $row:meta.tags`, r)
	require.NoError(t, err)
	assert.Equal(t, core.BoolValue(true), got)
}

func TestEvalProperty(t *testing.T) {
	r := mapResolver{"row:meta": core.ObjectValue{"owner": core.StringValue("kim")}}
	got, err := evalString(t, `($row:meta).owner`, r)
	require.NoError(t, err)
	assert.Equal(t, core.StringValue("kim"), got)

	got, err = evalString(t, `($row:meta).missing`, r)
	require.NoError(t, err)
	assert.Equal(t, core.NullValue{}, got)
}

func TestEvalErrors(t *testing.T) {
	r := mapResolver{"row:qty": core.NumberValue(1)}
	for _, src := range []string{
		`"a" + 1`,
		`1 / 0`,
		`5 % 0`,
		`LEFT("x")`,
		`ABS(1, 2)`,
		`UPPER(1)`,
		`$row:missing`,
		`undefinedName`,
		`1 < "a"`,
		`true < false`,
		`!1`,
		`IF(1, 2, 3)`,
		`(1).x`,
		`SUM()`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := evalString(t, src, r)
			assert.ErrorIs(t, err, ErrEval)
		})
	}
}

func TestEvalRefWithoutResolver(t *testing.T) {
	_, err := evalString(t, `$row:qty`, nil)
	assert.ErrorIs(t, err, ErrEval)
}
