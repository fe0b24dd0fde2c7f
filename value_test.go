package multirow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil null", nil, NullValue{}, false},
		{"null null", NullValue{}, NullValue{}, true},
		{"numbers", NumberValue(1), NumberValue(1), true},
		{"number string", NumberValue(1), StringValue("1"), false},
		{"arrays", ArrayValue{NumberValue(1), StringValue("a")}, ArrayValue{NumberValue(1), StringValue("a")}, true},
		{"array order", ArrayValue{NumberValue(1), NumberValue(2)}, ArrayValue{NumberValue(2), NumberValue(1)}, false},
		{"objects", ObjectValue{"a": BoolValue(true)}, ObjectValue{"a": BoolValue(true)}, true},
		{"object keys", ObjectValue{"a": BoolValue(true)}, ObjectValue{"b": BoolValue(true)}, false},
		{"nested", ObjectValue{"a": ArrayValue{ObjectValue{}}}, ObjectValue{"a": ArrayValue{ObjectValue{}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"n":    3,
		"f":    1.5,
		"s":    "x",
		"b":    true,
		"nil":  nil,
		"list": []any{int64(1), "two"},
		"tags": []string{"a"},
		"num":  json.Number("7"),
	})
	require.NoError(t, err)
	assert.Equal(t, ObjectValue{
		"n":    NumberValue(3),
		"f":    NumberValue(1.5),
		"s":    StringValue("x"),
		"b":    BoolValue(true),
		"nil":  NullValue{},
		"list": ArrayValue{NumberValue(1), StringValue("two")},
		"tags": ArrayValue{StringValue("a")},
		"num":  NumberValue(7),
	}, v)

	_, err = FromAny(struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedAttrValue)
	assert.Panics(t, func() { MustFromAny(make(chan int)) })
}

func TestToAny(t *testing.T) {
	assert.Nil(t, ToAny(nil))
	assert.Nil(t, ToAny(NullValue{}))
	assert.Equal(t, int64(3), ToAny(NumberValue(3)))
	assert.Equal(t, 2.5, ToAny(NumberValue(2.5)))
	assert.Equal(t, []any{"a", true}, ToAny(ArrayValue{StringValue("a"), BoolValue(true)}))
	assert.Equal(t, map[string]any{"k": int64(1)}, ToAny(ObjectValue{"k": NumberValue(1)}))
}

func TestDeepCopyValue(t *testing.T) {
	orig := ObjectValue{"a": ArrayValue{NumberValue(1)}}
	cp := DeepCopyValue(orig).(ObjectValue)
	cp["a"].(ArrayValue)[0] = NumberValue(2)
	assert.Equal(t, NumberValue(1), orig["a"].(ArrayValue)[0])
	assert.Nil(t, DeepCopyValue(nil))
}

func TestValueStrings(t *testing.T) {
	assert.Equal(t, "null", NullValue{}.String())
	assert.Equal(t, "1.5", NumberValue(1.5).String())
	assert.Equal(t, `"a"`, StringValue("a").String())
	assert.Equal(t, ValueArray, VArray(nil).Kind())
	assert.Equal(t, ValueObject, VObject(nil).Kind())
}
