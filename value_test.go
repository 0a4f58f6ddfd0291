package directory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name     string
		a        Value
		b        Value
		expected bool
	}{
		{"strings case-insensitive", String("Engineering"), String("engineering"), true},
		{"strings different", String("eng"), String("sales"), false},
		{"ints", Int(42), Int(42), true},
		{"int and float", Int(42), Float(42.0), true},
		{"bools", Bool(true), Bool(true), true},
		{"bool mismatch", Bool(true), Bool(false), false},
		{"number coerced against string", Int(5), String("5"), true},
		{"bool coerced against string", Bool(true), String("TRUE"), true},
		{"lists element-wise", Strings("a", "b"), Strings("A", "B"), true},
		{"lists order matters", Strings("a", "b"), Strings("b", "a"), false},
		{"lists length mismatch", Strings("a"), Strings("a", "b"), false},
		{"membership list contains scalar", Strings("person", "top"), String("PERSON"), true},
		{"membership scalar against list", String("top"), Strings("person", "top"), true},
		{"membership miss", Strings("person", "top"), String("group"), false},
		{"absent never equal", Value{}, Value{}, false},
		{"absent against string", Value{}, String(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Equal(tt.b))
		})
	}
}

func TestValueCompare(t *testing.T) {
	tests := []struct {
		name       string
		a          Value
		b          Value
		expected   int
		comparable bool
	}{
		{"numeric less", Int(3), Int(5), -1, true},
		{"numeric greater", Float(5.5), Int(5), 1, true},
		{"numeric equal", Int(5), Float(5), 0, true},
		{"string order", String("alpha"), String("beta"), -1, true},
		{"absent not comparable", Value{}, Int(1), 0, false},
		{"list not comparable", Strings("a"), String("a"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.a.Compare(tt.b)
			assert.Equal(t, tt.comparable, ok)
			if ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestValueRender(t *testing.T) {
	assert.Equal(t, "hello", String("hello").Render())
	assert.Equal(t, "42", Int(42).Render())
	assert.Equal(t, "true", Bool(true).Render())
	assert.Equal(t, "a,b", Strings("a", "b").Render())
	assert.Equal(t, "", Value{}.Render())
}

func TestValueCloneIsolation(t *testing.T) {
	original := List(String("a"), List(String("nested")))
	clone := original.Clone()
	clone.list[0] = String("mutated")
	assert.Equal(t, "a", original.list[0].Render())
}

func TestValueJSONRoundTrip(t *testing.T) {
	original := List(String("a"), Int(7), Bool(false))
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, original.Equal(decoded))
	assert.Equal(t, KindList, decoded.Kind())
}

func TestValueYAMLDecoding(t *testing.T) {
	var v Value
	require.NoError(t, yaml.Unmarshal([]byte("[x, 3, true]"), &v))
	require.Equal(t, KindList, v.Kind())
	assert.Equal(t, "x", v.Elements()[0].Render())
	assert.Equal(t, KindInt, v.Elements()[1].Kind())
	assert.Equal(t, KindBool, v.Elements()[2].Kind())

	var scalar Value
	require.NoError(t, yaml.Unmarshal([]byte("engineering"), &scalar))
	assert.Equal(t, KindString, scalar.Kind())
}
