package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceStringNumberToInteger(t *testing.T) {
	schema := Schema{"n": Param{Type: []ValueType{TypeInteger}}}
	out := Coerce(schema, map[string]any{"n": "42"})
	assert.Equal(t, int64(42), out["n"])
}

func TestCoerceNumberToString(t *testing.T) {
	schema := Schema{"s": Param{Type: []ValueType{TypeString}}}
	out := Coerce(schema, map[string]any{"s": float64(7)})
	assert.Equal(t, "7", out["s"])
}

func TestCoerceLeavesAlreadyMatchingValuesUntouched(t *testing.T) {
	schema := Schema{"n": Param{Type: []ValueType{TypeInteger}}}
	out := Coerce(schema, map[string]any{"n": float64(5)})
	assert.Equal(t, float64(5), out["n"])
}

func TestCoerceLeavesObjectsAndArraysAlone(t *testing.T) {
	schema := Schema{"o": Param{Type: []ValueType{TypeNumber}}}
	obj := map[string]any{"x": 1}
	out := Coerce(schema, map[string]any{"o": obj})
	assert.Equal(t, obj, out["o"])
}

func TestCoerceUnknownArgumentPassesThrough(t *testing.T) {
	schema := Schema{}
	out := Coerce(schema, map[string]any{"extra": "value"})
	assert.Equal(t, "value", out["extra"])
}

func TestCoerceStringToBool(t *testing.T) {
	schema := Schema{"b": Param{Type: []ValueType{TypeBoolean}}}
	out := Coerce(schema, map[string]any{"b": "true"})
	assert.Equal(t, true, out["b"])
}
