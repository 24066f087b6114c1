package ubjson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualScalars(t *testing.T) {
	require.True(t, Equal(Null{}, Null{}))
	require.True(t, Equal(Bool(true), Bool(true)))
	require.False(t, Equal(Bool(true), Bool(false)))
	require.True(t, Equal(Int32(7), Int32(7)))
	require.False(t, Equal(Int32(7), Int64(7)), "different variants are never equal even with the same numeric value")
	require.True(t, Equal(String("hi"), String("hi")))
	require.False(t, Equal(Null{}, NoOp{}))
}

func TestEqualArray(t *testing.T) {
	a := Array{Int8(1), String("x")}
	b := Array{Int8(1), String("x")}
	c := Array{Int8(1), String("y")}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
	require.False(t, Equal(Array{}, Array{Int8(1)}))
}

func TestEqualObjectOrderSensitive(t *testing.T) {
	a := Object{{Key: "a", Val: Int8(1)}, {Key: "b", Val: Int8(2)}}
	b := Object{{Key: "a", Val: Int8(1)}, {Key: "b", Val: Int8(2)}}
	reordered := Object{{Key: "b", Val: Int8(2)}, {Key: "a", Val: Int8(1)}}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, reordered), "Object preserves insertion order, so reordered pairs are not equal")
}

func TestEqualTypedArray(t *testing.T) {
	a := TypedArray{Elem: int8Marker, HasCount: true, Count: 2, Elems: []Value{Int8(1), Int8(2)}}
	b := TypedArray{Elem: int8Marker, HasCount: true, Count: 2, Elems: []Value{Int8(1), Int8(2)}}
	c := TypedArray{Elem: int8Marker, HasCount: false, Elems: []Value{Int8(1), Int8(2)}}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c), "HasCount is part of identity")
}
