package ubjson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyArrayEmpty(t *testing.T) {
	v := classifyArray(nil)
	require.Equal(t, verdictHeterogeneous, v.kind)
}

func TestClassifyArrayUniform(t *testing.T) {
	v := classifyArray([]Value{Int32(1), Int32(2), Int32(3)})
	require.Equal(t, verdictUniform, v.kind)
	require.Equal(t, int32Marker, v.tag)
	require.Equal(t, 3, v.n)
}

func TestClassifyArrayHeterogeneous(t *testing.T) {
	v := classifyArray([]Value{Int32(1), String("x")})
	require.Equal(t, verdictHeterogeneous, v.kind)
}

func TestClassifyArrayMixedWidthNotUniform(t *testing.T) {
	// Int8 and Int32 both hold the value 1 numerically, but they are
	// different wire markers, so the sequence is not uniform.
	v := classifyArray([]Value{Int8(1), Int32(1)})
	require.Equal(t, verdictHeterogeneous, v.kind)
}

func TestClassifyArrayBoolTrueRun(t *testing.T) {
	v := classifyArray([]Value{Bool(true), Bool(true), Bool(true)})
	require.Equal(t, verdictUniform, v.kind)
	require.Equal(t, trueMarker, v.tag)
}

func TestClassifyArrayBoolMixedNotUniform(t *testing.T) {
	// True and False are distinct markers with no payload of their own, so
	// a mixed run can never be declared as one uniform tag.
	v := classifyArray([]Value{Bool(true), Bool(false)})
	require.Equal(t, verdictHeterogeneous, v.kind)
}

func TestClassifyObjectUniform(t *testing.T) {
	v := classifyObject([]Pair{
		{Key: "a", Val: Float64(1)},
		{Key: "b", Val: Float64(2)},
	})
	require.Equal(t, verdictUniform, v.kind)
	require.Equal(t, float64Marker, v.tag)
}

func TestClassifySeqContainersUniformByStartMarker(t *testing.T) {
	// Array/Object/TypedArray/TypedObject all collapse to their container
	// start marker, so two arrays of different shapes still count as one
	// uniform "array of arrays" tag; this is intentional,
	// since the wire marker — not the nested shape — is what must match.
	v := classifyArray([]Value{
		Array{Int8(1)},
		Array{Int8(1), Int8(2)},
	})
	require.Equal(t, verdictUniform, v.kind)
	require.Equal(t, arrayStartMarker, v.tag)
}
