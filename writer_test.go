package ubjson

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeBytes(t *testing.T, v Value, cfg WriterConfig) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteValue(v, &buf, cfg))
	return buf.Bytes()
}

func TestWriteValueScalars(t *testing.T) {
	cfg := DefaultWriterConfig()
	require.Equal(t, []byte{'Z'}, writeBytes(t, Null{}, cfg))
	require.Equal(t, []byte{'T'}, writeBytes(t, Bool(true), cfg))
	require.Equal(t, []byte{'F'}, writeBytes(t, Bool(false), cfg))
	require.Equal(t, []byte{'i', 0x7F}, writeBytes(t, Int8(127), cfg))
	require.Equal(t, []byte{'U', 0xFF}, writeBytes(t, UInt8(255), cfg))
	require.Equal(t, []byte{'C', 'x'}, writeBytes(t, Char('x'), cfg))
}

func TestWriteValueInt32BigEndian(t *testing.T) {
	got := writeBytes(t, Int32(0x01020304), DefaultWriterConfig())
	require.Equal(t, []byte{'l', 0x01, 0x02, 0x03, 0x04}, got)
}

func TestWriteValueString(t *testing.T) {
	got := writeBytes(t, String("hi"), DefaultWriterConfig())
	// S, length marker U, length 2, bytes "hi"
	require.Equal(t, []byte{'S', 'U', 2, 'h', 'i'}, got)
}

func TestWriteValueNoOpRejected(t *testing.T) {
	var buf bytes.Buffer
	err := WriteValue(NoOp{}, &buf, DefaultWriterConfig())
	require.Error(t, err)
	var target *UnsupportedValueError
	require.ErrorAs(t, err, &target)
}

func TestWriteArrayHeterogeneousOpenEnded(t *testing.T) {
	got := writeBytes(t, Array{Int8(1), String("x")}, DefaultWriterConfig())
	want := []byte{'[', 'i', 1, 'S', 'U', 1, 'x', ']'}
	require.Equal(t, want, got)
}

func TestWriteArrayUniformOptimized(t *testing.T) {
	got := writeBytes(t, Array{Int8(1), Int8(2), Int8(3)}, DefaultWriterConfig())
	want := []byte{'[', '$', 'i', '#', 'U', 3, 1, 2, 3}
	require.Equal(t, want, got)
}

func TestWriteArrayOptimizationDisabled(t *testing.T) {
	cfg := DefaultWriterConfig()
	cfg.OptimizeContainers = false
	got := writeBytes(t, Array{Int8(1), Int8(2), Int8(3)}, cfg)
	want := []byte{'[', 'i', 1, 'i', 2, 'i', 3, ']'}
	require.Equal(t, want, got)
}

func TestWriteArrayUniformBoolNoPayloadBytes(t *testing.T) {
	got := writeBytes(t, Array{Bool(true), Bool(true)}, DefaultWriterConfig())
	want := []byte{'[', '$', 'T', '#', 'U', 2}
	require.Equal(t, want, got)
}

func TestWriteObjectUniformOptimized(t *testing.T) {
	got := writeBytes(t, Object{
		{Key: "a", Val: Float64(1)},
		{Key: "b", Val: Float64(2)},
	}, DefaultWriterConfig())

	require.True(t, bytes.HasPrefix(got, []byte{'{', '$', 'D', '#', 'U', 2}))
	require.True(t, bytes.Contains(got, []byte{'U', 1, 'a'}))
	require.True(t, bytes.Contains(got, []byte{'U', 1, 'b'}))
}

func TestWriteTypedArrayVerbatimRejectsTagMismatch(t *testing.T) {
	v := TypedArray{Elem: int8Marker, HasCount: true, Count: 1, Elems: []Value{String("nope")}}
	var buf bytes.Buffer
	err := WriteValue(v, &buf, DefaultWriterConfig())
	require.Error(t, err)
}

func TestWriteTypedArrayOpenRejected(t *testing.T) {
	v := TypedArray{Elem: int8Marker, HasCount: false, Elems: []Value{Int8(1)}}
	var buf bytes.Buffer
	err := WriteValue(v, &buf, DefaultWriterConfig())
	require.Error(t, err, "typed-open form has no count and is forbidden by the format")
}

func TestWriteDepthExceeded(t *testing.T) {
	cfg := DefaultWriterConfig()
	cfg.MaxDepth = 1

	// Three levels of array nesting: the outermost call is depth 0, its
	// child is depth 1 (still within MaxDepth=1), and the innermost array
	// is entered at depth 2, which exceeds the ceiling.
	nested := Array{Array{Array{Int8(1)}}}
	var buf bytes.Buffer
	err := WriteValue(nested, &buf, cfg)
	require.Error(t, err)
	var target *DepthError
	require.ErrorAs(t, err, &target)
}

func TestWriteHighPrecRejectsInvalidGrammar(t *testing.T) {
	var buf bytes.Buffer
	err := WriteValue(HighPrec("not-a-number"), &buf, DefaultWriterConfig())
	require.Error(t, err)
}

func TestWriteStreamMatchesWriteValue(t *testing.T) {
	v := Array{Int32(1), Int32(2)}
	cfg := DefaultWriterConfig()

	var direct bytes.Buffer
	require.NoError(t, WriteValue(v, &direct, cfg))

	var streamed bytes.Buffer
	src := valueEventSource{v: v}
	require.NoError(t, WriteStream(src, &streamed, cfg))

	require.Equal(t, direct.Bytes(), streamed.Bytes())
}

// valueEventSource adapts a single Value to the EventSource interface for
// tests, the way an external object-graph adapter would.
type valueEventSource struct{ v Value }

func (s valueEventSource) Emit(sink Sink) error {
	return sink.EmitValue(s.v)
}
