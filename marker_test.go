package ubjson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkerString(t *testing.T) {
	require.Equal(t, "Z", nullMarker.String())
	require.Equal(t, "[", arrayStartMarker.String())
}

func TestIsIntMarker(t *testing.T) {
	for _, m := range []Marker{int8Marker, uint8Marker, int16Marker, int32Marker, int64Marker} {
		require.True(t, isIntMarker(m), "marker %q should be an integer marker", m)
	}
	for _, m := range []Marker{nullMarker, trueMarker, stringMarker, arrayStartMarker} {
		require.False(t, isIntMarker(m), "marker %q should not be an integer marker", m)
	}
}

func TestSmallestUnsignedIntMarker(t *testing.T) {
	cases := []struct {
		v    uint64
		want Marker
	}{
		{0, uint8Marker},
		{255, uint8Marker},
		{256, int16Marker},
		{32767, int16Marker},
		{32768, int32Marker},
		{2147483647, int32Marker},
		{2147483648, int64Marker},
	}
	for _, c := range cases {
		require.Equal(t, c.want, smallestUnsignedIntMarker(c.v), "v=%d", c.v)
	}
}
