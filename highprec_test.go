package ubjson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateJSONNumberAccepts(t *testing.T) {
	cases := []string{
		"0", "-0", "1", "-1", "123", "0.5", "-0.5", "1.25e10", "1E-10", "3.14159265358979323846",
	}
	for _, s := range cases {
		require.True(t, validateJSONNumber(s), "expected %q to be a valid JSON number", s)
	}
}

func TestValidateJSONNumberRejects(t *testing.T) {
	cases := []string{
		"", "-", "01", "1.", ".5", "1e", "1e+", "1.2.3", "abc", "1 ", " 1", "+1",
	}
	for _, s := range cases {
		require.False(t, validateJSONNumber(s), "expected %q to be rejected", s)
	}
}
