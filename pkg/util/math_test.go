package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	require.Equal(t, 1, Min(1, 2))
	require.Equal(t, 2, Max(1, 2))
	require.Equal(t, "a", Min("b", "a"))
}

func TestClamp(t *testing.T) {
	require.Equal(t, 4, Clamp(1, 4, 8))
	require.Equal(t, 8, Clamp(9, 4, 8))
	require.Equal(t, 5, Clamp(5, 4, 8))
}
