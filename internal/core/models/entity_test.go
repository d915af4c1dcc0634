package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDAllocator(t *testing.T) {
	var a IDAllocator
	require.Equal(t, NoEntity, a.Last())
	first := a.Next()
	second := a.Next()
	require.NotEqual(t, NoEntity, first)
	require.Greater(t, second, first)
	require.Equal(t, second, a.Last())
}
