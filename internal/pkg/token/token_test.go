package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ShapeAndUniqueness(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	b, err := New()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", a)
	assert.NotEqual(t, a, b)
}

func TestHash_DeterministicAndDistinct(t *testing.T) {
	raw, err := New()
	require.NoError(t, err)

	h1 := Hash(raw)
	h2 := Hash(raw)
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, raw, h1)
	assert.Len(t, h1, 64)
}
