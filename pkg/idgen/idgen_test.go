package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSonyflakeGeneratorProducesUniqueIds(t *testing.T) {
	gen, err := NewSonyflakeGenerator(1)
	require.NoError(t, err)

	seen := make(map[string]bool, 100)
	for i := 0; i < 100; i++ {
		id, err := gen.NextID()
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id generated: %s", id)
		seen[id] = true
	}
}

func TestUUIDGeneratorProducesUniqueIds(t *testing.T) {
	gen := NewUUIDGenerator()
	a, err := gen.NextID()
	require.NoError(t, err)
	b, err := gen.NextID()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewConnIDIsUnique(t *testing.T) {
	a := NewConnID()
	b := NewConnID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}

func TestNextIDUsesDefaultGenerator(t *testing.T) {
	id, err := NextID()
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestSetDefaultGeneratorOverride(t *testing.T) {
	gen, err := NewSonyflakeGenerator(2)
	require.NoError(t, err)
	SetDefaultGenerator(gen)

	got, err := GetDefaultGenerator()
	require.NoError(t, err)
	assert.Same(t, gen, got)
}
