package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSelection(t *testing.T) {
	s, err := NewSelection(RegistryFor(USStocks))
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "microsoft", "nvidia", "tesla"}, s.Keys())
}

func TestAssignSwapsOnConflict(t *testing.T) {
	s, err := NewSelection(RegistryFor(Crypto))
	require.NoError(t, err)

	require.NoError(t, s.Assign(0, "cardano"))
	assert.Equal(t, []string{"cardano", "ethereum", "solana", "ripple"}, s.Keys())

	require.NoError(t, s.Assign(3, "cardano"))
	assert.Equal(t, []string{"ripple", "ethereum", "solana", "cardano"}, s.Keys())
}

func TestAssignNeverDuplicates(t *testing.T) {
	r := RegistryFor(IndianStocks)
	s, err := NewSelection(r)
	require.NoError(t, err)
	keys := r.Keys()
	for i := 0; i < 50; i++ {
		require.NoError(t, s.Assign(i%SelectionSize, keys[(i*3)%len(keys)]))
		seen := map[string]bool{}
		for _, k := range s.Keys() {
			assert.False(t, seen[k], "duplicate %s after step %d", k, i)
			assert.True(t, r.Contains(k))
			seen[k] = true
		}
		assert.Len(t, seen, SelectionSize)
	}
}

func TestAssignRejectsInvalidInput(t *testing.T) {
	s, err := NewSelection(RegistryFor(Crypto))
	require.NoError(t, err)
	assert.Error(t, s.Assign(SelectionSize, "bitcoin"))
	assert.Error(t, s.Assign(-1, "bitcoin"))
	assert.Error(t, s.Assign(0, "apple"))
	assert.Equal(t, []string{"bitcoin", "ethereum", "solana", "ripple"}, s.Keys())
}

func TestNewSelectionNeedsFourInstruments(t *testing.T) {
	_, err := NewSelection(RegistryFor(Market("forex")))
	assert.Error(t, err)
}
