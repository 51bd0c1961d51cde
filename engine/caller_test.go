package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaller_DrawsEveryNumberOnce(t *testing.T) {
	c := newCaller(rand.New(rand.NewSource(3)))

	seen := map[int]bool{}
	for i := 0; i < MaxBingoNumber; i++ {
		call, ok := c.draw()
		require.True(t, ok)
		assert.Equal(t, i, call.Index)
		assert.False(t, seen[call.Number], "number %d drawn twice", call.Number)
		assert.Equal(t, Letter(call.Number), call.Letter)
		seen[call.Number] = true
	}
	assert.Len(t, seen, MaxBingoNumber)

	_, ok := c.draw()
	assert.False(t, ok, "pool must be exhausted after 75 draws")
	assert.True(t, c.exhausted())
}

func TestCaller_SeededReproducible(t *testing.T) {
	a := newCaller(rand.New(rand.NewSource(11)))
	b := newCaller(rand.New(rand.NewSource(11)))
	assert.Equal(t, a.order, b.order)
}
