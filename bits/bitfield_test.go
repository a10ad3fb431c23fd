package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitfieldFromSortedToIndices(t *testing.T) {
	rows := []int{0, 3, 63, 64, 65, 129}

	b := NewBitfield(130)
	b.FromSorted(rows)

	assert.Equal(t, len(rows), b.Count())
	assert.True(t, b.Get(64))
	assert.False(t, b.Get(62))

	out := make([]int, b.Count())
	n := b.ToIndices(out)
	require.Equal(t, len(rows), n)
	assert.Equal(t, rows, out)

	b.Clear(64)
	assert.False(t, b.Get(64))
	b.Set(1)
	assert.True(t, b.Get(1))
}

func TestFullBitfieldRespectsSize(t *testing.T) {
	full := NewFullBitfield(70)
	assert.Equal(t, 70, full.Count())
	assert.Equal(t, 70, full.Len())

	empty := NewFullBitfield(0)
	assert.False(t, empty.Any())
}

func TestMerge(t *testing.T) {
	a := NewBitfield(100)
	a.FromSorted([]int{1, 2, 3, 90})

	b := NewBitfield(100)
	b.FromSorted([]int{2, 90, 99})

	and := MergeAND(a, b)
	out := make([]int, and.Count())
	and.ToIndices(out)
	assert.Equal(t, []int{2, 90}, out)

	or := MergeOR(a, b)
	assert.Equal(t, 5, or.Count())

	assert.Panics(t, func() { MergeAND(a, NewBitfield(10)) })
}
