package bits

import "math/bits"

// Bitfield is a row selection mask over a fixed number of rows.
type Bitfield struct {
	words []uint64
	size  int
}

func NewBitfield(size int) Bitfield {
	size = max(size, 0)
	return Bitfield{words: make([]uint64, (size+63)>>6), size: size}
}

// NewFullBitfield selects every row.
func NewFullBitfield(size int) Bitfield {
	b := NewBitfield(size)
	for i := range b.words {
		b.words[i] = ^uint64(0)
	}
	b.clearTail()
	return b
}

func (b *Bitfield) clearTail() {
	if rem := b.size & 63; rem != 0 {
		b.words[len(b.words)-1] &= (uint64(1) << rem) - 1
	}
}

func (b *Bitfield) Len() int {
	return b.size
}

func (b *Bitfield) Set(bit int) {
	word := bit >> 6 // bit / 64
	mask := uint64(1) << (bit & 63)
	b.words[word] |= mask
}

func (b *Bitfield) Clear(bit int) {
	word := bit >> 6
	mask := uint64(1) << (bit & 63)
	b.words[word] &^= mask
}

// FromSorted sets the bits of ascending row indices.
func (b *Bitfield) FromSorted(rows []int) {
	arr := b.words
	if len(rows) == 0 {
		return
	}

	currWord := rows[0] >> 6
	mask := uint64(0)

	for _, bit := range rows {
		w := bit >> 6
		if w != currWord {
			arr[currWord] |= mask
			currWord = w
			mask = 0
		}
		mask |= 1 << (bit & 63)
	}

	arr[currWord] |= mask
}

func (b *Bitfield) Get(bit int) bool {
	word := bit >> 6
	return (b.words[word]>>(bit&63))&1 == 1
}

// ToIndices writes the selected rows in ascending order into out, which must
// hold at least Count values.
func (b *Bitfield) ToIndices(out []int) int {
	filled := 0
	for wi, w := range b.words {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			out[filled] = wi*64 + tz
			filled += 1
			w &= w - 1 // clear lowest set bit
		}
	}
	return filled
}

func (b *Bitfield) Any() bool {
	for _, w := range b.words {
		if w != 0 {
			return true
		}
	}
	return false
}

func (b *Bitfield) Count() int {
	c := 0
	for _, w := range b.words {
		c += bits.OnesCount64(w)
	}
	return c
}

func merge(a, b Bitfield, op func(x, y uint64) uint64) Bitfield {
	if a.size != b.size {
		panic("bitfields of different sizes")
	}

	out := NewBitfield(a.size)
	for i := range a.words {
		out.words[i] = op(a.words[i], b.words[i])
	}
	return out
}

func MergeOR(a, b Bitfield) Bitfield {
	return merge(a, b, func(x, y uint64) uint64 { return x | y })
}

func MergeAND(a, b Bitfield) Bitfield {
	return merge(a, b, func(x, y uint64) uint64 { return x & y })
}
