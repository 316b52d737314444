package ext

import "math/bits"

const bitsPerWord = 64

// bitmap is a fixed-length set of slot indexes.
type bitmap []uint64

func newBitmap(n int) bitmap {
	return make(bitmap, (n+bitsPerWord-1)/bitsPerWord)
}

func (b bitmap) set(i int) {
	b[i/bitsPerWord] |= 1 << (uint(i) % bitsPerWord)
}

func (b bitmap) has(i int) bool {
	w := i / bitsPerWord
	if i < 0 || w >= len(b) {
		return false
	}
	return b[w]&(1<<(uint(i)%bitsPerWord)) != 0
}

func (b bitmap) count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// each calls fn for every set index in ascending order.
func (b bitmap) each(fn func(i int)) {
	for wi, w := range b {
		for w != 0 {
			tz := bits.TrailingZeros64(w)
			fn(wi*bitsPerWord + tz)
			w &= w - 1
		}
	}
}
