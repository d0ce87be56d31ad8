package zobrist

import (
	"encoding/binary"

	"lukechampine.com/frand"
)

const bignum = 1<<63 - 2

// NumMarks is the number of distinct cell states (empty, X, O).
const NumMarks = 3

// Source produces the random numbers a HashTable is filled with.
// *frand.RNG satisfies it.
type Source interface {
	Uint64n(n uint64) uint64
}

// NewSource returns a reproducible generator for a non-zero seed, and a
// generator seeded from system entropy for a zero seed.
func NewSource(seed int64) *frand.RNG {
	if seed == 0 {
		return frand.NewCustom(frand.Bytes(32), 1024, 12)
	}
	key := make([]byte, 32)
	binary.LittleEndian.PutUint64(key, uint64(seed))
	return frand.NewCustom(key, 1024, 12)
}

// HashTable holds one random 64-bit value per (mark, row, col).
// https://en.wikipedia.org/wiki/Zobrist_hashing
//
// The layer for the empty mark is all zeros so that an empty board hashes
// to zero. A table built for a given capacity serves every board whose
// size does not exceed it.
type HashTable struct {
	capacity int
	keys     [NumMarks][][]uint64
}

// NewHashTable fills a capacity x capacity table from src.
func NewHashTable(capacity int, src Source) *HashTable {
	t := &HashTable{capacity: capacity}
	for m := 0; m < NumMarks; m++ {
		t.keys[m] = make([][]uint64, capacity)
		for r := 0; r < capacity; r++ {
			t.keys[m][r] = make([]uint64, capacity)
			if m == 0 {
				continue
			}
			for c := 0; c < capacity; c++ {
				t.keys[m][r][c] = src.Uint64n(bignum) + 1
			}
		}
	}
	return t
}

func (t *HashTable) Capacity() int {
	return t.capacity
}

// Key returns the value XORed into a position hash for mark at (row, col).
func (t *HashTable) Key(mark uint8, row, col int) uint64 {
	return t.keys[mark][row][col]
}

// Toggle XORs mark at (row, col) in or out of key. Applying it twice
// restores the original key.
func (t *HashTable) Toggle(key uint64, mark uint8, row, col int) uint64 {
	return key ^ t.keys[mark][row][col]
}

// Copy returns a table that shares no storage with t.
func (t *HashTable) Copy() *HashTable {
	cp := &HashTable{capacity: t.capacity}
	for m := 0; m < NumMarks; m++ {
		cp.keys[m] = make([][]uint64, t.capacity)
		for r := 0; r < t.capacity; r++ {
			cp.keys[m][r] = make([]uint64, t.capacity)
			copy(cp.keys[m][r], t.keys[m][r])
		}
	}
	return cp
}
