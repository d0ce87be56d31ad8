package mtdf

import (
	"unsafe"
)

// Rough per-entry cost of a pooled node plus its map slot.
const entryBytes = int(unsafe.Sizeof(SearchBound{})) + 3*8

// TranspositionTable maps a position hash to the bounds proven for it.
// Two positions with the same hash share an entry; collisions are not
// detected.
type TranspositionTable struct {
	nodes map[uint64]*SearchBound
	pool  *NodePool
	// entries from a different iteration are treated as misses, since
	// their bounds were proven against a different depth cutoff.
	iteration int

	lookups uint64
	hits    uint64
	created uint64
}

func NewTranspositionTable() *TranspositionTable {
	return &TranspositionTable{
		nodes: make(map[uint64]*SearchBound),
		pool:  NewNodePool(),
	}
}

// SetIteration starts a new deepening iteration.
func (t *TranspositionTable) SetIteration(depth int) {
	t.iteration = depth
}

// Lookup returns the bounds stored for hash in the current iteration, or
// nil.
func (t *TranspositionTable) Lookup(hash uint64) *SearchBound {
	t.lookups++
	n := t.nodes[hash]
	if n == nil || n.iteration != t.iteration {
		return nil
	}
	t.hits++
	return n
}

// Store records that a search of the window (alpha, beta) returned g.
func (t *TranspositionTable) Store(hash uint64, g, alpha, beta int) {
	n := t.nodes[hash]
	if n == nil {
		n = t.pool.Obtain()
		t.nodes[hash] = n
		t.created++
	}
	if n.iteration != t.iteration {
		n.LowerBound = MinScore
		n.UpperBound = MaxScore
		n.iteration = t.iteration
	}
	switch {
	case g <= alpha:
		n.UpperBound = g
	case g < beta:
		n.LowerBound = g
		n.UpperBound = g
	default:
		n.LowerBound = g
	}
}

// Reset empties the table and returns every node to the pool.
func (t *TranspositionTable) Reset() {
	clear(t.nodes)
	t.pool.ReleaseAll()
	t.iteration = 0
	t.lookups = 0
	t.hits = 0
	t.created = 0
}

func (t *TranspositionTable) Len() int {
	return len(t.nodes)
}

// RetainedBytes estimates the memory held by the pool between searches.
func (t *TranspositionTable) RetainedBytes() uint64 {
	return uint64(t.pool.Len() * entryBytes)
}
