package mtdf

import "math"

const (
	MaxScore = math.MaxInt
	MinScore = -math.MaxInt
)

// SearchBound holds the proven bounds on a position's minimax value.
type SearchBound struct {
	LowerBound int
	UpperBound int
	// depth of the iteration the bounds were computed in.
	iteration int
}

// NodePool hands out SearchBounds and takes them all back at once. Nodes
// are never freed; ReleaseAll rewinds the high-water mark so the next
// search reuses what the previous one allocated.
type NodePool struct {
	nodes []*SearchBound
	head  int
}

func NewNodePool() *NodePool {
	return &NodePool{}
}

// Obtain returns a node with the widest possible bounds.
func (p *NodePool) Obtain() *SearchBound {
	var n *SearchBound
	if p.head < len(p.nodes) {
		n = p.nodes[p.head]
	} else {
		n = &SearchBound{}
		p.nodes = append(p.nodes, n)
	}
	p.head++
	n.LowerBound = MinScore
	n.UpperBound = MaxScore
	n.iteration = 0
	return n
}

func (p *NodePool) ReleaseAll() {
	p.head = 0
}

// Len is the number of nodes the pool has allocated.
func (p *NodePool) Len() int {
	return len(p.nodes)
}

// InUse is the number of nodes handed out since the last ReleaseAll.
func (p *NodePool) InUse() int {
	return p.head
}
