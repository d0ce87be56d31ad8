package mtdf

import (
	"github.com/domino14/tictactoe/board"
)

// root tries every empty cell for the maximizing player and remembers the
// best one in rootRow/rootCol.
func (s *Solver) root(alpha, beta int) int {
	g := MinScore
	a := alpha
	size := s.b.Size()
outer:
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if s.b.MarkAt(row, col) != board.Empty {
				continue
			}
			s.b.PlaceMarkUnchecked(row, col, s.maxPlayer)
			v := s.nested(true, row, col, 0, a, beta)
			s.b.PlaceMarkUnchecked(row, col, board.Empty)
			if v > g {
				g = v
				s.rootRow, s.rootCol = row, col
			}
			a = max(a, g)
			if g >= beta {
				break outer
			}
		}
	}
	return g
}

// nested scores the position after the mark at (prevRow, prevCol).
// minimize tells whose move it is now. Wins and losses are scored so a
// faster win and a slower loss are preferred.
func (s *Solver) nested(minimize bool, prevRow, prevCol, depth, alpha, beta int) int {
	s.nodes.Add(1)
	hash := s.b.Hash()
	if n := s.ttable.Lookup(hash); n != nil {
		if n.LowerBound >= beta {
			return n.LowerBound
		}
		if n.UpperBound <= alpha {
			return n.UpperBound
		}
		alpha = max(alpha, n.LowerBound)
		beta = min(beta, n.UpperBound)
	}

	if _, ok := s.b.FindWinningCombo(prevRow, prevCol); ok {
		if minimize {
			return MaxScore - depth
		}
		return MinScore + depth
	}
	if s.b.IsFull() {
		return 0
	}
	if depth == s.maxDepth {
		s.touched = true
		return s.eval.Evaluate(s.b, s.maxPlayer) - s.eval.Evaluate(s.b, s.minPlayer)
	}

	size := s.b.Size()
	d := depth + 1
	var g int
	if minimize {
		g = MaxScore
		b := beta
	minLoop:
		for row := 0; row < size; row++ {
			for col := 0; col < size; col++ {
				if s.b.MarkAt(row, col) != board.Empty {
					continue
				}
				s.b.PlaceMarkUnchecked(row, col, s.minPlayer)
				g = min(g, s.nested(false, row, col, d, alpha, b))
				s.b.PlaceMarkUnchecked(row, col, board.Empty)
				b = min(b, g)
				if g <= alpha {
					break minLoop
				}
			}
		}
	} else {
		g = MinScore
		a := alpha
	maxLoop:
		for row := 0; row < size; row++ {
			for col := 0; col < size; col++ {
				if s.b.MarkAt(row, col) != board.Empty {
					continue
				}
				s.b.PlaceMarkUnchecked(row, col, s.maxPlayer)
				g = max(g, s.nested(true, row, col, d, a, beta))
				s.b.PlaceMarkUnchecked(row, col, board.Empty)
				a = max(a, g)
				if g >= beta {
					break maxLoop
				}
			}
		}
	}

	s.ttable.Store(hash, g, alpha, beta)
	return g
}
