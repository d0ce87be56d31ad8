// Package heuristic scores non-terminal tic-tac-toe positions for the
// search's depth cutoff.
package heuristic

import (
	"github.com/domino14/tictactoe/board"
)

// Points awarded for [0, 1, 2, ...] target marks in a segment free of
// opponent marks.
var HitPoints = [...]int{0, 10, 100, 1000, 10000, 100000, 1000000}

const (
	// EmptyPoints is awarded per empty cell in a scoring segment.
	EmptyPoints = 10
	// SequencePoints is awarded per empty cell in a segment whose longest
	// gapless run of target marks exceeds MinRewardedSequence.
	SequencePoints = 100000000
	MinRewardedSequence = 3
)

// accumulator sees one stream of cells at a time. An opponent mark ends
// the current segment the same way the end of a line does.
type accumulator struct {
	target    board.Mark
	comboSize int

	total   int
	hits    int
	empties int
	run     int
	longest int
}

func (a *accumulator) reset(target board.Mark, comboSize int) {
	*a = accumulator{target: target, comboSize: comboSize}
}

func (a *accumulator) add(m board.Mark) {
	switch m {
	case board.Empty:
		a.empties++
		a.breakRun()
	case a.target:
		a.hits++
		a.run++
	default:
		a.endSegment()
	}
}

func (a *accumulator) breakRun() {
	if a.run > a.longest {
		a.longest = a.run
	}
	a.run = 0
}

func (a *accumulator) endSegment() {
	a.breakRun()
	if a.hits+a.empties >= a.comboSize {
		a.total += HitPoints[min(a.hits, len(HitPoints)-1)] + a.empties*EmptyPoints
		if a.longest > MinRewardedSequence {
			a.total += a.empties * SequencePoints
		}
	}
	a.hits = 0
	a.empties = 0
	a.longest = 0
}

// Evaluator holds scratch state so that repeated evaluations at the
// search frontier don't allocate. It is not safe for concurrent use.
type Evaluator struct {
	diag, anti accumulator
}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns the heuristic value of b for target: the sum of the
// segment scores of every row, column and diagonal.
func (e *Evaluator) Evaluate(b *board.Board, target board.Mark) int {
	size := b.Size()
	n := size - 1
	e.diag.reset(target, b.ComboSize())
	e.anti.reset(target, b.ComboSize())

	// Diagonals starting on the top edge.
	for i := 0; i < size; i++ {
		for j := 0; j <= i; j++ {
			e.diag.add(b.MarkAt(j, n-i+j))
			e.anti.add(b.MarkAt(j, i-j))
		}
		e.diag.endSegment()
		e.anti.endSegment()
	}
	// The remaining diagonals, starting on the bottom edge.
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			e.diag.add(b.MarkAt(n-i+j, j))
			e.anti.add(b.MarkAt(n-i+j, n-j))
		}
		e.diag.endSegment()
		e.anti.endSegment()
	}
	// Rows go to the first accumulator, columns to the second.
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			e.diag.add(b.MarkAt(i, j))
			e.anti.add(b.MarkAt(j, i))
		}
		e.diag.endSegment()
		e.anti.endSegment()
	}
	return e.diag.total + e.anti.total
}

// LineScore scores a single line of cells for target.
func LineScore(line []board.Mark, target board.Mark, comboSize int) int {
	var a accumulator
	a.reset(target, comboSize)
	for _, m := range line {
		a.add(m)
	}
	a.endSegment()
	return a.total
}
