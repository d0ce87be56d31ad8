package mtdf

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/heuristic"
	"github.com/domino14/tictactoe/zobrist"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func fromRows(t *testing.T, turn board.Mark, rows ...string) *board.Board {
	table := zobrist.NewHashTable(len(rows), zobrist.NewSource(99))
	b, err := board.FromRows(rows, turn, table)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

// fullMinimax is a plain full-width minimax with the same terminal
// scoring as the solver and no cutoff.
func fullMinimax(b *board.Board, minimize bool, prevRow, prevCol, depth int, maxP, minP board.Mark) int {
	if _, ok := b.FindWinningCombo(prevRow, prevCol); ok {
		if minimize {
			return MaxScore - depth
		}
		return MinScore + depth
	}
	if b.IsFull() {
		return 0
	}
	best := MinScore
	mark := maxP
	if minimize {
		best = MaxScore
		mark = minP
	}
	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			if b.MarkAt(r, c) != board.Empty {
				continue
			}
			b.PlaceMarkUnchecked(r, c, mark)
			v := fullMinimax(b, !minimize, r, c, depth+1, maxP, minP)
			b.PlaceMarkUnchecked(r, c, board.Empty)
			if minimize {
				best = min(best, v)
			} else {
				best = max(best, v)
			}
		}
	}
	return best
}

// limitedMinimax is fullMinimax with the solver's heuristic cutoff at
// depth == cutoff.
func limitedMinimax(b *board.Board, e *heuristic.Evaluator, minimize bool, prevRow, prevCol, depth, cutoff int, maxP, minP board.Mark) int {
	if _, ok := b.FindWinningCombo(prevRow, prevCol); ok {
		if minimize {
			return MaxScore - depth
		}
		return MinScore + depth
	}
	if b.IsFull() {
		return 0
	}
	if depth == cutoff {
		return e.Evaluate(b, maxP) - e.Evaluate(b, minP)
	}
	best := MinScore
	mark := maxP
	if minimize {
		best = MaxScore
		mark = minP
	}
	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			if b.MarkAt(r, c) != board.Empty {
				continue
			}
			b.PlaceMarkUnchecked(r, c, mark)
			v := limitedMinimax(b, e, !minimize, r, c, depth+1, cutoff, maxP, minP)
			b.PlaceMarkUnchecked(r, c, board.Empty)
			if minimize {
				best = min(best, v)
			} else {
				best = max(best, v)
			}
		}
	}
	return best
}

func rootMinimax(b *board.Board) int {
	maxP, minP := b.Turn(), b.NextTurn()
	best := MinScore
	for r := 0; r < b.Size(); r++ {
		for c := 0; c < b.Size(); c++ {
			if b.MarkAt(r, c) != board.Empty {
				continue
			}
			b.PlaceMarkUnchecked(r, c, maxP)
			best = max(best, fullMinimax(b, true, r, c, 0, maxP, minP))
			b.PlaceMarkUnchecked(r, c, board.Empty)
		}
	}
	return best
}

func newSolver() *Solver {
	s := NewSolver()
	s.SetSearchTime(time.Minute)
	return s
}

func TestImmediateWin(t *testing.T) {
	is := is.New(t)
	b := fromRows(t, board.X, "XX.", "OO.", "...")
	res, err := newSolver().GuessNextMove(context.Background(), b)
	is.NoErr(err)
	is.Equal(res.Row, 0)
	is.Equal(res.Col, 2)
	is.Equal(res.Score, MaxScore)
	is.True(res.Solved)
}

func TestWinBeatsBlock(t *testing.T) {
	is := is.New(t)
	// O can block X at (0,2) or win at (1,2).
	b := fromRows(t, board.O, "XX.", "OO.", "X..")
	res, err := newSolver().GuessNextMove(context.Background(), b)
	is.NoErr(err)
	is.Equal(res.Row, 1)
	is.Equal(res.Col, 2)
	is.Equal(res.Score, MaxScore)
}

func TestSlowestLossIsPreferred(t *testing.T) {
	is := is.New(t)
	// X wins by force either way, but blocking at (0,2) delays it.
	b := fromRows(t, board.O, "XX.", "O..", "...")
	res, err := newSolver().GuessNextMove(context.Background(), b)
	is.NoErr(err)
	is.Equal(res.Row, 0)
	is.Equal(res.Col, 2)
	is.Equal(res.Score, MinScore+3)
	is.True(res.Solved)
}

func TestMatchesFullMinimax(t *testing.T) {
	positions := []struct {
		turn board.Mark
		rows []string
	}{
		{board.X, []string{"...", "...", "..."}},
		{board.O, []string{"...", ".X.", "..."}},
		{board.O, []string{"X..", "...", "..."}},
		{board.X, []string{"X..", ".O.", "..."}},
		{board.X, []string{"XO.", ".O.", "..X"}},
		{board.O, []string{"XOX", "...", "..."}},
		{board.X, []string{"O..", ".X.", "..O"}},
	}
	for _, p := range positions {
		b := fromRows(t, p.turn, p.rows...)
		want := rootMinimax(b)
		res, err := newSolver().GuessNextMove(context.Background(), b)
		assert.NoError(t, err)
		assert.True(t, res.Solved, "%v", p.rows)
		assert.Equal(t, want, res.Score, "%v", p.rows)

		// The recommended move must achieve that value.
		b.PlaceMarkUnchecked(res.Row, res.Col, p.turn)
		got := fullMinimax(b, true, res.Row, res.Col, 0, p.turn, p.turn.Opponent())
		b.PlaceMarkUnchecked(res.Row, res.Col, board.Empty)
		assert.Equal(t, want, got, "move (%d,%d) for %v", res.Row, res.Col, p.rows)
	}
}

func TestDeterministic(t *testing.T) {
	is := is.New(t)
	rows := []string{
		".....",
		".X...",
		"..O..",
		"...X.",
		".....",
	}
	run := func() Result {
		s := newSolver()
		s.SetMaxDepth(3)
		res, err := s.GuessNextMove(context.Background(), fromRows(t, board.O, rows...))
		is.NoErr(err)
		return res
	}
	r1, r2 := run(), run()
	is.Equal(r1.Row, r2.Row)
	is.Equal(r1.Col, r2.Col)
	is.Equal(r1.Score, r2.Score)
	is.Equal(r1.Depth, 3)
	is.Equal(r2.Depth, 3)
	is.Equal(r1.Nodes, r2.Nodes)
}

func TestBoardIsRestored(t *testing.T) {
	is := is.New(t)
	rows := []string{"X...", ".O..", "..X.", "...."}
	b := fromRows(t, board.O, rows...)
	hash := b.Hash()
	s := newSolver()
	s.SetMaxDepth(2)
	_, err := s.GuessNextMove(context.Background(), b)
	is.NoErr(err)
	is.Equal(b.Hash(), hash)
	is.Equal(b.Rows(), rows)
	is.Equal(b.EmptyCellCount(), 13)
	is.Equal(b.Turn(), board.O)
}

func TestFullBoard(t *testing.T) {
	is := is.New(t)
	b := fromRows(t, board.X, "XOX", "XOO", "OXX")
	_, err := newSolver().GuessNextMove(context.Background(), b)
	is.Equal(err, ErrNoMoves)
}

func TestCanceledSearchStillReturnsAMove(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := fromRows(t, board.X, "......", "......", "......", "......", "......", "......")
	res, err := newSolver().GuessNextMove(ctx, b)
	is.NoErr(err)
	// Only the first iteration runs.
	is.Equal(res.Depth, 1)
	is.True(b.InBounds(res.Row, res.Col))
	is.Equal(b.MarkAt(res.Row, res.Col), board.Empty)
}

func TestPoolIsRebuiltAfterDiscard(t *testing.T) {
	is := is.New(t)
	s := newSolver()
	s.SetMaxDepth(2)
	rows := []string{"X...", "....", "..O.", "...."}

	first, err := s.GuessNextMove(context.Background(), fromRows(t, board.X, rows...))
	is.NoErr(err)
	is.True(s.PoolSize() > 0)

	s.DiscardPool()
	is.Equal(s.PoolSize(), 0)
	second, err := s.GuessNextMove(context.Background(), fromRows(t, board.X, rows...))
	is.NoErr(err)
	is.Equal(first.Row, second.Row)
	is.Equal(first.Col, second.Col)
	is.Equal(first.Score, second.Score)

	// With no memory allowance the pool is dropped after every search.
	s.SetPoolMemoryFraction(0)
	third, err := s.GuessNextMove(context.Background(), fromRows(t, board.X, rows...))
	is.NoErr(err)
	is.Equal(s.PoolSize(), 0)
	is.Equal(third.Score, first.Score)
}

func TestSearchTimeBudget(t *testing.T) {
	is := is.New(t)
	s := NewSolver()
	s.SetSearchTime(time.Nanosecond)
	b := fromRows(t, board.X, "......", "......", "......", "......", "......", "......")
	res, err := s.GuessNextMove(context.Background(), b)
	is.NoErr(err)
	// The first iteration always completes; the budget stops the next one.
	is.Equal(res.Depth, 1)
	is.True(!res.Solved)
	is.Equal(b.MarkAt(res.Row, res.Col), board.Empty)
}

// Depth-capped searches report a move that achieves the reported score,
// including when the last null-window pass failed low.
func TestMoveMatchesCappedScore(t *testing.T) {
	positions := []struct {
		turn board.Mark
		rows []string
	}{
		{board.X, []string{"...", "...", "..."}},
		{board.O, []string{"...", ".X.", "..."}},
		{board.X, []string{"X..", ".O.", "..."}},
		{board.O, []string{"XOX", "...", "..."}},
		{board.X, []string{"....", "....", "....", "...."}},
		{board.O, []string{"....", ".X..", "....", "...."}},
		{board.X, []string{"X...", ".O..", "....", "...O"}},
		{board.O, []string{"X..X", ".O..", "..X.", "...."}},
	}
	e := heuristic.NewEvaluator()
	endedLow := 0
	for _, p := range positions {
		for depth := 1; depth <= 2; depth++ {
			b := fromRows(t, p.turn, p.rows...)
			s := newSolver()
			s.SetMaxDepth(depth)
			res, err := s.GuessNextMove(context.Background(), b)
			assert.NoError(t, err)
			if res.Solved {
				continue
			}
			if s.endedLow {
				endedLow++
			}
			b.PlaceMarkUnchecked(res.Row, res.Col, p.turn)
			got := limitedMinimax(b, e, true, res.Row, res.Col, 0, depth, p.turn, p.turn.Opponent())
			b.PlaceMarkUnchecked(res.Row, res.Col, board.Empty)
			assert.Equal(t, res.Score, got, "move (%d,%d) depth %d for %v", res.Row, res.Col, depth, p.rows)
		}
	}
	assert.Greater(t, endedLow, 0)
}
