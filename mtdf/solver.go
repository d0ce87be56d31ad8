// Package mtdf recommends tic-tac-toe moves with an iteratively deepened
// MTD(f) search: repeated null-window alpha-beta searches over a
// transposition table, cut off with a heuristic evaluation.
package mtdf

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/heuristic"
)

const (
	DefaultSearchTime         = time.Second
	DefaultPoolMemoryFraction = 0.05
)

var ErrNoMoves = errors.New("board has no empty cells")

// Result is the outcome of the last completed deepening iteration.
type Result struct {
	Row   int
	Col   int
	Score int
	// Depth is the cutoff of the last completed iteration. Searched plies
	// are one more than that.
	Depth int
	// Solved is set when the last iteration never hit the depth cutoff,
	// so Score is the exact game value.
	Solved  bool
	Nodes   uint64
	Elapsed time.Duration
}

func (r Result) String() string {
	return fmt.Sprintf("(%d,%d) score=%d depth=%d solved=%v nodes=%d elapsed=%v",
		r.Row, r.Col, r.Score, r.Depth, r.Solved, r.Nodes, r.Elapsed)
}

// Solver runs one search at a time. It keeps its transposition table and
// node pool between searches unless they grow past the memory budget.
type Solver struct {
	searchTime         time.Duration
	maxDepthCap        int
	poolMemoryFraction float64

	ttable *TranspositionTable
	eval   *heuristic.Evaluator

	b         *board.Board
	maxPlayer board.Mark
	minPlayer board.Mark
	maxDepth  int
	touched   bool
	guessRow  int
	guessCol  int
	rootRow   int
	rootCol   int
	// endedLow is set when the last mtdf call finished on a pass that
	// failed low, leaving rootRow/rootCol unrelated to the result.
	endedLow bool

	nodes atomic.Uint64
}

func NewSolver() *Solver {
	return &Solver{
		searchTime:         DefaultSearchTime,
		poolMemoryFraction: DefaultPoolMemoryFraction,
		eval:               heuristic.NewEvaluator(),
	}
}

// SetSearchTime sets the wall-clock budget. Iterations are never
// interrupted, so a search may overrun it by up to one iteration.
func (s *Solver) SetSearchTime(d time.Duration) {
	s.searchTime = d
}

// SetMaxDepth caps the deepening loop. 0 means no cap.
func (s *Solver) SetMaxDepth(d int) {
	s.maxDepthCap = d
}

// SetPoolMemoryFraction sets the share of system memory the pool may
// retain between searches.
func (s *Solver) SetPoolMemoryFraction(f float64) {
	s.poolMemoryFraction = f
}

// DiscardPool drops the transposition table and its pool. The next
// search builds new ones.
func (s *Solver) DiscardPool() {
	s.ttable = nil
}

// PoolSize is the number of nodes retained for the next search.
func (s *Solver) PoolSize() int {
	if s.ttable == nil {
		return 0
	}
	return s.ttable.pool.Len()
}

// GuessNextMove searches for the best move for the player on turn in b.
// b is modified during the search and restored before returning, so
// callers should pass a private copy. ctx is checked between deepening
// iterations; a canceled search still returns the last completed
// iteration's move.
func (s *Solver) GuessNextMove(ctx context.Context, b *board.Board) (Result, error) {
	if b.IsFull() {
		return Result{}, ErrNoMoves
	}
	tstart := time.Now()
	s.b = b
	s.maxPlayer = b.Turn()
	s.minPlayer = b.NextTurn()
	s.nodes.Store(0)
	if s.ttable == nil {
		log.Debug().Msg("creating-transposition-table")
		s.ttable = NewTranspositionTable()
	}
	defer s.releasePool()

	g := errgroup.Group{}
	done := make(chan struct{})
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := s.nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})

	var res Result
	g.Go(func() error {
		defer close(done)
		res = s.iterativelyDeepen(ctx, tstart)
		return nil
	})
	err := g.Wait()

	res.Nodes = s.nodes.Load()
	res.Elapsed = time.Since(tstart)
	log.Debug().
		Uint64("ttable-created", s.ttable.created).
		Uint64("ttable-lookups", s.ttable.lookups).
		Uint64("ttable-hits", s.ttable.hits).
		Uint64("nodes", res.Nodes).
		Int("depth", res.Depth).
		Bool("solved", res.Solved).
		Int("score", res.Score).
		Float64("time-elapsed-sec", res.Elapsed.Seconds()).
		Msg("search-returning")
	return res, err
}

func (s *Solver) iterativelyDeepen(ctx context.Context, tstart time.Time) Result {
	var res Result
	firstGuess := 0
	for depth := 1; ; depth++ {
		log.Debug().Int("depth", depth).Int("first-guess", firstGuess).Msg("deepening-iteratively")
		s.maxDepth = depth
		s.touched = false
		s.ttable.SetIteration(depth)

		firstGuess = s.mtdf(firstGuess)
		res = Result{Row: s.guessRow, Col: s.guessCol, Score: firstGuess, Depth: depth}

		if !s.touched {
			res.Solved = true
			return res
		}
		if ctx.Err() != nil {
			log.Debug().Err(ctx.Err()).Int("depth", depth).Msg("search-interrupted")
			return res
		}
		if time.Since(tstart) >= s.searchTime {
			return res
		}
		if s.maxDepthCap > 0 && depth >= s.maxDepthCap {
			return res
		}
	}
}

// mtdf converges on the minimax value at the current depth with
// null-window searches around firstGuess. The move it leaves in
// guessRow/guessCol comes from the last pass that failed high, which is
// the pass that proved the final value.
func (s *Solver) mtdf(firstGuess int) int {
	g := firstGuess
	upperBound := MaxScore
	lowerBound := MinScore
	for lowerBound < upperBound {
		beta := g
		if g == lowerBound {
			beta = g + 1
		}
		g = s.root(beta-1, beta)
		s.endedLow = g < beta
		if s.endedLow {
			upperBound = g
		} else {
			lowerBound = g
			s.guessRow, s.guessCol = s.rootRow, s.rootCol
		}
	}
	return g
}

func (s *Solver) releasePool() {
	s.ttable.Reset()
	limit := s.poolMemoryFraction * float64(memory.TotalMemory())
	if retained := s.ttable.RetainedBytes(); float64(retained) > limit {
		log.Debug().Uint64("retained-bytes", retained).Float64("limit-bytes", limit).
			Msg("discarding-node-pool")
		s.ttable = nil
	}
	s.b = nil
}
