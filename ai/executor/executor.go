// Package executor runs move searches off the caller's goroutine. It owns
// the private board copy each search works on, so the live game can keep
// being read while a search is in flight.
package executor

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/mtdf"
)

var ErrSearchInFlight = errors.New("a search is already in flight")

// Result is a finished search. A Canceled result must not be applied.
type Result struct {
	mtdf.Result
	Canceled bool
	Err      error
}

type Executor struct {
	mu      sync.Mutex
	solver  *mtdf.Solver
	snap    *board.Board
	busy    bool
	cancel  context.CancelFunc
	results chan Result
	wg      sync.WaitGroup
}

func New(solver *mtdf.Solver) *Executor {
	return &Executor{
		solver:  solver,
		snap:    &board.Board{},
		results: make(chan Result, 1),
	}
}

// Results delivers the outcome of each asynchronous search. Only the
// latest unread result is kept.
func (e *Executor) Results() <-chan Result {
	return e.results
}

// Busy reports whether a search is in flight.
func (e *Executor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// GuessNextMoveAsync copies b and starts searching it. b may be changed as
// soon as this returns.
func (e *Executor) GuessNextMoveAsync(ctx context.Context, b *board.Board) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return ErrSearchInFlight
	}
	e.busy = true
	e.snap.CopyFrom(b)
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()
		res := e.run(ctx)

		e.mu.Lock()
		defer e.mu.Unlock()
		e.busy = false
		e.cancel = nil
		select {
		case stale := <-e.results:
			log.Debug().Str("result", stale.String()).Msg("dropping-unread-result")
		default:
		}
		e.results <- res
	}()
	return nil
}

// GuessNextMove searches a copy of b on the calling goroutine.
func (e *Executor) GuessNextMove(ctx context.Context, b *board.Board) (Result, error) {
	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return Result{}, ErrSearchInFlight
	}
	e.busy = true
	e.snap.CopyFrom(b)
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.wg.Add(1)
	e.mu.Unlock()
	defer e.wg.Done()

	res := e.run(ctx)
	cancel()

	e.mu.Lock()
	e.busy = false
	e.cancel = nil
	e.mu.Unlock()
	return res, res.Err
}

func (e *Executor) run(ctx context.Context) Result {
	r, err := e.solver.GuessNextMove(ctx, e.snap)
	res := Result{Result: r, Err: err}
	if ctx.Err() != nil {
		res.Canceled = true
	}
	log.Debug().Str("result", r.String()).Bool("canceled", res.Canceled).Err(err).Msg("search-finished")
	return res
}

// Cancel asks the in-flight search to stop after its current deepening
// iteration. Its result will be marked Canceled.
func (e *Executor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Close cancels any search in flight, asynchronous or not, and waits for
// it to finish.
func (e *Executor) Close() {
	e.Cancel()
	e.wg.Wait()
}
