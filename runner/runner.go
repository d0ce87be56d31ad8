// Package runner orchestrates a session of games between a human and the
// engine (or two humans): whose turn it is, the engine's moves, and the
// running score.
package runner

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tictactoe/ai/executor"
	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/game"
	"github.com/domino14/tictactoe/mtdf"
	"github.com/domino14/tictactoe/zobrist"
)

var (
	ErrNotYourTurn = errors.New("it is the engine's turn")
	ErrNotAITurn   = errors.New("it is not the engine's turn")
)

type GameRunner struct {
	cfg  *config.Config
	opts GameOptions
	game *game.Game
	exec *executor.Executor

	aiTurn bool
	xScore int
	oScore int
}

func NewGameRunner(cfg *config.Config, opts GameOptions) (*GameRunner, error) {
	opts.SetDefaults(cfg)
	if err := opts.Validate(cfg); err != nil {
		return nil, err
	}
	solver := mtdf.NewSolver()
	solver.SetSearchTime(cfg.GetDuration(config.ConfigSearchTime))
	solver.SetPoolMemoryFraction(cfg.GetFloat64(config.ConfigNodePoolMemoryFraction))
	return &GameRunner{
		cfg:  cfg,
		opts: opts,
		game: game.NewGame(zobrist.NewSource(cfg.GetInt64(config.ConfigHashSeed))),
		exec: executor.New(solver),
	}, nil
}

func (r *GameRunner) Options() GameOptions {
	return r.opts
}

// SetOption changes an option. Size, start order and marks take effect at
// the next StartGame; turning the engine off takes effect immediately.
func (r *GameRunner) SetOption(name, value string) error {
	if err := r.opts.Set(r.cfg, name, value); err != nil {
		return err
	}
	if !r.opts.AIEnabled {
		r.aiTurn = false
	}
	return nil
}

func (r *GameRunner) Game() *game.Game {
	return r.game
}

// AITurn reports whether the engine is to move.
func (r *GameRunner) AITurn() bool {
	return r.aiTurn
}

// StartGame finishes any game in progress and starts a new one. If the
// engine moves first it opens on a random cell.
func (r *GameRunner) StartGame() ([]game.Event, error) {
	evts := r.FinishGame()
	evt, err := r.game.Start(r.opts.Size, r.opts.SwapMarks)
	if err != nil {
		return evts, err
	}
	evts = append(evts, evt)

	r.aiTurn = r.opts.AIEnabled && r.opts.AIStarts
	if r.aiTurn {
		row, col := frand.Intn(r.opts.Size), frand.Intn(r.opts.Size)
		log.Debug().Int("row", row).Int("col", col).Msg("random-first-move")
		more, err := r.setMark(row, col, false)
		if err != nil {
			return evts, err
		}
		evts = append(evts, more...)
	}
	return evts, nil
}

// FinishGame cancels any search and the game in progress.
func (r *GameRunner) FinishGame() []game.Event {
	if !r.game.Active() {
		return nil
	}
	r.exec.Cancel()
	r.aiTurn = false
	return r.handle(r.game.Finish())
}

// PlayHuman places the current mark for the human player. It returns
// false if the cell is taken.
func (r *GameRunner) PlayHuman(row, col int) (bool, []game.Event, error) {
	if r.game.Active() && r.aiTurn {
		return false, nil, ErrNotYourTurn
	}
	evts, err := r.setMark(row, col, true)
	return len(evts) > 0, evts, err
}

// PlayAI searches the current position and plays the engine's move. A
// canceled search plays nothing.
func (r *GameRunner) PlayAI(ctx context.Context) (executor.Result, []game.Event, error) {
	if !r.game.Active() {
		return executor.Result{}, nil, game.ErrGameInactive
	}
	if !r.aiTurn {
		return executor.Result{}, nil, ErrNotAITurn
	}
	res, err := r.exec.GuessNextMove(ctx, r.game.Snapshot())
	if err != nil {
		return res, nil, err
	}
	if res.Canceled {
		log.Info().Msg("search-canceled")
		return res, nil, nil
	}
	evts, err := r.setMark(res.Row, res.Col, false)
	return res, evts, err
}

// Hint searches for the best move for whoever is on turn without playing
// it.
func (r *GameRunner) Hint(ctx context.Context) (executor.Result, error) {
	if !r.game.Active() {
		return executor.Result{}, game.ErrGameInactive
	}
	return r.exec.GuessNextMove(ctx, r.game.Snapshot())
}

func (r *GameRunner) setMark(row, col int, fromUser bool) ([]game.Event, error) {
	ok, evts, err := r.game.PlaceMark(row, col)
	if err != nil || !ok {
		return nil, err
	}
	if r.game.Active() && r.opts.AIEnabled {
		r.aiTurn = fromUser
	}
	if !r.game.Active() {
		r.aiTurn = false
	}
	return r.handle(evts), nil
}

// handle updates the score from a game's events and passes them on.
func (r *GameRunner) handle(evts []game.Event) []game.Event {
	for _, e := range evts {
		if e.Type != game.EventGameFinished || e.Result != game.ResultCombo {
			continue
		}
		winner, err := r.game.MarkAt(e.Combo.StartRow, e.Combo.StartCol)
		if err != nil {
			continue
		}
		switch winner {
		case board.X:
			r.xScore++
		case board.O:
			r.oScore++
		}
		log.Debug().Str("winner", winner.String()).Int("x", r.xScore).Int("o", r.oScore).Msg("score-updated")
	}
	return evts
}

func (r *GameRunner) Score() (x, o int) {
	return r.xScore, r.oScore
}

func (r *GameRunner) ClearScore() {
	r.xScore, r.oScore = 0, 0
}

// Replay returns events that rebuild the current state from scratch: the
// start, every mark in row-major order, and the finish if there was one.
func (r *GameRunner) Replay() []game.Event {
	g := r.game
	if !g.Active() && g.Result() == game.ResultUndefined {
		return nil
	}
	evts := []game.Event{{Type: game.EventGameStarted, Size: g.Size()}}
	for row := 0; row < g.Size(); row++ {
		for col := 0; col < g.Size(); col++ {
			m, _ := g.MarkAt(row, col)
			if m != board.Empty {
				evts = append(evts, game.Event{Type: game.EventMarkPlaced, Mark: m, Row: row, Col: col})
			}
		}
	}
	if !g.Active() {
		combo, _ := g.Combo()
		evts = append(evts, game.Event{Type: game.EventGameFinished, Result: g.Result(), Combo: combo})
	}
	return evts
}

// Close stops any search in flight.
func (r *GameRunner) Close() {
	r.exec.Close()
}
