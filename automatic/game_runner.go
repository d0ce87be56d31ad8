package automatic

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/config"
	"github.com/domino14/tictactoe/game"
	"github.com/domino14/tictactoe/mtdf"
	"github.com/domino14/tictactoe/zobrist"
)

// GameRunner plays the engine against itself. Each side has its own
// solver so their tables never mix.
type GameRunner struct {
	game    *game.Game
	solvers [2]*mtdf.Solver
	snap    *board.Board
}

// GameRecord is what autoplay keeps from one finished game.
type GameRecord struct {
	Result game.Result
	Winner board.Mark
	Moves  int
	// Depths is the cutoff depth reached on each engine move.
	Depths []int
	Solved int
}

func NewGameRunner(cfg *config.Config, maxDepth int, searchTime time.Duration) *GameRunner {
	r := &GameRunner{
		game: game.NewGame(zobrist.NewSource(cfg.GetInt64(config.ConfigHashSeed))),
		snap: &board.Board{},
	}
	for i := range r.solvers {
		s := mtdf.NewSolver()
		s.SetSearchTime(searchTime)
		s.SetMaxDepth(maxDepth)
		s.SetPoolMemoryFraction(cfg.GetFloat64(config.ConfigNodePoolMemoryFraction))
		r.solvers[i] = s
	}
	return r
}

// PlayGame plays one game on a size x size board. The first mark goes on
// a random cell so that repeated games differ. A game that ends in an
// error is finished before returning, so the runner can play again.
func (r *GameRunner) PlayGame(ctx context.Context, size int) (*GameRecord, error) {
	if _, err := r.game.Start(size, false); err != nil {
		return nil, err
	}
	rec, err := r.play(ctx, size)
	if err != nil {
		r.game.Finish()
		return nil, err
	}
	log.Debug().Str("result", rec.Result.String()).Str("winner", rec.Winner.String()).
		Int("moves", rec.Moves).Msg("game-over")
	return rec, nil
}

func (r *GameRunner) play(ctx context.Context, size int) (*GameRecord, error) {
	rec := &GameRecord{}
	_, evts, err := r.game.PlaceMark(frand.Intn(size), frand.Intn(size))
	if err != nil {
		return nil, err
	}
	rec.Moves++
	r.record(rec, evts)

	for side := 1; r.game.Active(); side = 1 - side {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.game.SnapshotInto(r.snap)
		res, err := r.solvers[side].GuessNextMove(ctx, r.snap)
		if err != nil {
			return nil, err
		}
		// A canceled search still returns a move; it is not played.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec.Depths = append(rec.Depths, res.Depth)
		if res.Solved {
			rec.Solved++
		}
		ok, evts, err := r.game.PlaceMark(res.Row, res.Col)
		if err != nil {
			return nil, err
		}
		if !ok {
			log.Error().Int("row", res.Row).Int("col", res.Col).Msg("engine-picked-occupied-cell")
			r.record(rec, r.game.Finish())
			break
		}
		rec.Moves++
		r.record(rec, evts)
	}
	return rec, nil
}

func (r *GameRunner) record(rec *GameRecord, evts []game.Event) {
	for _, e := range evts {
		if e.Type != game.EventGameFinished {
			continue
		}
		rec.Result = e.Result
		if e.Result == game.ResultCombo {
			rec.Winner, _ = r.game.MarkAt(e.Combo.StartRow, e.Combo.StartCol)
		}
	}
}

func (r *GameRunner) ToDisplayText() string {
	return r.game.ToDisplayText()
}
