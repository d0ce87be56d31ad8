// Package game holds the rules of a tic-tac-toe match on an N x N board:
// turn order, move validation, and win/draw detection. A Game is either
// active or inactive; starting an active game or playing an inactive one
// is an error the caller must fix, not retry.
package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/board"
	"github.com/domino14/tictactoe/zobrist"
)

type Result int

const (
	ResultUndefined Result = iota
	ResultCanceled
	ResultDraw
	ResultCombo
)

func (r Result) String() string {
	switch r {
	case ResultUndefined:
		return "undefined"
	case ResultCanceled:
		return "canceled"
	case ResultDraw:
		return "draw"
	case ResultCombo:
		return "combo"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

var (
	ErrGameActive   = errors.New("attempt to start an active game")
	ErrGameInactive = errors.New("attempt to play an inactive game")
	ErrNotStarted   = errors.New("no game has been started")
	ErrOutOfBounds  = errors.New("cell is outside the board")
	ErrNoCombo      = errors.New("game did not finish with a combo")
)

// Game is the live state of a match. It is not safe for concurrent use;
// hand Snapshot() to anything that needs to read or search the position
// on another goroutine.
type Game struct {
	board   *board.Board
	started bool
	active  bool
	result  Result
	combo   board.Combo
}

// NewGame creates an inactive game whose hash tables are filled from src.
func NewGame(src zobrist.Source) *Game {
	return &Game{board: board.NewBoard(src)}
}

// Start begins a new game on a size x size board. X moves first unless
// swapFirstMark is set.
func (g *Game) Start(size int, swapFirstMark bool) (Event, error) {
	if g.active {
		return Event{}, ErrGameActive
	}
	first := board.X
	if swapFirstMark {
		first = board.O
	}
	if err := g.board.Reset(size, first); err != nil {
		return Event{}, err
	}
	g.started = true
	g.active = true
	g.result = ResultUndefined
	g.combo = board.Combo{}
	log.Debug().Int("size", size).Str("first", first.String()).Msg("game-started")
	return Event{Type: EventGameStarted, Size: size}, nil
}

// PlaceMark puts the current player's mark at (row, col). It returns false
// with no error if the cell is occupied. After a successful placement the
// game either finishes (combo or full board) or passes the turn.
func (g *Game) PlaceMark(row, col int) (bool, []Event, error) {
	if !g.active {
		return false, nil, ErrGameInactive
	}
	if !g.board.InBounds(row, col) {
		return false, nil, fmt.Errorf("(%d,%d): %w", row, col, ErrOutOfBounds)
	}
	if g.board.MarkAt(row, col) != board.Empty {
		return false, nil, nil
	}
	mark := g.board.Turn()
	g.board.PlaceMarkUnchecked(row, col, mark)
	evts := []Event{{Type: EventMarkPlaced, Mark: mark, Row: row, Col: col}}

	if combo, ok := g.board.FindWinningCombo(row, col); ok {
		g.combo = combo
		evts = append(evts, g.finish(ResultCombo)...)
	} else if g.board.IsFull() {
		evts = append(evts, g.finish(ResultDraw)...)
	} else {
		g.board.SwitchTurn()
	}
	return true, evts, nil
}

// Finish cancels the game. Finishing an inactive game does nothing.
func (g *Game) Finish() []Event {
	return g.finish(ResultCanceled)
}

func (g *Game) finish(result Result) []Event {
	if !g.active {
		return nil
	}
	g.active = false
	g.result = result
	log.Debug().Str("result", result.String()).Str("combo", g.combo.String()).Msg("game-finished")
	return []Event{{Type: EventGameFinished, Result: result, Combo: g.combo}}
}

// Snapshot returns an independent copy of the board that can be searched
// or mutated on another goroutine without affecting the game.
func (g *Game) Snapshot() *board.Board {
	return g.board.Copy()
}

// SnapshotInto copies the board into dst, reusing its storage.
func (g *Game) SnapshotInto(dst *board.Board) {
	dst.CopyFrom(g.board)
}

func (g *Game) Active() bool {
	return g.active
}

func (g *Game) Result() Result {
	return g.result
}

// Combo returns the winning run. It is only defined once the game has
// finished with ResultCombo.
func (g *Game) Combo() (board.Combo, error) {
	if g.result != ResultCombo {
		return board.Combo{}, ErrNoCombo
	}
	return g.combo, nil
}

// MarkAt returns the mark at (row, col) of the current or last game.
func (g *Game) MarkAt(row, col int) (board.Mark, error) {
	if !g.started {
		return board.Empty, ErrNotStarted
	}
	if !g.board.InBounds(row, col) {
		return board.Empty, fmt.Errorf("(%d,%d): %w", row, col, ErrOutOfBounds)
	}
	return g.board.MarkAt(row, col), nil
}

func (g *Game) CurrentTurn() board.Mark {
	return g.board.Turn()
}

func (g *Game) NextTurn() board.Mark {
	return g.board.NextTurn()
}

func (g *Game) Size() int {
	return g.board.Size()
}

func (g *Game) ComboSize() int {
	return g.board.ComboSize()
}

func (g *Game) EmptyCellCount() int {
	return g.board.EmptyCellCount()
}

func (g *Game) Hash() uint64 {
	return g.board.Hash()
}

// ToDisplayText renders the board followed by the game status.
func (g *Game) ToDisplayText() string {
	if !g.started {
		return "no game in progress\n"
	}
	s := g.board.ToDisplayText()
	switch {
	case g.active:
		s += fmt.Sprintf("%v to move\n", g.board.Turn())
	case g.result == ResultCombo:
		s += fmt.Sprintf("%v wins with %v\n", g.board.MarkAt(g.combo.StartRow, g.combo.StartCol), g.combo)
	default:
		s += fmt.Sprintf("game over: %v\n", g.result)
	}
	return s
}
