package game

import (
	"fmt"

	"github.com/domino14/tictactoe/board"
)

type EventType int

const (
	EventGameStarted EventType = iota
	EventMarkPlaced
	EventGameFinished
)

func (t EventType) String() string {
	switch t {
	case EventGameStarted:
		return "game-started"
	case EventMarkPlaced:
		return "mark-placed"
	case EventGameFinished:
		return "game-finished"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event describes one change of game state. Every state-mutating call on
// a Game returns the events it produced; the caller consumes them
// synchronously. Only the fields relevant to Type are set.
type Event struct {
	Type   EventType
	Size   int
	Mark   board.Mark
	Row    int
	Col    int
	Result Result
	Combo  board.Combo
}

func (e Event) String() string {
	switch e.Type {
	case EventGameStarted:
		return fmt.Sprintf("%v size=%d", e.Type, e.Size)
	case EventMarkPlaced:
		return fmt.Sprintf("%v %v at (%d,%d)", e.Type, e.Mark, e.Row, e.Col)
	case EventGameFinished:
		if e.Result == ResultCombo {
			return fmt.Sprintf("%v %v %v", e.Type, e.Result, e.Combo)
		}
		return fmt.Sprintf("%v %v", e.Type, e.Result)
	}
	return e.Type.String()
}
