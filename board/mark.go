package board

import "fmt"

// Mark is the content of a single cell. Empty must stay the zero value:
// the hash table layer for it is all zeros.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

func (m Mark) String() string {
	switch m {
	case Empty:
		return "."
	case X:
		return "X"
	case O:
		return "O"
	}
	return fmt.Sprintf("Mark(%d)", uint8(m))
}

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	}
	return Empty
}

// MarkFromString parses "X", "O" (either case) or "." / "" for empty.
func MarkFromString(s string) (Mark, error) {
	switch s {
	case "X", "x":
		return X, nil
	case "O", "o":
		return O, nil
	case ".", "", "-":
		return Empty, nil
	}
	return Empty, fmt.Errorf("there is no mark %q", s)
}

// Combo is the inclusive extent of a winning run of marks.
type Combo struct {
	StartRow int
	StartCol int
	StopRow  int
	StopCol  int
}

func (c Combo) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", c.StartRow, c.StartCol, c.StopRow, c.StopCol)
}
