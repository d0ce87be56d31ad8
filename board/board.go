package board

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/domino14/tictactoe/zobrist"
)

// MaxComboSize caps the length of a winning run so that large boards stay
// tactically interesting.
const MaxComboSize = 5

var ErrInvalidSize = errors.New("board size must be at least 1")

// Board is the grid, turn and position hash of a game. It has value
// semantics: Copy produces a board that shares nothing with the original,
// and nothing outside the board is ever notified of a change. The search
// mutates a Board in place and undoes every trial move before returning.
type Board struct {
	grid       [][]Mark
	size       int
	comboSize  int
	emptyCells int
	turn       Mark

	hash  uint64
	table *zobrist.HashTable
	src   zobrist.Source
}

// NewBoard returns an unsized board. src fills the hash table whenever a
// larger one is needed; a nil src draws from system entropy.
func NewBoard(src zobrist.Source) *Board {
	return &Board{src: src}
}

// Reset clears the board to size x size, all empty, with first to move.
// Storage and the hash table are reused when they are large enough.
func (b *Board) Reset(size int, first Mark) error {
	if size < 1 {
		return ErrInvalidSize
	}
	b.size = size
	b.comboSize = min(size, MaxComboSize)
	if len(b.grid) < size {
		b.grid = make([][]Mark, size)
		for i := range b.grid {
			b.grid[i] = make([]Mark, size)
		}
	} else {
		for i := 0; i < size; i++ {
			clear(b.grid[i][:size])
		}
	}
	b.emptyCells = size * size
	if b.table == nil || b.table.Capacity() < size {
		if b.src == nil {
			b.src = zobrist.NewSource(0)
		}
		log.Debug().Int("capacity", size).Msg("creating-zobrist-table")
		b.table = zobrist.NewHashTable(size, b.src)
	}
	b.hash = 0
	b.turn = first
	return nil
}

// SetHashTable installs a prebuilt table. It must be at least as large as
// the board; the hash is recomputed from the current grid.
func (b *Board) SetHashTable(t *zobrist.HashTable) {
	b.table = t
	b.hash = 0
	for r := 0; r < b.size; r++ {
		for c := 0; c < b.size; c++ {
			b.hash ^= t.Key(uint8(b.grid[r][c]), r, c)
		}
	}
}

func (b *Board) Size() int {
	return b.size
}

func (b *Board) ComboSize() int {
	return b.comboSize
}

func (b *Board) EmptyCellCount() int {
	return b.emptyCells
}

func (b *Board) Hash() uint64 {
	return b.hash
}

func (b *Board) Turn() Mark {
	return b.turn
}

func (b *Board) NextTurn() Mark {
	return b.turn.Opponent()
}

func (b *Board) SwitchTurn() {
	b.turn = b.turn.Opponent()
}

func (b *Board) MarkAt(row, col int) Mark {
	return b.grid[row][col]
}

// InBounds reports whether (row, col) is a cell of the board.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.size && col >= 0 && col < b.size
}

func (b *Board) IsFull() bool {
	return b.emptyCells == 0
}

// PlaceMarkUnchecked sets (row, col) to mark with no turn or activity
// checks. Placing Empty undoes a trial move.
func (b *Board) PlaceMarkUnchecked(row, col int, mark Mark) {
	old := b.grid[row][col]
	b.hash ^= b.table.Key(uint8(old), row, col)
	b.grid[row][col] = mark
	b.hash ^= b.table.Key(uint8(mark), row, col)
	if old == Empty && mark != Empty {
		b.emptyCells--
	} else if old != Empty && mark == Empty {
		b.emptyCells++
	}
}

// FindWinningCombo scans the row, the column, the backslash diagonal and
// the slash diagonal through (row, col), in that order, for a contiguous
// run of at least ComboSize identical marks containing the cell.
func (b *Board) FindWinningCombo(row, col int) (Combo, bool) {
	if c, ok := b.comboRow(row, col); ok {
		return c, true
	}
	if c, ok := b.comboCol(row, col); ok {
		return c, true
	}
	if c, ok := b.comboBackslash(row, col); ok {
		return c, true
	}
	return b.comboSlash(row, col)
}

func (b *Board) comboRow(row, col int) (Combo, bool) {
	sample := b.grid[row][col]
	left := 0
	for i := 1; i <= col && b.grid[row][col-i] == sample; i++ {
		left++
	}
	right := 0
	for i := 1; col+i < b.size && b.grid[row][col+i] == sample; i++ {
		right++
	}
	if left+right+1 < b.comboSize {
		return Combo{}, false
	}
	return Combo{StartRow: row, StartCol: col - left, StopRow: row, StopCol: col + right}, true
}

func (b *Board) comboCol(row, col int) (Combo, bool) {
	sample := b.grid[row][col]
	top := 0
	for i := 1; i <= row && b.grid[row-i][col] == sample; i++ {
		top++
	}
	bottom := 0
	for i := 1; row+i < b.size && b.grid[row+i][col] == sample; i++ {
		bottom++
	}
	if top+bottom+1 < b.comboSize {
		return Combo{}, false
	}
	return Combo{StartRow: row - top, StartCol: col, StopRow: row + bottom, StopCol: col}, true
}

// backslash: top-left to bottom-right.
func (b *Board) comboBackslash(row, col int) (Combo, bool) {
	sample := b.grid[row][col]
	top := 0
	for i := 1; i <= row && i <= col && b.grid[row-i][col-i] == sample; i++ {
		top++
	}
	bottom := 0
	for i := 1; row+i < b.size && col+i < b.size && b.grid[row+i][col+i] == sample; i++ {
		bottom++
	}
	if top+bottom+1 < b.comboSize {
		return Combo{}, false
	}
	return Combo{StartRow: row - top, StartCol: col - top, StopRow: row + bottom, StopCol: col + bottom}, true
}

// slash: top-right to bottom-left.
func (b *Board) comboSlash(row, col int) (Combo, bool) {
	sample := b.grid[row][col]
	top := 0
	for i := 1; i <= row && col+i < b.size && b.grid[row-i][col+i] == sample; i++ {
		top++
	}
	bottom := 0
	for i := 1; row+i < b.size && i <= col && b.grid[row+i][col-i] == sample; i++ {
		bottom++
	}
	if top+bottom+1 < b.comboSize {
		return Combo{}, false
	}
	return Combo{StartRow: row - top, StartCol: col + top, StopRow: row + bottom, StopCol: col - bottom}, true
}

// CopyFrom makes b an independent copy of other, reusing b's storage where
// it can. The hash table is copied, never shared.
func (b *Board) CopyFrom(other *Board) {
	b.size = other.size
	b.comboSize = other.comboSize
	b.emptyCells = other.emptyCells
	b.turn = other.turn
	b.hash = other.hash
	if len(b.grid) < other.size {
		b.grid = make([][]Mark, other.size)
		for i := range b.grid {
			b.grid[i] = make([]Mark, other.size)
		}
	}
	for i := 0; i < other.size; i++ {
		copy(b.grid[i][:other.size], other.grid[i][:other.size])
	}
	if other.table != nil {
		b.table = other.table.Copy()
	}
}

// Copy returns a fully independent board.
func (b *Board) Copy() *Board {
	cp := &Board{}
	cp.CopyFrom(b)
	return cp
}
