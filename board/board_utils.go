package board

import (
	"fmt"
	"strings"

	"github.com/domino14/tictactoe/zobrist"
)

// ToDisplayText renders the board with 0-based row and column labels.
func (b *Board) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("    ")
	for c := 0; c < b.size; c++ {
		fmt.Fprintf(&sb, "%-3d", c)
	}
	sb.WriteString("\n")
	sb.WriteString("   " + strings.Repeat("-", b.size*3+1) + "\n")
	for r := 0; r < b.size; r++ {
		fmt.Fprintf(&sb, "%2d| ", r)
		for c := 0; c < b.size; c++ {
			sb.WriteString(b.grid[r][c].String() + "  ")
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("   " + strings.Repeat("-", b.size*3+1) + "\n")
	return "\n" + sb.String()
}

// Rows returns the board as one string per row, using '.', 'X' and 'O'.
func (b *Board) Rows() []string {
	rows := make([]string, b.size)
	for r := 0; r < b.size; r++ {
		var sb strings.Builder
		for c := 0; c < b.size; c++ {
			sb.WriteString(b.grid[r][c].String())
		}
		rows[r] = sb.String()
	}
	return rows
}

// FromRows builds a board from rows of '.', 'X' and 'O' characters with
// turn to move. A nil table is built from system entropy.
func FromRows(rows []string, turn Mark, table *zobrist.HashTable) (*Board, error) {
	size := len(rows)
	if size == 0 {
		return nil, ErrInvalidSize
	}
	if table != nil && table.Capacity() < size {
		return nil, fmt.Errorf("hash table capacity %d is smaller than board size %d",
			table.Capacity(), size)
	}
	b := &Board{table: table}
	if err := b.Reset(size, turn); err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", r, len(row), size)
		}
		for c := 0; c < size; c++ {
			m, err := MarkFromString(row[c : c+1])
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", r, c, err)
			}
			if m != Empty {
				b.PlaceMarkUnchecked(r, c, m)
			}
		}
	}
	return b, nil
}
