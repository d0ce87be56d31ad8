package board

import (
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/tictactoe/zobrist"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func newBoard(t *testing.T, size int) *Board {
	b := NewBoard(zobrist.NewSource(1234))
	if err := b.Reset(size, X); err != nil {
		t.Fatal(err)
	}
	return b
}

func TestResetInvariants(t *testing.T) {
	is := is.New(t)
	b := newBoard(t, 3)
	is.Equal(b.Size(), 3)
	is.Equal(b.EmptyCellCount(), 9)
	is.Equal(b.Hash(), uint64(0))
	is.Equal(b.Turn(), X)
	is.Equal(b.ComboSize(), 3)
	is.True(!b.IsFull())

	is.Equal(b.Reset(0, X), ErrInvalidSize)
}

func TestComboSizeIsCapped(t *testing.T) {
	is := is.New(t)
	b := newBoard(t, 6)
	is.Equal(b.ComboSize(), 5)
	b = newBoard(t, 15)
	is.Equal(b.ComboSize(), 5)
	b = newBoard(t, 4)
	is.Equal(b.ComboSize(), 4)
}

func TestHashTableKeptWhenShrinking(t *testing.T) {
	is := is.New(t)
	b := newBoard(t, 7)
	table := b.table
	is.NoErr(b.Reset(4, O))
	is.True(b.table == table)
	is.Equal(b.EmptyCellCount(), 16)
	is.NoErr(b.Reset(9, X))
	is.True(b.table != table)
	is.Equal(b.table.Capacity(), 9)
}

func TestResetClearsReusedGrid(t *testing.T) {
	is := is.New(t)
	b := newBoard(t, 5)
	b.PlaceMarkUnchecked(4, 4, X)
	b.PlaceMarkUnchecked(1, 1, O)
	is.NoErr(b.Reset(5, X))
	is.Equal(b.MarkAt(4, 4), Empty)
	is.Equal(b.MarkAt(1, 1), Empty)
	is.Equal(b.Hash(), uint64(0))
}

func TestHashRoundTrip(t *testing.T) {
	is := is.New(t)
	b := newBoard(t, 5)
	b.PlaceMarkUnchecked(2, 2, X)
	b.PlaceMarkUnchecked(0, 1, O)
	orig := b.Hash()
	origEmpty := b.EmptyCellCount()

	type change struct {
		row, col int
		prev     Mark
	}
	moves := []struct {
		row, col int
		mark     Mark
	}{
		{0, 0, X}, {4, 4, O}, {2, 2, O}, {0, 1, Empty}, {3, 1, X}, {0, 0, O},
	}
	var undo []change
	for _, m := range moves {
		undo = append(undo, change{m.row, m.col, b.MarkAt(m.row, m.col)})
		b.PlaceMarkUnchecked(m.row, m.col, m.mark)
	}
	is.True(b.Hash() != orig)
	for i := len(undo) - 1; i >= 0; i-- {
		b.PlaceMarkUnchecked(undo[i].row, undo[i].col, undo[i].prev)
	}
	is.Equal(b.Hash(), orig)
	is.Equal(b.EmptyCellCount(), origEmpty)
}

func TestEmptyCountStaysConsistent(t *testing.T) {
	is := is.New(t)
	b := newBoard(t, 3)
	b.PlaceMarkUnchecked(0, 0, X)
	b.PlaceMarkUnchecked(0, 0, O)
	is.Equal(b.EmptyCellCount(), 8)
	b.PlaceMarkUnchecked(0, 0, Empty)
	b.PlaceMarkUnchecked(0, 0, Empty)
	is.Equal(b.EmptyCellCount(), 9)
}

func TestHashIsPositionIndependentOfOrder(t *testing.T) {
	is := is.New(t)
	a := newBoard(t, 4)
	b := a.Copy()
	a.PlaceMarkUnchecked(0, 0, X)
	a.PlaceMarkUnchecked(1, 1, O)
	a.PlaceMarkUnchecked(2, 3, X)
	b.PlaceMarkUnchecked(2, 3, X)
	b.PlaceMarkUnchecked(0, 0, X)
	b.PlaceMarkUnchecked(1, 1, O)
	is.Equal(a.Hash(), b.Hash())
}

func TestFindWinningComboRow(t *testing.T) {
	is := is.New(t)
	b, err := FromRows([]string{
		"XXX",
		"O.O",
		"...",
	}, O, nil)
	is.NoErr(err)
	c, ok := b.FindWinningCombo(0, 1)
	is.True(ok)
	is.Equal(c, Combo{StartRow: 0, StartCol: 0, StopRow: 0, StopCol: 2})
	_, ok = b.FindWinningCombo(1, 0)
	is.True(!ok)
}

func TestFindWinningComboDirections(t *testing.T) {
	is := is.New(t)
	type testcase struct {
		rows     []string
		row, col int
		expected Combo
	}
	cases := []testcase{
		{[]string{"O..", "O..", "O.."}, 2, 0, Combo{0, 0, 2, 0}},
		{[]string{"X..", ".X.", "..X"}, 1, 1, Combo{0, 0, 2, 2}},
		{[]string{"..O", ".O.", "O.."}, 0, 2, Combo{0, 2, 2, 0}},
		{[]string{
			".....",
			"....X",
			"...X.",
			"..X..",
			".X...",
		}, 3, 2, Combo{}},
		{[]string{
			"....X",
			"...X.",
			"..X..",
			".X...",
			"X....",
		}, 3, 1, Combo{0, 4, 4, 0}},
	}
	for _, tc := range cases {
		b, err := FromRows(tc.rows, X, nil)
		is.NoErr(err)
		c, ok := b.FindWinningCombo(tc.row, tc.col)
		is.Equal(ok, tc.expected != Combo{})
		is.Equal(c, tc.expected)
	}
}

func TestComboRowSymmetry(t *testing.T) {
	is := is.New(t)
	b, err := FromRows([]string{
		"......",
		".XXXXX",
		"......",
		"......",
		"......",
		"......",
	}, O, nil)
	is.NoErr(err)
	first, ok := b.comboRow(1, 3)
	is.True(ok)
	for col := first.StartCol; col <= first.StopCol; col++ {
		c, ok := b.comboRow(1, col)
		is.True(ok)
		is.Equal(c, first)
	}
	// the longest run is reported even when it exceeds the combo size.
	b.PlaceMarkUnchecked(1, 0, X)
	c, ok := b.FindWinningCombo(1, 2)
	is.True(ok)
	is.Equal(c, Combo{1, 0, 1, 5})
}

func TestCopyIsIndependent(t *testing.T) {
	is := is.New(t)
	b := newBoard(t, 3)
	b.PlaceMarkUnchecked(1, 1, X)
	cp := b.Copy()
	is.Equal(cp.Hash(), b.Hash())
	is.Equal(cp.EmptyCellCount(), b.EmptyCellCount())
	is.True(cp.table != b.table)

	cp.PlaceMarkUnchecked(0, 0, O)
	is.Equal(b.MarkAt(0, 0), Empty)
	is.Equal(b.EmptyCellCount(), 8)
	is.True(cp.Hash() != b.Hash())

	cp.PlaceMarkUnchecked(0, 0, Empty)
	is.Equal(cp.Hash(), b.Hash())
}

func TestFromRowsErrors(t *testing.T) {
	is := is.New(t)
	_, err := FromRows([]string{"XX", "X"}, X, nil)
	is.True(err != nil)
	_, err = FromRows([]string{"X?", ".."}, X, nil)
	is.True(err != nil)
	_, err = FromRows(nil, X, nil)
	is.Equal(err, ErrInvalidSize)
	_, err = FromRows([]string{"...", "...", "..."}, X, zobrist.NewHashTable(2, zobrist.NewSource(1)))
	is.True(err != nil)
}

func TestRowsRoundTrip(t *testing.T) {
	is := is.New(t)
	rows := []string{"X.O", ".X.", "O.."}
	b, err := FromRows(rows, O, nil)
	is.NoErr(err)
	is.Equal(b.Rows(), rows)
	is.Equal(b.EmptyCellCount(), 5)
}
