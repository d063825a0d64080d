/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func markAll(c *Card, cells ...Cell) {
	for _, cell := range cells {
		c.mark(cell)
	}
}

func TestNewCardColumnsAndUniqueness(t *testing.T) {
	for seed := range int64(200) {
		card := NewCard(NewRand(seed))
		grid := card.Grid()

		seen := make(map[int]bool, Size*Size)
		for col := range Size {
			lo, hi := col*BandWidth+1, col*BandWidth+BandWidth
			for row := range Size {
				n := grid[col][row]
				require.GreaterOrEqual(t, n, lo, "seed %d col %d", seed, col)
				require.LessOrEqual(t, n, hi, "seed %d col %d", seed, col)
				require.False(t, seen[n], "seed %d: duplicate %d", seed, n)
				seen[n] = true
			}
		}
		require.Len(t, seen, Size*Size)
	}
}

func TestFreeCellAlwaysMarked(t *testing.T) {
	card := NewCard(NewRand(1))
	require.True(t, card.IsMarked(FreeCell))
	require.Equal(t, []Cell{FreeCell}, card.Marked())

	card.ToggleMark(FreeCell)
	assert.True(t, card.IsMarked(FreeCell), "free cell must survive a toggle")

	markAll(card, Cell{0, 0}, Cell{4, 4})
	card.ClearMarks()
	assert.Equal(t, []Cell{FreeCell}, card.Marked())
}

func TestToggleMark(t *testing.T) {
	card := NewCard(NewRand(2))
	cell := Cell{Col: 1, Row: 3}

	card.ToggleMark(cell)
	assert.True(t, card.IsMarked(cell))

	card.ToggleMark(cell)
	assert.False(t, card.IsMarked(cell))
}

func TestFindPosition(t *testing.T) {
	card := NewCard(NewRand(3))
	grid := card.Grid()

	for col := range Size {
		for row := range Size {
			cell, ok := card.FindPosition(grid[col][row])
			require.True(t, ok)
			assert.Equal(t, Cell{Col: col, Row: row}, cell)
		}
	}

	_, ok := card.FindPosition(0)
	assert.False(t, ok)
	_, ok = card.FindPosition(MaxNumber + 1)
	assert.False(t, ok)
}

func TestMarkedIsSorted(t *testing.T) {
	card := NewCard(NewRand(4))
	markAll(card, Cell{4, 0}, Cell{0, 3}, Cell{0, 1}, Cell{3, 3})

	assert.Equal(t, []Cell{{0, 1}, {0, 3}, {2, 2}, {3, 3}, {4, 0}}, card.Marked())
}

func TestCheckBingoLines(t *testing.T) {
	var lines [][]Cell
	for i := range Size {
		var col, row []Cell
		for j := range Size {
			col = append(col, Cell{Col: i, Row: j})
			row = append(row, Cell{Col: j, Row: i})
		}
		lines = append(lines, col, row)
	}
	lines = append(lines,
		[]Cell{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 4}},
		[]Cell{{0, 4}, {1, 3}, {2, 2}, {3, 1}, {4, 0}},
	)
	require.Len(t, lines, 12)

	for _, line := range lines {
		card := NewCard(NewRand(5))
		require.False(t, card.CheckBingo(), "fresh card")

		markAll(card, line[:len(line)-1]...)
		if line[len(line)-1] != FreeCell {
			assert.False(t, card.CheckBingo(), "incomplete line %v", line)
		}

		markAll(card, line[len(line)-1])
		assert.True(t, card.CheckBingo(), "line %v", line)
	}
}

func TestCheckBingoScattered(t *testing.T) {
	card := NewCard(NewRand(6))
	markAll(card, Cell{0, 0}, Cell{1, 2}, Cell{3, 4}, Cell{4, 1}, Cell{2, 0}, Cell{1, 1}, Cell{3, 3})
	assert.False(t, card.CheckBingo())
}

func TestLetter(t *testing.T) {
	assert.Equal(t, "B", Letter(1))
	assert.Equal(t, "B", Letter(15))
	assert.Equal(t, "I", Letter(16))
	assert.Equal(t, "N", Letter(45))
	assert.Equal(t, "G", Letter(46))
	assert.Equal(t, "O", Letter(75))
	assert.Equal(t, "", Letter(0))
	assert.Equal(t, "", Letter(76))
}
