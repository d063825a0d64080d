/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

import (
	"math/rand/v2"
	"slices"
)

const (
	Size      = 5
	BandWidth = 15
	MaxNumber = Size * BandWidth
)

// Cell is a grid coordinate, column first.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// FreeCell is the permanently marked center square.
var FreeCell = Cell{Col: 2, Row: 2}

// Card is a player's 5x5 grid plus the cells they have marked.
type Card struct {
	grid   [Size][Size]int
	marked map[Cell]struct{}
}

func NewCard(rng *rand.Rand) *Card {
	c := &Card{grid: generate(rng)}
	c.ClearMarks()
	return c
}

// generate fills column c with five distinct numbers from [15c+1, 15c+15].
func generate(rng *rand.Rand) [Size][Size]int {
	var grid [Size][Size]int
	for col := range Size {
		perm := rng.Perm(BandWidth)
		for row := range Size {
			grid[col][row] = col*BandWidth + perm[row] + 1
		}
	}
	return grid
}

// Grid returns the numbers indexed [column][row].
func (c *Card) Grid() [Size][Size]int {
	return c.grid
}

func (c *Card) Number(cell Cell) int {
	return c.grid[cell.Col][cell.Row]
}

func (c *Card) FindPosition(number int) (Cell, bool) {
	for col := range Size {
		for row := range Size {
			if c.grid[col][row] == number {
				return Cell{Col: col, Row: row}, true
			}
		}
	}
	return Cell{}, false
}

func (c *Card) IsMarked(cell Cell) bool {
	_, ok := c.marked[cell]
	return ok
}

// ToggleMark flips a cell. The free cell can never be unmarked.
func (c *Card) ToggleMark(cell Cell) {
	if c.IsMarked(cell) {
		if cell == FreeCell {
			return
		}
		delete(c.marked, cell)
		return
	}
	c.marked[cell] = struct{}{}
}

func (c *Card) mark(cell Cell) {
	c.marked[cell] = struct{}{}
}

func (c *Card) ClearMarks() {
	c.marked = map[Cell]struct{}{FreeCell: {}}
}

// Marked returns the marked cells ordered by column, then row.
func (c *Card) Marked() []Cell {
	cells := make([]Cell, 0, len(c.marked))
	for cell := range c.marked {
		cells = append(cells, cell)
	}
	slices.SortFunc(cells, func(a, b Cell) int {
		if a.Col != b.Col {
			return a.Col - b.Col
		}
		return a.Row - b.Row
	})
	return cells
}

// CheckBingo reports whether any column, row or diagonal is fully marked.
func (c *Card) CheckBingo() bool {
	for i := range Size {
		if c.line(func(j int) Cell { return Cell{Col: i, Row: j} }) ||
			c.line(func(j int) Cell { return Cell{Col: j, Row: i} }) {
			return true
		}
	}
	return c.line(func(j int) Cell { return Cell{Col: j, Row: j} }) ||
		c.line(func(j int) Cell { return Cell{Col: j, Row: Size - 1 - j} })
}

func (c *Card) line(at func(int) Cell) bool {
	for j := range Size {
		if !c.IsMarked(at(j)) {
			return false
		}
	}
	return true
}

// Letter returns the BINGO column header for a called number.
func Letter(number int) string {
	if number < 1 || number > MaxNumber {
		return ""
	}
	return string("BINGO"[(number-1)/BandWidth])
}
