/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

import (
	"slices"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, seed int64) (*Game, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return NewGame(NewRand(seed), clock), clock
}

func TestCallNumberExhaustsWithoutRepeats(t *testing.T) {
	g, _ := newTestGame(t, 42)
	g.Start()

	seen := make(map[int]bool)
	for i := range MaxNumber {
		n, ok := g.CallNumber()
		require.True(t, ok, "call %d", i+1)
		require.False(t, seen[n], "repeat %d", n)
		seen[n] = true
	}

	_, ok := g.CallNumber()
	assert.False(t, ok, "76th call must report exhaustion")

	called := g.Called()
	require.Len(t, called, MaxNumber)
	slices.Sort(called)
	for i, n := range called {
		assert.Equal(t, i+1, n)
	}
}

func TestAddPlayerTwiceKeepsCard(t *testing.T) {
	g, _ := newTestGame(t, 1)

	require.True(t, g.AddPlayer("alice"))
	card, ok := g.Card("alice")
	require.True(t, ok)
	card.mark(Cell{0, 0})

	assert.False(t, g.AddPlayer("alice"))
	again, _ := g.Card("alice")
	assert.Same(t, card, again)
	assert.True(t, again.IsMarked(Cell{0, 0}))
	assert.Equal(t, []string{"alice"}, g.Players())

	assert.True(t, g.AddPlayer("Alice"), "names are case-sensitive")
}

func TestRemovePlayer(t *testing.T) {
	g, _ := newTestGame(t, 1)
	g.AddPlayer("a")
	g.AddPlayer("b")
	g.AddPlayer("c")

	assert.True(t, g.RemovePlayer("b"))
	assert.False(t, g.RemovePlayer("b"))
	assert.Equal(t, []string{"a", "c"}, g.Players())
}

func TestCheckWinnerFirstWriterWins(t *testing.T) {
	g, clock := newTestGame(t, 7)
	g.AddPlayer("alice")
	g.AddPlayer("bob")
	g.Start()

	_, ok := g.CheckWinner()
	require.False(t, ok)

	bob, _ := g.Card("bob")
	for col := range Size {
		bob.mark(Cell{Col: col, Row: 0})
	}

	winner, ok := g.CheckWinner()
	require.True(t, ok)
	assert.Equal(t, "bob", winner)
	assert.Equal(t, clock.Now(), g.WonAt())
	assert.Equal(t, Won, g.State())

	alice, _ := g.Card("alice")
	for row := range Size {
		alice.mark(Cell{Col: 0, Row: row})
	}

	winner, ok = g.CheckWinner()
	require.True(t, ok)
	assert.Equal(t, "bob", winner, "a later bingo must not replace the winner")
}

func TestResetRoundKeepCards(t *testing.T) {
	g, _ := newTestGame(t, 9)
	g.AddPlayer("a")
	g.AddPlayer("b")
	g.Start()

	before := map[string][Size][Size]int{}
	for _, name := range g.Players() {
		card, _ := g.Card(name)
		before[name] = card.Grid()
		for row := range Size {
			card.mark(Cell{Col: 1, Row: row})
		}
	}
	for range 10 {
		g.CallNumber()
	}
	_, ok := g.CheckWinner()
	require.True(t, ok)

	g.ResetRound(true)

	assert.Empty(t, g.Called())
	_, ok = g.Winner()
	assert.False(t, ok)
	assert.False(t, g.Started())
	assert.Equal(t, NotStarted, g.State())
	for _, name := range g.Players() {
		card, _ := g.Card(name)
		assert.Equal(t, before[name], card.Grid())
		assert.Equal(t, []Cell{FreeCell}, card.Marked())
	}

	n, ok := g.CallNumber()
	require.True(t, ok)
	assert.True(t, g.IsCalled(n))
}

func TestResetRoundNewCards(t *testing.T) {
	g, _ := newTestGame(t, 10)
	g.AddPlayer("a")
	g.AddPlayer("b")

	before := map[string]*Card{}
	for _, name := range g.Players() {
		before[name], _ = g.Card(name)
	}

	g.ResetRound(false)

	for _, name := range g.Players() {
		card, _ := g.Card(name)
		assert.NotSame(t, before[name], card)
		assert.NotEqual(t, before[name].Grid(), card.Grid())
		assert.Equal(t, []Cell{FreeCell}, card.Marked())
	}
}

func TestToggleMarkRequiresCalledNumber(t *testing.T) {
	g, _ := newTestGame(t, 11)
	g.AddPlayer("a")
	g.Start()
	card, _ := g.Card("a")

	cell := Cell{Col: 0, Row: 0}
	require.ErrorIs(t, g.ToggleMark("a", cell), ErrNotCalled)
	assert.False(t, card.IsMarked(cell))

	require.NoError(t, g.ToggleMark("a", FreeCell))
	assert.True(t, card.IsMarked(FreeCell))

	for !g.IsCalled(card.Number(cell)) {
		_, ok := g.CallNumber()
		require.True(t, ok)
	}
	require.NoError(t, g.ToggleMark("a", cell))
	assert.True(t, card.IsMarked(cell))
	require.NoError(t, g.ToggleMark("a", cell))
	assert.False(t, card.IsMarked(cell))

	assert.ErrorIs(t, g.ToggleMark("nobody", cell), ErrPlayerNotFound)
}

func TestMarkNumber(t *testing.T) {
	g, _ := newTestGame(t, 12)
	g.AddPlayer("a")
	g.Start()
	card, _ := g.Card("a")

	require.NoError(t, g.MarkNumber("a", 0))
	assert.Equal(t, []Cell{FreeCell}, card.Marked())

	target := card.Number(Cell{Col: 4, Row: 1})
	require.ErrorIs(t, g.MarkNumber("a", target), ErrNotCalled)

	var offCard int
	for {
		n, ok := g.CallNumber()
		require.True(t, ok)
		if _, on := card.FindPosition(n); !on && offCard == 0 {
			offCard = n
		}
		if g.IsCalled(target) && offCard != 0 {
			break
		}
	}

	require.NoError(t, g.MarkNumber("a", target))
	assert.True(t, card.IsMarked(Cell{Col: 4, Row: 1}))
	require.NoError(t, g.MarkNumber("a", target), "marking twice keeps the mark")
	assert.True(t, card.IsMarked(Cell{Col: 4, Row: 1}))

	assert.ErrorIs(t, g.MarkNumber("a", offCard), ErrNotOnCard)
	assert.ErrorIs(t, g.MarkNumber("nobody", target), ErrPlayerNotFound)
}

func TestStartClearsWinner(t *testing.T) {
	g, _ := newTestGame(t, 13)
	g.AddPlayer("a")
	assert.Equal(t, NotStarted, g.State())

	g.Start()
	assert.Equal(t, Running, g.State())

	card, _ := g.Card("a")
	for row := range Size {
		card.mark(Cell{Col: 2, Row: row})
	}
	g.CheckWinner()
	require.Equal(t, Won, g.State())

	g.Start()
	_, ok := g.Winner()
	assert.False(t, ok)
	assert.True(t, g.WonAt().IsZero())
}

func TestAutoCall(t *testing.T) {
	g, clock := newTestGame(t, 14)
	interval := 5 * time.Second

	_, ok := g.AutoCall(interval)
	require.False(t, ok, "no calls before the game starts")

	g.Start()
	first, ok := g.AutoCall(interval)
	require.True(t, ok, "first call fires immediately")

	_, ok = g.AutoCall(interval)
	require.False(t, ok)

	clock.Advance(interval - time.Second).MustWait(t.Context())
	_, ok = g.AutoCall(interval)
	require.False(t, ok)

	clock.Advance(time.Second).MustWait(t.Context())
	second, ok := g.AutoCall(interval)
	require.True(t, ok)
	assert.NotEqual(t, first, second)

	g.Start()
	assert.True(t, g.CallDue(interval), "restarting makes the next call due at once")
}

func TestCenterRowScenario(t *testing.T) {
	g, _ := newTestGame(t, 15)
	require.True(t, g.AddPlayer("A"))
	require.True(t, g.AddPlayer("B"))
	g.Start()

	a, _ := g.Card("A")
	row := make([]Cell, 0, Size)
	for col := range Size {
		row = append(row, Cell{Col: col, Row: 2})
	}

	rowCalled := func() bool {
		for _, cell := range row {
			if cell != FreeCell && !g.IsCalled(a.Number(cell)) {
				return false
			}
		}
		return true
	}
	for !rowCalled() {
		_, ok := g.CallNumber()
		require.True(t, ok)
	}

	for _, cell := range row {
		require.NoError(t, g.ToggleMark("A", cell))
	}

	winner, ok := g.CheckWinner()
	require.True(t, ok)
	assert.Equal(t, "A", winner)
}
