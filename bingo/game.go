/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/coder/quartz"
)

type State string

const (
	NotStarted State = "not_started"
	Running    State = "running"
	Won        State = "won"
)

// Game holds the shared state of one bingo room. It is not safe for
// concurrent use; Room serializes access to it.
type Game struct {
	rng   *rand.Rand
	clock quartz.Clock

	cards   map[string]*Card
	players []string // join order

	called    []int
	calledSet [MaxNumber + 1]bool

	started bool
	winner  string

	lastCalled time.Time
	wonAt      time.Time
}

func NewGame(rng *rand.Rand, clock quartz.Clock) *Game {
	return &Game{
		rng:   rng,
		clock: clock,
		cards: make(map[string]*Card),
	}
}

func (g *Game) State() State {
	switch {
	case g.winner != "":
		return Won
	case g.started:
		return Running
	default:
		return NotStarted
	}
}

func (g *Game) Started() bool {
	return g.started
}

// Start begins calling. It can be used from any state and clears any winner.
func (g *Game) Start() {
	g.started = true
	g.winner = ""
	g.wonAt = time.Time{}
	g.lastCalled = time.Time{}
}

// CallNumber draws one number that has not been called yet. It returns false
// once all numbers have been called.
func (g *Game) CallNumber() (int, bool) {
	remaining := make([]int, 0, MaxNumber-len(g.called))
	for n := 1; n <= MaxNumber; n++ {
		if !g.calledSet[n] {
			remaining = append(remaining, n)
		}
	}
	if len(remaining) == 0 {
		return 0, false
	}

	n := remaining[g.rng.IntN(len(remaining))]
	g.called = append(g.called, n)
	g.calledSet[n] = true

	return n, true
}

// CallDue reports whether an automatic call should happen now.
func (g *Game) CallDue(interval time.Duration) bool {
	if g.State() != Running {
		return false
	}
	return g.lastCalled.IsZero() || g.clock.Since(g.lastCalled) >= interval
}

// AutoCall calls a number if one is due, stamping the time of the call.
func (g *Game) AutoCall(interval time.Duration) (int, bool) {
	if !g.CallDue(interval) {
		return 0, false
	}
	n, ok := g.CallNumber()
	g.lastCalled = g.clock.Now()
	return n, ok
}

func (g *Game) Remaining() int {
	return MaxNumber - len(g.called)
}

func (g *Game) IsCalled(number int) bool {
	if number < 1 || number > MaxNumber {
		return false
	}
	return g.calledSet[number]
}

func (g *Game) Called() []int {
	return slices.Clone(g.called)
}

func (g *Game) LastCalled() (int, bool) {
	if len(g.called) == 0 {
		return 0, false
	}
	return g.called[len(g.called)-1], true
}

// AddPlayer deals a card to name. It returns false if name already has one.
func (g *Game) AddPlayer(name string) bool {
	if _, ok := g.cards[name]; ok {
		return false
	}
	g.cards[name] = NewCard(g.rng)
	g.players = append(g.players, name)
	return true
}

func (g *Game) RemovePlayer(name string) bool {
	if _, ok := g.cards[name]; !ok {
		return false
	}
	delete(g.cards, name)
	g.players = slices.DeleteFunc(g.players, func(p string) bool { return p == name })
	return true
}

func (g *Game) Players() []string {
	return slices.Clone(g.players)
}

func (g *Game) Card(name string) (*Card, bool) {
	c, ok := g.cards[name]
	return c, ok
}

// ToggleMark flips a cell on name's card. Only called numbers and the free
// cell may be toggled.
func (g *Game) ToggleMark(name string, cell Cell) error {
	card, ok := g.cards[name]
	if !ok {
		return ErrPlayerNotFound
	}
	if cell != FreeCell && !g.IsCalled(card.Number(cell)) {
		return ErrNotCalled
	}
	card.ToggleMark(cell)
	return nil
}

// MarkNumber marks number on name's card. Zero stands for the free cell,
// which is always marked already.
func (g *Game) MarkNumber(name string, number int) error {
	card, ok := g.cards[name]
	if !ok {
		return ErrPlayerNotFound
	}
	if number == 0 {
		return nil
	}
	if !g.IsCalled(number) {
		return ErrNotCalled
	}
	cell, ok := card.FindPosition(number)
	if !ok {
		return ErrNotOnCard
	}
	card.mark(cell)
	return nil
}

// CheckWinner records the first player found with a bingo, in join order.
// Once set, the winner is kept until the round is reset.
func (g *Game) CheckWinner() (string, bool) {
	if g.winner != "" {
		return g.winner, true
	}
	for _, name := range g.players {
		if g.cards[name].CheckBingo() {
			g.winner = name
			g.wonAt = g.clock.Now()
			return name, true
		}
	}
	return "", false
}

func (g *Game) Winner() (string, bool) {
	return g.winner, g.winner != ""
}

func (g *Game) WonAt() time.Time {
	return g.wonAt
}

// ResetRound clears calls and the winner. With keepCards players keep their
// numbers but lose their marks; otherwise everyone is dealt a new card.
func (g *Game) ResetRound(keepCards bool) {
	g.called = nil
	g.calledSet = [MaxNumber + 1]bool{}
	g.winner = ""
	g.wonAt = time.Time{}
	g.started = false
	g.lastCalled = time.Time{}

	for _, name := range g.players {
		if keepCards {
			g.cards[name].ClearMarks()
			continue
		}
		g.cards[name] = NewCard(g.rng)
	}
}
