/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

import (
	"strings"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Room wraps a Game with its code and host. Every operation holds the
// room's lock for its whole duration.
type Room struct {
	Code string

	mu         sync.Mutex
	clock      quartz.Clock
	game       *Game
	host       string
	createdAt  time.Time
	lastActive time.Time
}

func newRoom(code string, game *Game, clock quartz.Clock) *Room {
	now := clock.Now()
	return &Room{
		Code:       code,
		clock:      clock,
		game:       game,
		createdAt:  now,
		lastActive: now,
	}
}

func (r *Room) touch() {
	r.lastActive = r.clock.Now()
}

func (r *Room) requireHost(requester string) error {
	if r.host == "" || requester != r.host {
		return ErrNotHost
	}
	return nil
}

// Join adds name to the room. The first player to join an unhosted room
// becomes its host. It returns false when name was already present.
func (r *Room) Join(name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.touch()

	if r.host == "" {
		r.host = name
	}
	return r.game.AddPlayer(name), nil
}

// Leave removes name from the room. If the host leaves, hosting passes to
// the longest-standing remaining player.
func (r *Room) Leave(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.touch()

	if !r.game.RemovePlayer(name) {
		return false
	}
	if name == r.host {
		r.host = ""
		if players := r.game.Players(); len(players) > 0 {
			r.host = players[0]
		}
	}
	return true
}

func (r *Room) Start(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(requester); err != nil {
		return err
	}
	r.touch()
	r.game.Start()
	return nil
}

// Call draws the next number. ok is false once every number has been called.
func (r *Room) Call(requester string) (number int, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(requester); err != nil {
		return 0, false, err
	}
	if r.game.State() != Running {
		return 0, false, ErrNotRunning
	}
	r.touch()
	number, ok = r.game.CallNumber()
	return number, ok, nil
}

// AutoCall calls a number if interval has passed since the last automatic
// call. running is false once the room has stopped calling.
func (r *Room) AutoCall(interval time.Duration) (number int, called, running bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.game.State() != Running {
		return 0, false, false
	}
	if !r.game.CallDue(interval) {
		return 0, false, true
	}
	r.touch()
	number, called = r.game.AutoCall(interval)
	return number, called, called
}

// Mark marks a called number on player's card, then checks for a winner.
// Zero is the free cell. Cards are frozen once the round has a winner.
func (r *Room) Mark(player string, number int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.game.State() == Won {
		return ErrNotRunning
	}
	if err := r.game.MarkNumber(player, number); err != nil {
		return err
	}
	r.touch()
	r.game.CheckWinner()
	return nil
}

// Toggle flips a cell on player's card, then checks for a winner.
func (r *Room) Toggle(player string, cell Cell) error {
	if cell.Col < 0 || cell.Col >= Size || cell.Row < 0 || cell.Row >= Size {
		return ErrNotOnCard
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.game.State() == Won {
		return ErrNotRunning
	}
	if err := r.game.ToggleMark(player, cell); err != nil {
		return err
	}
	r.touch()
	r.game.CheckWinner()
	return nil
}

func (r *Room) CheckWinner() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.game.CheckWinner()
}

func (r *Room) Restart(requester string, keepCards bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireHost(requester); err != nil {
		return err
	}
	r.touch()
	r.game.ResetRound(keepCards)
	return nil
}

func (r *Room) HasPlayer(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.game.Card(name)
	return ok
}

func (r *Room) Host() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.host
}

func (r *Room) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.game.State() == Running
}

// CanCall reports whether the round is running with numbers left to call.
func (r *Room) CanCall() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.game.State() == Running && r.game.Remaining() > 0
}

func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastActive
}

func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

// Snapshot renders the room. When forPlayer names a player in the room,
// their card is included.
func (r *Room) Snapshot(forPlayer string) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return newSnapshot(r, forPlayer)
}
