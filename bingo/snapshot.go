/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

// Snapshot is the serialized view of a room sent to clients.
type Snapshot struct {
	RoomCode      string        `json:"room_code"`
	Players       []string      `json:"players"`
	Started       bool          `json:"started"`
	State         State         `json:"state"`
	Winner        *string       `json:"winner"`
	HostName      *string       `json:"host_name"`
	CalledNumbers []int         `json:"called_numbers"`
	LastCalled    *int          `json:"last_called,omitempty"`
	Card          *CardSnapshot `json:"card,omitempty"`
}

// CardSnapshot holds one player's card. Grid is indexed [row][column] so
// clients can render it top to bottom; Marked holds [column, row] pairs.
type CardSnapshot struct {
	Grid   [Size][Size]int `json:"grid"`
	Marked [][2]int        `json:"marked"`
}

// newSnapshot expects r.mu to be held.
func newSnapshot(r *Room, forPlayer string) Snapshot {
	g := r.game

	s := Snapshot{
		RoomCode:      r.Code,
		Players:       g.Players(),
		Started:       g.Started(),
		State:         g.State(),
		CalledNumbers: g.Called(),
	}
	if s.CalledNumbers == nil {
		s.CalledNumbers = []int{}
	}
	if s.Players == nil {
		s.Players = []string{}
	}
	if w, ok := g.Winner(); ok {
		s.Winner = &w
	}
	if r.host != "" {
		host := r.host
		s.HostName = &host
	}
	if n, ok := g.LastCalled(); ok {
		s.LastCalled = &n
	}

	if card, ok := g.Card(forPlayer); ok && forPlayer != "" {
		cs := &CardSnapshot{}
		grid := card.Grid()
		for col := range Size {
			for row := range Size {
				cs.Grid[row][col] = grid[col][row]
			}
		}
		for _, cell := range card.Marked() {
			cs.Marked = append(cs.Marked, [2]int{cell.Col, cell.Row})
		}
		s.Card = cs
	}

	return s
}
