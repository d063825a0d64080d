/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

import "sync"

// Store keeps rooms by code.
type Store interface {
	Get(code string) (*Room, bool)
	Put(room *Room)
	Delete(code string)
	Rooms() []*Room
}

type memoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewMemoryStore returns a Store that lives for the life of the process.
func NewMemoryStore() Store {
	return &memoryStore{rooms: make(map[string]*Room)}
}

func (m *memoryStore) Get(code string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room, ok := m.rooms[code]
	return room, ok
}

func (m *memoryStore) Put(room *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rooms[room.Code] = room
}

func (m *memoryStore) Delete(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rooms, code)
}

func (m *memoryStore) Rooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
