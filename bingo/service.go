/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand/v2"
	"sync"
	"time"

	"github.com/coder/quartz"
)

const (
	codeLength  = 6
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Service creates, looks up and tears down rooms.
type Service struct {
	mu      sync.Mutex // serializes code allocation
	store   Store
	clock   quartz.Clock
	newRand func() *mrand.Rand
}

type Option func(*Service)

// WithRand sets the source of randomness given to each new room.
func WithRand(fn func() *mrand.Rand) Option {
	return func(s *Service) {
		s.newRand = fn
	}
}

func NewService(store Store, clock quartz.Clock, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: clock,
		newRand: func() *mrand.Rand {
			return mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64()))
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRoom opens a room under a fresh code. A non-empty host joins it
// straight away.
func (s *Service) CreateRoom(host string) (*Room, error) {
	s.mu.Lock()
	code, err := s.newCode()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	room := newRoom(code, NewGame(s.newRand(), s.clock), s.clock)
	s.store.Put(room)
	s.mu.Unlock()

	if host != "" {
		if _, err := room.Join(host); err != nil {
			s.store.Delete(code)
			return nil, err
		}
	}
	return room, nil
}

// newCode expects s.mu to be held.
func (s *Service) newCode() (string, error) {
	buf := make([]byte, codeLength)
	for {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("room code: %w", err)
		}
		out := make([]byte, codeLength)
		for i := range out {
			out[i] = codeLetters[int(buf[i])%len(codeLetters)]
		}
		code := string(out)

		if _, exists := s.store.Get(code); !exists {
			return code, nil
		}
	}
}

func (s *Service) Room(code string) (*Room, error) {
	room, ok := s.store.Get(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// CloseRoom tears down a room. Only its host may do so.
func (s *Service) CloseRoom(code, requester string) error {
	room, err := s.Room(code)
	if err != nil {
		return err
	}
	if host := room.Host(); host == "" || host != requester {
		return ErrNotHost
	}
	s.store.Delete(code)
	return nil
}

// Reap deletes rooms idle for longer than idle and returns their codes.
func (s *Service) Reap(idle time.Duration) []string {
	cutoff := s.clock.Now().Add(-idle)

	var reaped []string
	for _, room := range s.store.Rooms() {
		if room.LastActive().Before(cutoff) {
			s.store.Delete(room.Code)
			reaped = append(reaped, room.Code)
		}
	}
	return reaped
}

// Active reports whether code still refers to a live room.
func (s *Service) Active(code string) bool {
	_, ok := s.store.Get(code)
	return ok
}

// NewRand returns a generator seeded deterministically from seed.
func NewRand(seed int64) *mrand.Rand {
	u := uint64(seed)
	return mrand.New(mrand.NewPCG(mix(u), mix(u+0x9e3779b97f4a7c15)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
