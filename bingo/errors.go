/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package bingo

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found in room")

	ErrNotHost = errors.New("only the host can do that")

	ErrInvalidName   = errors.New("username is required")
	ErrNotCalled     = errors.New("number not called yet")
	ErrNotOnCard     = errors.New("number not on your card")
	ErrNotRunning    = errors.New("game not started")
	ErrInvalidAction = errors.New("invalid action")
)

// IsNotFound reports whether err refers to an unknown room or player.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrPlayerNotFound)
}

// IsForbidden reports whether err is a privileged operation by a non-host.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrNotHost)
}
