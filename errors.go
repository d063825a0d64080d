/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Seednode/bingobox/bingo"
)

var (
	errMissingRoomCode = errors.New("room_code is required")
	errMissingNumber   = errors.New("username and number are required")
	errMissingCell     = errors.New("username and cell are required")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// statusFor maps a failed action onto the status code returned to clients.
func statusFor(err error) int {
	switch {
	case bingo.IsNotFound(err):
		return http.StatusNotFound
	case bingo.IsForbidden(err):
		return http.StatusForbidden
	case errors.Is(err, bingo.ErrInvalidName),
		errors.Is(err, bingo.ErrNotCalled),
		errors.Is(err, bingo.ErrNotOnCard),
		errors.Is(err, bingo.ErrNotRunning),
		errors.Is(err, bingo.ErrInvalidAction),
		errors.Is(err, errMissingRoomCode),
		errors.Is(err, errMissingNumber),
		errors.Is(err, errMissingCell):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon())
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
