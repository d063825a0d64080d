/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "defaults", cfg: Config{port: 8080, callInterval: 5 * time.Second}},
		{name: "tls pair", cfg: Config{port: 443, tlsCert: "c.pem", tlsKey: "k.pem"}},
		{name: "cert without key", cfg: Config{port: 443, tlsCert: "c.pem"}, wantErr: true},
		{name: "port too low", cfg: Config{port: 0}, wantErr: true},
		{name: "port too high", cfg: Config{port: 65536}, wantErr: true},
		{name: "negative call interval", cfg: Config{port: 8080, callInterval: -time.Second}, wantErr: true},
		{name: "negative player timeout", cfg: Config{port: 8080, playerTimeout: -time.Second}, wantErr: true},
		{name: "negative session timeout", cfg: Config{port: 8080, sessionTimeout: -time.Second}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigScheme(t *testing.T) {
	assert.Equal(t, "http", (&Config{}).scheme())
	assert.Equal(t, "https", (&Config{tlsCert: "c", tlsKey: "k"}).scheme())
}

func TestNewCmdDefaults(t *testing.T) {
	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, 5*time.Second, cfg.callInterval)
	assert.Equal(t, 10*time.Minute, cfg.playerTimeout)
	assert.Equal(t, 60*time.Minute, cfg.sessionTimeout)
	assert.False(t, cfg.verbose)
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("BINGOBOX_PORT", "9090")
	t.Setenv("BINGOBOX_CALL_INTERVAL", "2s")
	t.Setenv("BINGOBOX_VERBOSE", "true")

	cfg := &Config{}
	cmd := newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 2*time.Second, cfg.callInterval)
	assert.True(t, cfg.verbose)

	require.NoError(t, cmd.ParseFlags([]string{"--port", "7000"}))
	assert.Equal(t, 7000, cfg.port)
}
