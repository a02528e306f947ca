// Package mock provides a test double for playback.Player.
package mock

import (
	"sync"

	"libdb.so/catblink/internal/playback"
)

// Player is a mock implementation of playback.Player. It records every call
// in order as "load:<path>", "play" or "stop".
type Player struct {
	mu sync.Mutex

	// LoadErr, if non-nil, is returned by Load.
	LoadErr error
	// PlayErr, if non-nil, is returned by Play.
	PlayErr error
	// StopErr, if non-nil, is returned by Stop.
	StopErr error

	calls []string
}

var _ playback.Player = (*Player)(nil)

func (p *Player) Load(path string) error {
	p.record("load:" + path)
	return p.LoadErr
}

func (p *Player) Play() error {
	p.record("play")
	return p.PlayErr
}

func (p *Player) Stop() error {
	p.record("stop")
	return p.StopErr
}

// Calls returns a copy of every recorded call.
func (p *Player) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *Player) record(call string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
}
