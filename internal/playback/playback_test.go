package playback

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
)

// These tests never reach the speaker; opening an audio device is not
// possible on CI machines.

func newTestPlayer() *OtoPlayer {
	return NewOtoPlayer(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestOtoPlayer_PlayWithoutLoad(t *testing.T) {
	t.Parallel()

	if err := newTestPlayer().Play(); err == nil {
		t.Error("Play() error = nil, want error when nothing is loaded")
	}
}

func TestOtoPlayer_LoadMissing(t *testing.T) {
	t.Parallel()

	p := newTestPlayer()
	if err := p.Load(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("Load() error = nil, want error for a missing file")
	}
	if err := p.Play(); err == nil {
		t.Error("Play() error = nil after a failed Load")
	}
}

func TestOtoPlayer_StopIdle(t *testing.T) {
	t.Parallel()

	if err := newTestPlayer().Stop(); err != nil {
		t.Errorf("Stop() on an idle player error = %v", err)
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	var p Player = Nop{}
	if err := p.Load("song.mp3"); err != nil {
		t.Error(err)
	}
	if err := p.Play(); err != nil {
		t.Error(err)
	}
	if err := p.Stop(); err != nil {
		t.Error(err)
	}
}
