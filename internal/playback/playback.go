// Package playback renders an audio file to the speaker while the LED is
// being driven. Playback runs on its own clock; nothing here reports the
// playback position back to the caller.
package playback

import (
	"bytes"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
	"libdb.so/catblink/internal/waveform"
)

// Player loads a file and plays it asynchronously.
type Player interface {
	// Load decodes the file at path so that Play can start without delay.
	Load(path string) error
	// Play starts playback and returns immediately.
	Play() error
	// Stop stops playback. Stopping a player that is not playing is not an
	// error.
	Stop() error
}

// Nop is a Player that plays nothing.
type Nop struct{}

func (Nop) Load(string) error { return nil }
func (Nop) Play() error       { return nil }
func (Nop) Stop() error       { return nil }

// otoBufferSize is the speaker buffer. Larger buffers add latency between
// the LED and what is heard.
const otoBufferSize = 100 * time.Millisecond

// oto allows a single context per process, and its format is fixed once
// created.
var speaker struct {
	mu       sync.Mutex
	ctx      *oto.Context
	rate     int
	channels int
}

func speakerContext(rate, channels int) (*oto.Context, error) {
	speaker.mu.Lock()
	defer speaker.mu.Unlock()

	if speaker.ctx != nil {
		if speaker.rate != rate || speaker.channels != channels {
			return nil, errors.Errorf(
				"speaker already opened at %d Hz/%d channels, cannot play %d Hz/%d channels",
				speaker.rate, speaker.channels, rate, channels)
		}
		return speaker.ctx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   otoBufferSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open speaker")
	}
	<-ready

	speaker.ctx = ctx
	speaker.rate = rate
	speaker.channels = channels
	return ctx, nil
}

// OtoPlayer plays files through the default audio device.
type OtoPlayer struct {
	logger *slog.Logger

	mu     sync.Mutex
	pcm    *waveform.PCM
	player *oto.Player
}

var _ Player = (*OtoPlayer)(nil)

// NewOtoPlayer creates a new OtoPlayer.
func NewOtoPlayer(logger *slog.Logger) *OtoPlayer {
	return &OtoPlayer{logger: logger}
}

func (p *OtoPlayer) Load(path string) error {
	pcm, err := waveform.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to load audio for playback")
	}

	p.mu.Lock()
	p.pcm = pcm
	p.mu.Unlock()
	return nil
}

func (p *OtoPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pcm == nil {
		return errors.New("nothing loaded")
	}
	if p.player != nil {
		return errors.New("already playing")
	}

	ctx, err := speakerContext(p.pcm.SampleRate, p.pcm.Channels)
	if err != nil {
		return err
	}

	p.player = ctx.NewPlayer(bytes.NewReader(p.pcm.Int16LE()))
	p.player.Play()

	p.logger.Debug(
		"started playback",
		"rate", p.pcm.SampleRate,
		"channels", p.pcm.Channels,
		"frames", p.pcm.Frames())
	return nil
}

func (p *OtoPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return nil
	}

	player := p.player
	p.player = nil

	player.Pause()
	if err := player.Close(); err != nil {
		return errors.Wrap(err, "failed to close player")
	}

	p.logger.Debug("stopped playback")
	return nil
}
