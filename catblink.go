// Package catblink blinks an LED along with a song. The song's energy
// envelope is computed up front, then played back while the LED follows the
// envelope one frame at a time.
package catblink

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"libdb.so/catblink/internal/envelope"
	"libdb.so/catblink/internal/led"
	"libdb.so/catblink/internal/led/gpio"
	"libdb.so/catblink/internal/led/serialled"
	"libdb.so/catblink/internal/ledvis"
	"libdb.so/catblink/internal/playback"
	"libdb.so/catblink/internal/waveform"
)

// Runner is the main catblink runner. A Runner may be used for several
// songs, one at a time.
type Runner struct {
	cfg    *Config
	logger *slog.Logger
	stdout io.Writer

	openOutput led.Opener
	player     playback.Player
	pacer      ledvis.Pacer
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput replaces the output selected by the configuration.
func WithOutput(open led.Opener) Option {
	return func(r *Runner) { r.openOutput = open }
}

// WithPlayer replaces the player selected by the configuration.
func WithPlayer(p playback.Player) Option {
	return func(r *Runner) { r.player = p }
}

// WithPacer replaces the pacer selected by the configuration.
func WithPacer(p ledvis.Pacer) Option {
	return func(r *Runner) { r.pacer = p }
}

// WithStdout sets where user facing lines are printed. It defaults to
// os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) { r.stdout = w }
}

// NewRunner creates a new catblink runner.
func NewRunner(cfg *Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	r := &Runner{
		cfg:    cfg,
		logger: logger,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.openOutput == nil {
		r.openOutput = r.configuredOutput
	}
	if r.player == nil {
		if cfg.Playback.Disabled {
			r.player = playback.Nop{}
		} else {
			r.player = playback.NewOtoPlayer(logger)
		}
	}

	return r, nil
}

func (r *Runner) frame() time.Duration {
	return time.Duration(r.cfg.Frame)
}

func (r *Runner) configuredOutput() (led.Output, error) {
	switch r.cfg.LED.Backend {
	case GPIOBackend:
		return gpio.Open(r.cfg.LED.Pin)
	case SerialBackend:
		return serialled.Open(serialled.Config{
			Device:  r.cfg.LED.Device,
			Baud:    r.cfg.LED.Baud,
			NumLEDs: r.cfg.LED.NumLEDs,
			Color:   r.cfg.LED.Color,
		}, r.logger)
	case LogBackend:
		return led.NewLogOutput(r.logger), nil
	default:
		return nil, fmt.Errorf("unknown LED backend %q", r.cfg.LED.Backend)
	}
}

func (r *Runner) newPacer() ledvis.Pacer {
	if r.pacer != nil {
		return r.pacer
	}
	if r.cfg.Pacing == ClockPacing {
		return ledvis.NewClockPacer(r.frame())
	}
	return ledvis.SleepPacer{Frame: r.frame()}
}

// Analysis is the energy envelope of a song.
type Analysis struct {
	Waveform *waveform.Waveform
	// Energies holds one normalized RMS value per frame.
	Energies []float64
}

// Analyze loads the song at path and computes its energy envelope. Nothing
// is played or driven.
func (r *Runner) Analyze(path string) (*Analysis, error) {
	w, err := waveform.Load(path, r.cfg.SampleRate)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load song")
	}

	energies, err := envelope.Extract(w.Samples, w.SampleRate, r.frame())
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract envelope")
	}

	r.logger.Info(
		"analyzed song",
		"path", path,
		"seconds", w.Duration(),
		"frames", len(energies))

	return &Analysis{Waveform: w, Energies: energies}, nil
}

// Result describes a finished run.
type Result struct {
	Frames int
	Events []ledvis.Event
}

// Run opens the LED output, analyzes the song at path, starts playing it and
// drives the LED along with it. It blocks until every frame was shown or ctx
// is canceled.
//
// Once the output has been opened, it is always turned off and closed before
// Run returns, and playback is always stopped once it was loaded.
func (r *Runner) Run(ctx context.Context, path string) (*Result, error) {
	out, err := r.openOutput()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open LED output")
	}

	vis, err := ledvis.NewBlinking(ledvis.VisualizerConfig{
		Threshold: *r.cfg.Threshold,
		Frame:     r.frame(),
	}, out, r.newPacer(), r.logger)
	if err != nil {
		if err := out.Off(); err != nil {
			r.logger.Warn("failed to turn LED off", "error", err)
		}
		if err := out.Close(); err != nil {
			r.logger.Warn("failed to close LED output", "error", err)
		}
		return nil, err
	}

	vis.OnEvent = func(ev ledvis.Event) {
		r.logger.Info(
			"led state changed",
			"frame", ev.Frame,
			"state", ev.State)
		if ev.State == ledvis.High {
			fmt.Fprintln(r.stdout, "High")
		}
	}

	// The paced loop turns the output off itself. Anything that fails
	// before it starts has to do so here.
	var loaded, looped bool
	defer func() {
		if !looped {
			if err := vis.ForceOff(); err != nil {
				r.logger.Warn("failed to turn LED off", "error", err)
			}
			if loaded {
				if err := r.player.Stop(); err != nil {
					r.logger.Warn("failed to stop playback", "error", err)
				}
			}
		}
		if err := out.Close(); err != nil {
			r.logger.Warn("failed to close LED output", "error", err)
		}
	}()

	analysis, err := r.Analyze(path)
	if err != nil {
		return nil, err
	}

	loaded = true
	if err := r.player.Load(path); err != nil {
		return nil, errors.Wrap(err, "failed to load playback")
	}
	if err := r.player.Play(); err != nil {
		return nil, errors.Wrap(err, "failed to start playback")
	}

	looped = true
	result := &Result{Frames: len(analysis.Energies)}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errg, loopCtx := errgroup.WithContext(loopCtx)
	errg.Go(func() error {
		defer cancel()

		events, err := vis.Run(loopCtx, analysis.Energies)
		result.Events = events
		return err
	})
	errg.Go(func() error {
		<-loopCtx.Done()
		r.logger.Debug("stopping playback")
		if err := r.player.Stop(); err != nil {
			return errors.Wrap(err, "failed to stop playback")
		}
		return nil
	})

	if err := errg.Wait(); err != nil {
		return result, err
	}
	return result, nil
}
