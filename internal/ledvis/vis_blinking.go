package ledvis

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"libdb.so/catblink/internal/led"
)

// Blinking is a visualization that blinks the LED based on the normalized
// amplitude of the audio. It only writes to the output when the state
// changes.
type Blinking struct {
	cfg    VisualizerConfig
	out    led.Output
	pacer  Pacer
	logger *slog.Logger
	state  State

	// OnEvent, if set, is called after each state change was applied.
	OnEvent func(Event)
}

// NewBlinking creates a new Blinking visualizer driving out. If pacer is
// nil, a SleepPacer with the configured frame is used.
func NewBlinking(cfg VisualizerConfig, out led.Output, pacer Pacer, logger *slog.Logger) (*Blinking, error) {
	if out == nil {
		return nil, errors.New("nil output")
	}
	if cfg.Frame <= 0 {
		return nil, errors.Errorf("invalid frame duration %v", cfg.Frame)
	}
	if pacer == nil {
		pacer = SleepPacer{Frame: cfg.Frame}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Blinking{
		cfg:    cfg,
		out:    out,
		pacer:  pacer,
		logger: logger,
		state:  Low,
	}, nil
}

// State returns the current state.
func (b *Blinking) State() State {
	return b.state
}

// Step feeds the energy of frame i. If the state changes, the output is
// driven and the event is returned with ok set.
func (b *Blinking) Step(i int, energy float64) (ev Event, ok bool, err error) {
	next := b.cfg.Decide(energy)
	if next == b.state {
		return Event{}, false, nil
	}

	if err := b.apply(next); err != nil {
		return Event{}, false, errors.Wrapf(err, "frame %d", i)
	}

	b.state = next
	ev = Event{Frame: i, State: next}

	if b.OnEvent != nil {
		b.OnEvent(ev)
	}

	return ev, true, nil
}

// Run steps through energies one frame at a time, holding each decision for
// one frame. The output is always turned off before Run returns, whether it
// finished, failed or was canceled; the first error wins.
func (b *Blinking) Run(ctx context.Context, energies []float64) (events []Event, err error) {
	defer func() {
		if offErr := b.ForceOff(); offErr != nil && err == nil {
			err = offErr
		}
	}()

	b.pacer.Start()

	for i, e := range energies {
		if err := ctx.Err(); err != nil {
			return events, err
		}

		ev, ok, err := b.Step(i, e)
		if err != nil {
			return events, err
		}
		if ok {
			events = append(events, ev)
		}

		if err := b.pacer.Wait(ctx, i); err != nil {
			return events, err
		}
	}

	return events, nil
}

// ForceOff turns the output off regardless of the tracked state.
func (b *Blinking) ForceOff() error {
	b.logger.Debug("forcing led off", "was", b.state)
	b.state = Low
	if err := b.out.Off(); err != nil {
		return errors.Wrap(err, "failed to turn output off")
	}
	return nil
}

func (b *Blinking) apply(s State) error {
	if s == High {
		return b.out.On()
	}
	return b.out.Off()
}
