package ledvis

import (
	"context"
	"time"
)

// Pacer spaces out envelope frames in wall-clock time.
type Pacer interface {
	// Start marks the moment frame 0 begins.
	Start()
	// Wait blocks until frame i is over or ctx is canceled.
	Wait(ctx context.Context, i int) error
}

// SleepPacer pauses for exactly one frame after every frame. Time spent
// driving the output is not accounted for, so the analysis clock slowly
// falls behind playback on long tracks.
type SleepPacer struct {
	Frame time.Duration
}

func (p SleepPacer) Start() {}

func (p SleepPacer) Wait(ctx context.Context, i int) error {
	return sleep(ctx, p.Frame)
}

// ClockPacer waits until start + (i+1)·Frame, so per-frame overhead does not
// accumulate. It still has no knowledge of the playback clock.
type ClockPacer struct {
	Frame time.Duration
	// Now defaults to time.Now.
	Now func() time.Time

	start time.Time
}

// NewClockPacer creates a new ClockPacer.
func NewClockPacer(frame time.Duration) *ClockPacer {
	return &ClockPacer{Frame: frame}
}

func (p *ClockPacer) Start() {
	p.start = p.now()
}

func (p *ClockPacer) Wait(ctx context.Context, i int) error {
	deadline := p.start.Add(time.Duration(i+1) * p.Frame)
	return sleep(ctx, deadline.Sub(p.now()))
}

func (p *ClockPacer) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
