package ledvis

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSleepPacer(t *testing.T) {
	t.Parallel()

	p := SleepPacer{Frame: 5 * time.Millisecond}
	p.Start()

	start := time.Now()
	for i := range 3 {
		if err := p.Wait(context.Background(), i); err != nil {
			t.Fatalf("Wait(%d) error = %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("three waits took %v, want at least 15ms", elapsed)
	}
}

func TestSleepPacer_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := SleepPacer{Frame: time.Hour}
	if err := p.Wait(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestClockPacer_SleepsResidual(t *testing.T) {
	t.Parallel()

	base := time.Now()
	now := base

	p := NewClockPacer(time.Hour)
	p.Now = func() time.Time { return now }
	p.Start()

	// Pretend frame 2 overran into frame 3's slot: nothing left to wait.
	now = base.Add(3*time.Hour + time.Minute)
	if err := p.Wait(context.Background(), 2); err != nil {
		t.Errorf("Wait() error = %v, want nil when already late", err)
	}
}

func TestClockPacer_WaitsUntilDeadline(t *testing.T) {
	t.Parallel()

	p := NewClockPacer(10 * time.Millisecond)
	p.Start()

	start := time.Now()
	if err := p.Wait(context.Background(), 1); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("Wait(1) returned after %v, want about 20ms", elapsed)
	}
}
