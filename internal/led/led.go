// Package led describes the single binary output that catblink drives.
package led

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// ErrHardware is wrapped by every error an Output returns when the
// underlying device is unavailable or refuses a write.
var ErrHardware = errors.New("hardware failure")

// Output is a single on/off light. Implementations are not required to be
// safe for concurrent use; the state machine is their only caller.
type Output interface {
	// On drives the output high.
	On() error
	// Off drives the output low.
	Off() error
	// Close releases the device. It does not change the output level, so
	// callers turn the output off first.
	Close() error
}

// Opener opens an Output. The runner calls it only after analysis succeeds
// so that nothing is touched on an early failure.
type Opener func() (Output, error)

// LogOutput is an Output without hardware. It records state changes to a
// logger, which is handy on machines with no pin to drive.
type LogOutput struct {
	Logger *slog.Logger

	mu sync.Mutex
	on bool
}

var _ Output = (*LogOutput)(nil)

// NewLogOutput creates a new LogOutput.
func NewLogOutput(logger *slog.Logger) *LogOutput {
	return &LogOutput{Logger: logger}
}

func (o *LogOutput) On() error  { return o.set(true) }
func (o *LogOutput) Off() error { return o.set(false) }
func (o *LogOutput) Close() error {
	return nil
}

// IsOn reports the last level that was set.
func (o *LogOutput) IsOn() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.on
}

func (o *LogOutput) set(on bool) error {
	o.mu.Lock()
	o.on = on
	o.mu.Unlock()

	o.Logger.Info("led", "on", on)
	return nil
}
