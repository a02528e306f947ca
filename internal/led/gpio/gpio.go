// Package gpio drives a single digital output pin through periph.io.
package gpio

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"libdb.so/catblink/internal/led"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// DefaultPin is the BCM pin number used when none is configured.
const DefaultPin = 17

var hostInit = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

// Pin is a led.Output backed by a GPIO pin.
type Pin struct {
	pin gpio.PinOut
}

var _ led.Output = (*Pin)(nil)

// Open initializes the host drivers once per process and looks up the pin
// named GPIO<n>. The pin is driven low before Open returns.
func Open(n int) (*Pin, error) {
	if err := hostInit(); err != nil {
		return nil, errors.Wrapf(led.ErrHardware, "failed to initialize gpio host: %v", err)
	}

	name := fmt.Sprintf("GPIO%d", n)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.Wrapf(led.ErrHardware, "no such pin %s", name)
	}

	pin := &Pin{pin: p}
	if err := pin.Off(); err != nil {
		return nil, err
	}
	return pin, nil
}

// New wraps an already resolved pin.
func New(p gpio.PinOut) *Pin {
	return &Pin{pin: p}
}

func (p *Pin) On() error  { return p.set(gpio.High) }
func (p *Pin) Off() error { return p.set(gpio.Low) }

// Close is a no-op: periph.io pins have no handle to release.
func (p *Pin) Close() error { return nil }

func (p *Pin) set(l gpio.Level) error {
	if err := p.pin.Out(l); err != nil {
		return errors.Wrapf(led.ErrHardware, "failed to set %s %s: %v", p.pin, l, err)
	}
	return nil
}
