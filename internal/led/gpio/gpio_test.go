package gpio

import (
	"errors"
	"testing"

	"libdb.so/catblink/internal/led"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type brokenPin struct {
	gpiotest.Pin
}

func (p *brokenPin) Out(gpio.Level) error {
	return errors.New("device busy")
}

func TestPin_Levels(t *testing.T) {
	t.Parallel()

	p := &gpiotest.Pin{N: "GPIO17", Num: 17}
	pin := New(p)

	if err := pin.On(); err != nil {
		t.Fatalf("On() error = %v", err)
	}
	if got := p.Read(); got != gpio.High {
		t.Errorf("after On() level = %v, want High", got)
	}

	if err := pin.Off(); err != nil {
		t.Fatalf("Off() error = %v", err)
	}
	if got := p.Read(); got != gpio.Low {
		t.Errorf("after Off() level = %v, want Low", got)
	}

	if err := pin.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestPin_HardwareFailure(t *testing.T) {
	t.Parallel()

	pin := New(&brokenPin{Pin: gpiotest.Pin{N: "GPIO17", Num: 17}})

	if err := pin.On(); !errors.Is(err, led.ErrHardware) {
		t.Errorf("On() error = %v, want ErrHardware", err)
	}
	if err := pin.Off(); !errors.Is(err, led.ErrHardware) {
		t.Errorf("Off() error = %v, want ErrHardware", err)
	}
}
