// Package serialled drives an LED strip attached to a serial LED controller,
// treating the whole strip as one on/off light.
package serialled

import (
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
	"libdb.so/catblink/internal/led"
	"libdb.so/catblink/ledserial"
)

// Config is the configuration for a serial LED controller.
type Config struct {
	// Device is the path to the serial device, usually /dev/ttyUSB0 or
	// /dev/ttyACM0.
	Device string
	// Baud is the baud rate for the serial connection.
	Baud int
	// NumLEDs is the number of LEDs on the strip.
	NumLEDs int
	// Color is the color every LED is set to when the output is on.
	Color led.RGBColor
	// AckTimeout bounds how long to wait for the controller to acknowledge
	// a packet.
	AckTimeout time.Duration
}

// DefaultAckTimeout is used when Config.AckTimeout is zero.
const DefaultAckTimeout = time.Second

var errAckTimeout = errors.New("timed out waiting for ack")

// Strip is a led.Output backed by a serial LED controller.
type Strip struct {
	port   io.ReadWriteCloser
	reader io.Reader
	cfg    Config
	leds   led.LEDs
	logger *slog.Logger
}

var _ led.Output = (*Strip)(nil)

// Open opens the serial device and initializes the controller. The strip
// is cleared before Open returns.
func Open(cfg Config, logger *slog.Logger) (*Strip, error) {
	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.Baud,
	})
	if err != nil {
		return nil, errors.Wrapf(led.ErrHardware, "failed to open serial port %s: %v", cfg.Device, err)
	}

	timeout := cfg.AckTimeout
	if timeout == 0 {
		timeout = DefaultAckTimeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, errors.Wrapf(led.ErrHardware, "failed to set read timeout: %v", err)
	}

	s, err := New(port, cfg, logger)
	if err != nil {
		port.Close()
		return nil, err
	}
	return s, nil
}

// New initializes a controller reachable over port. A read that returns no
// bytes and no error is treated as an ack timeout, which is how serial ports
// with a read timeout report one.
func New(port io.ReadWriteCloser, cfg Config, logger *slog.Logger) (*Strip, error) {
	if cfg.NumLEDs < 1 {
		return nil, errors.Errorf("invalid number of LEDs: %d", cfg.NumLEDs)
	}

	s := &Strip{
		port:   port,
		reader: timeoutReader{port},
		cfg:    cfg,
		leds:   led.NewLEDs(cfg.NumLEDs),
		logger: logger,
	}

	if err := s.send(ledserial.InitializePacket{NumLEDs: uint16(cfg.NumLEDs)}); err != nil {
		return nil, errors.Wrap(err, "failed to initialize controller")
	}
	if err := s.Off(); err != nil {
		return nil, err
	}

	return s, nil
}

// On sets every LED on the strip to the configured color.
func (s *Strip) On() error {
	s.leds.Fill(s.cfg.Color)
	return s.send(ledserial.SetPacket{Pix: s.leds.AsPixels()})
}

// Off clears the strip.
func (s *Strip) Off() error {
	return s.send(ledserial.ClearPacket{})
}

// Close closes the serial port.
func (s *Strip) Close() error {
	if err := s.port.Close(); err != nil {
		return errors.Wrap(err, "failed to close serial port")
	}
	return nil
}

// send writes p and waits until the controller acknowledges it. Log
// packets received in the meantime are forwarded to the logger.
func (s *Strip) send(p ledserial.IncomingPacket) error {
	s.logger.Debug(
		"writing packet",
		"type", p.Type())

	if err := ledserial.WriteIncomingPacket(s.port, p); err != nil {
		return errors.Wrapf(led.ErrHardware, "failed to write %s packet: %v", p.Type(), err)
	}

	for {
		reply, err := ledserial.ReadOutgoingPacket(s.reader)
		if err != nil {
			return errors.Wrapf(led.ErrHardware, "failed to read reply to %s packet: %v", p.Type(), err)
		}

		switch reply := reply.(type) {
		case ledserial.AckPacket:
			if reply.IncomingPacketType == p.Type() {
				return nil
			}
			s.logger.Debug(
				"ignoring stale ack from controller",
				"acked_for", reply.IncomingPacketType)

		case ledserial.LogPacket:
			s.logger.Info(
				"received log packet from controller",
				"message", reply.Message)

		case ledserial.ErrorPacket:
			return errors.Wrapf(led.ErrHardware, "controller reported error: %s", reply.Message)

		case ledserial.PanicPacket:
			return errors.Wrap(led.ErrHardware, "controller panicked")
		}
	}
}

type timeoutReader struct {
	r io.Reader
}

func (t timeoutReader) Read(b []byte) (int, error) {
	n, err := t.r.Read(b)
	if n == 0 && err == nil && len(b) > 0 {
		return 0, errAckTimeout
	}
	return n, err
}
