package catblink

import (
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/catblink/internal/envelope"
	"libdb.so/catblink/internal/led"
	"libdb.so/catblink/internal/led/gpio"
	"libdb.so/catblink/internal/ledvis"
	"libdb.so/catblink/internal/source"
	"libdb.so/catblink/internal/waveform"
)

// Config is the configuration for catblink. Zero values and a nil threshold
// mean "use the default", see DefaultConfig.
type Config struct {
	// Threshold is the normalized energy a frame must exceed to turn the LED
	// on. It must be in [0, 1]: 0 lights the LED for any sound, 1 never
	// lights it.
	Threshold *float64 `toml:"threshold"`
	// Frame is the analysis frame duration. It is also how long each on/off
	// decision is held.
	Frame TOMLDuration `toml:"frame"`
	// SampleRate is the rate audio is resampled to before analysis.
	SampleRate int `toml:"sample_rate"`
	// Pacing selects how frames are spaced out in time.
	Pacing Pacing `toml:"pacing"`
	// DownloadPath is where remote music sources are saved.
	DownloadPath string `toml:"download_path"`
	// DownloadChunk is the download buffer size in bytes.
	DownloadChunk int `toml:"download_chunk"`
	// LED configures the output.
	LED LEDConfig `toml:"led"`
	// Playback configures audio output.
	Playback PlaybackConfig `toml:"playback"`
}

// LEDConfig is the configuration for the LED output.
type LEDConfig struct {
	// Backend selects the kind of output.
	Backend LEDBackend `toml:"backend"`
	// Pin is the BCM GPIO number for the gpio backend.
	Pin int `toml:"pin"`
	// Device is the serial device for the serial backend.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial backend.
	Baud int `toml:"baud"`
	// NumLEDs is the strip length for the serial backend.
	NumLEDs int `toml:"num_leds"`
	// Color is the "on" color for the serial backend. Black means white.
	Color led.RGBColor `toml:"color"`
}

// PlaybackConfig is the configuration for audio playback.
type PlaybackConfig struct {
	// Disabled turns off audio output; the LED still runs in real time.
	Disabled bool `toml:"disabled"`
}

// LEDBackend is the kind of LED output.
type LEDBackend string

const (
	// GPIOBackend drives a single GPIO pin.
	GPIOBackend LEDBackend = "gpio"
	// SerialBackend drives a strip through a serial LED controller.
	SerialBackend LEDBackend = "serial"
	// LogBackend only logs state changes.
	LogBackend LEDBackend = "log"
)

// Pacing is the frame pacing mode.
type Pacing string

const (
	// SleepPacing pauses one frame after every frame.
	SleepPacing Pacing = "sleep"
	// ClockPacing sleeps until each frame's scheduled end, so the time spent
	// driving the LED does not add up.
	ClockPacing Pacing = "clock"
)

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Threshold == nil {
		threshold := ledvis.DefaultThreshold
		c.Threshold = &threshold
	}
	if c.Frame == 0 {
		c.Frame = TOMLDuration(envelope.DefaultFrame)
	}
	if c.SampleRate == 0 {
		c.SampleRate = waveform.DefaultSampleRate
	}
	if c.Pacing == "" {
		c.Pacing = SleepPacing
	}
	if c.DownloadPath == "" {
		c.DownloadPath = source.DefaultDownloadPath
	}
	if c.DownloadChunk == 0 {
		c.DownloadChunk = source.DefaultChunkSize
	}
	if c.LED.Backend == "" {
		c.LED.Backend = GPIOBackend
	}
	if c.LED.Pin == 0 {
		c.LED.Pin = gpio.DefaultPin
	}
	if c.LED.Device == "" {
		c.LED.Device = "/dev/ttyUSB0"
	}
	if c.LED.Baud == 0 {
		c.LED.Baud = 115200
	}
	if c.LED.NumLEDs == 0 {
		c.LED.NumLEDs = 1
	}
	if c.LED.Color == (led.RGBColor{}) {
		c.LED.Color = led.White
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Threshold == nil {
		return errors.New("missing threshold")
	}
	if t := *c.Threshold; !(t >= 0 && t <= 1) {
		return fmt.Errorf("threshold %v is not in [0, 1]", t)
	}

	// Catch frames shorter than one sample here rather than after decoding.
	if _, err := envelope.FrameLength(c.SampleRate, time.Duration(c.Frame)); err != nil {
		return errors.Wrap(err, "invalid frame")
	}

	switch c.Pacing {
	case SleepPacing, ClockPacing:
	default:
		return fmt.Errorf("unknown pacing %q", c.Pacing)
	}

	if c.DownloadChunk < 0 {
		return fmt.Errorf("invalid download chunk size %d", c.DownloadChunk)
	}

	switch c.LED.Backend {
	case GPIOBackend:
		if c.LED.Pin < 0 {
			return fmt.Errorf("invalid GPIO pin %d", c.LED.Pin)
		}
	case SerialBackend:
		if c.LED.Device == "" {
			return errors.New("serial backend needs a device")
		}
		if c.LED.NumLEDs < 1 || c.LED.NumLEDs > 0xFFFF {
			return fmt.Errorf("invalid number of LEDs %d", c.LED.NumLEDs)
		}
	case LogBackend:
	default:
		return fmt.Errorf("unknown LED backend %q", c.LED.Backend)
	}

	return nil
}

// ParseConfig parses a configuration from a reader. Missing keys take their
// default values.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	config.setDefaults()
	return &config, nil
}
