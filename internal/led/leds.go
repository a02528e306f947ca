package led

import (
	"encoding"
	"encoding/hex"
	"fmt"
	"strings"
)

// RGBColor is a single LED color in R, G, B order.
type RGBColor [3]uint8

var (
	_ encoding.TextUnmarshaler = (*RGBColor)(nil)
	_ encoding.TextMarshaler   = RGBColor{}
)

// White is the default "on" color.
var White = RGBColor{0xFF, 0xFF, 0xFF}

// UnmarshalText parses a color in the form "#rrggbb".
func (c *RGBColor) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "#")
	if len(s) != 6 {
		return fmt.Errorf("invalid color %q: want #rrggbb", text)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	copy(c[:], b)
	return nil
}

// MarshalText formats the color as "#rrggbb".
func (c RGBColor) MarshalText() ([]byte, error) {
	return []byte("#" + hex.EncodeToString(c[:])), nil
}

// LEDs describes a strip of LEDs. Colors are initialized to black (off).
type LEDs []RGBColor

// NewLEDs creates a new strip of LEDs.
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// Fill sets every LED in the strip to c.
func (l LEDs) Fill(c RGBColor) {
	for i := range l {
		l[i] = c
	}
}

// AsPixels returns the strip as three bytes per LED.
func (l LEDs) AsPixels() []uint8 {
	pix := make([]uint8, 0, 3*len(l))
	for _, c := range l {
		pix = append(pix, c[:]...)
	}
	return pix
}
