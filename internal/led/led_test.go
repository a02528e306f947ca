package led

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRGBColor_Text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    RGBColor
		wantErr bool
	}{
		{"#ff8000", RGBColor{0xFF, 0x80, 0x00}, false},
		{"0a96cc", RGBColor{0x0A, 0x96, 0xCC}, false},
		{"#fff", RGBColor{}, true},
		{"#gg0000", RGBColor{}, true},
	}

	for _, tt := range tests {
		var c RGBColor
		err := c.UnmarshalText([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && c != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, c, tt.want)
		}
	}

	text, _ := RGBColor{0x0A, 0x96, 0xCC}.MarshalText()
	if string(text) != "#0a96cc" {
		t.Errorf("MarshalText() = %q, want #0a96cc", text)
	}
}

func TestLEDs_Pixels(t *testing.T) {
	t.Parallel()

	leds := NewLEDs(3)
	if got := leds.AsPixels(); !bytes.Equal(got, make([]byte, 9)) {
		t.Errorf("new strip pixels = %v, want all zero", got)
	}

	leds.Fill(RGBColor{1, 2, 3})
	want := []byte{1, 2, 3, 1, 2, 3, 1, 2, 3}
	if got := leds.AsPixels(); !bytes.Equal(got, want) {
		t.Errorf("filled strip pixels = %v, want %v", got, want)
	}
}

func TestLogOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	o := NewLogOutput(slog.New(slog.NewTextHandler(&buf, nil)))

	if err := o.On(); err != nil {
		t.Fatalf("On() error = %v", err)
	}
	if !o.IsOn() {
		t.Error("IsOn() = false after On()")
	}
	if err := o.Off(); err != nil {
		t.Fatalf("Off() error = %v", err)
	}
	if o.IsOn() {
		t.Error("IsOn() = true after Off()")
	}

	if n := strings.Count(buf.String(), "msg=led"); n != 2 {
		t.Errorf("logged %d led lines, want 2:\n%s", n, buf.String())
	}
}
