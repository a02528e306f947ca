package waveform

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// writeWAV writes a 16-bit PCM wav file with the given interleaved samples.
func writeWAV(t *testing.T, path string, rate, channels int, samples []int) {
	t.Helper()
	writeWAVDepth(t, path, rate, channels, 16, samples)
}

func writeWAVDepth(t *testing.T, path string, rate, channels, depth int, samples []int) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, rate, depth, channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: depth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("failed to write wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to close wav encoder: %v", err)
	}
}

func TestSniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header []byte
		want   Format
		ok     bool
	}{
		{"wav", []byte("RIFF\x00\x00\x00\x00WAVEfmt "), WAV, true},
		{"riff but not wave", []byte("RIFF\x00\x00\x00\x00AVI "), "", false},
		{"ogg", []byte("OggS\x00\x02"), Vorbis, true},
		{"id3 tagged mp3", []byte("ID3\x04\x00"), MP3, true},
		{"bare mpeg frame", []byte{0xFF, 0xFB, 0x90, 0x64}, MP3, true},
		{"text", []byte("hello world!"), "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := Sniff(tt.header)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Sniff() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	t.Parallel()

	tests := map[string]Format{
		"song.mp3":            MP3,
		"downloaded_song.MP3": MP3,
		"a/b/track.wav":       WAV,
		"x.ogg":               Vorbis,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}

	if _, err := FormatFromPath("notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("FormatFromPath(notes.txt) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoad_WAVStereo(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stereo.wav")
	// Left at half scale, right silent: the mono mix is 0.25.
	samples := make([]int, 2*800)
	for i := 0; i < len(samples); i += 2 {
		samples[i] = 16384
	}
	writeWAV(t, path, 8000, 2, samples)

	pcm, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if pcm.SampleRate != 8000 || pcm.Channels != 2 || pcm.Frames() != 800 {
		t.Fatalf("Open() = %d Hz, %d channels, %d frames", pcm.SampleRate, pcm.Channels, pcm.Frames())
	}

	w, err := Load(path, 0)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if w.SampleRate != 8000 || len(w.Samples) != 800 {
		t.Fatalf("Load(0) = %d samples at %d Hz", len(w.Samples), w.SampleRate)
	}
	for i, s := range w.Samples {
		if math.Abs(s-0.25) > 1e-6 {
			t.Fatalf("sample %d = %v, want 0.25", i, s)
		}
	}
	if d := w.Duration(); math.Abs(d-0.1) > 1e-9 {
		t.Errorf("Duration() = %v, want 0.1", d)
	}
}

func TestLoad_WAVBitDepths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		depth   int
		samples []int
		want    []float64
	}{
		{
			name:    "8-bit silence",
			depth:   8,
			samples: []int{128, 128, 128, 128},
			want:    []float64{0, 0, 0, 0},
		},
		{
			name:    "8-bit extremes",
			depth:   8,
			samples: []int{0, 64, 192, 128},
			want:    []float64{-1, -0.5, 0.5, 0},
		},
		{
			name:    "24-bit",
			depth:   24,
			samples: []int{0, 4194304, -4194304, -8388608},
			want:    []float64{0, 0.5, -0.5, -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "depth.wav")
			writeWAVDepth(t, path, 8000, 1, tt.depth, tt.samples)

			w, err := Load(path, 0)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(w.Samples) != len(tt.want) {
				t.Fatalf("Load() = %d samples, want %d", len(w.Samples), len(tt.want))
			}
			for i, want := range tt.want {
				if math.Abs(w.Samples[i]-want) > 1e-6 {
					t.Errorf("sample %d = %v, want %v", i, w.Samples[i], want)
				}
			}
		})
	}
}

func TestLoad_Resamples(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "mono.wav")
	writeWAV(t, path, 11025, 1, make([]int, 11025))

	w, err := Load(path, DefaultSampleRate)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if w.SampleRate != DefaultSampleRate {
		t.Errorf("SampleRate = %d, want %d", w.SampleRate, DefaultSampleRate)
	}
	if len(w.Samples) != DefaultSampleRate {
		t.Errorf("len(Samples) = %d, want %d", len(w.Samples), DefaultSampleRate)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.mp3"), DefaultSampleRate); err == nil {
		t.Error("Load(missing) error = nil")
	}

	garbage := filepath.Join(dir, "garbage.mp3")
	if err := os.WriteFile(garbage, []byte("definitely not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(garbage, DefaultSampleRate); err == nil {
		t.Error("Load(garbage) error = nil")
	}

	if _, err := Load(garbage, -1); err == nil {
		t.Error("Load(negative rate) error = nil")
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Decode(bytes.NewReader(nil), Format("flac")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode(flac) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Decode(bytes.NewReader([]byte("OggS broken")), Vorbis); err == nil {
		t.Error("Decode(broken ogg) error = nil")
	}
	if _, err := Decode(bytes.NewReader([]byte("RIFF")), WAV); err == nil {
		t.Error("Decode(truncated wav) error = nil")
	}
}

func TestResample(t *testing.T) {
	t.Parallel()

	up := Resample([]float64{0, 1}, 1, 2)
	want := []float64{0, 0.5, 1, 1}
	if len(up) != len(want) {
		t.Fatalf("Resample() = %v, want %v", up, want)
	}
	for i := range want {
		if math.Abs(up[i]-want[i]) > 1e-12 {
			t.Errorf("Resample()[%d] = %v, want %v", i, up[i], want[i])
		}
	}

	down := Resample(make([]float64, 44100), 44100, 22050)
	if len(down) != 22050 {
		t.Errorf("downsampled length = %d, want 22050", len(down))
	}

	same := []float64{1, 2, 3}
	if got := Resample(same, 8000, 8000); &got[0] != &same[0] {
		t.Error("Resample() copied a signal that needed no conversion")
	}
}

func TestPCM_Int16LE(t *testing.T) {
	t.Parallel()

	p := &PCM{Samples: []float32{0, 1, -1, 2, -2}, SampleRate: 8000, Channels: 1}
	raw := p.Int16LE()

	want := []int16{0, 32767, -32767, 32767, -32768}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		if got != w {
			t.Errorf("sample %d = %d, want %d", i, got, w)
		}
	}
}
