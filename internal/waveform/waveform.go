// Package waveform loads audio files into sampled waveforms for analysis and
// playback.
//
// Files are decoded in full, mixed down to mono and resampled to the
// analysis rate:
//
//	w, err := waveform.Load("song.mp3", waveform.DefaultSampleRate)
//	// w.Samples is mono at 22050 Hz
package waveform

import (
	"os"

	"github.com/pkg/errors"
)

// DefaultSampleRate is the analysis sample rate.
const DefaultSampleRate = 22050

var (
	// ErrUnsupportedFormat is returned for files that cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrEmpty is returned when a file decodes to no samples.
	ErrEmpty = errors.New("empty audio stream")
)

// Waveform is a mono signal at a fixed sample rate. It is not modified after
// loading.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the length of the waveform in seconds.
func (w *Waveform) Duration() float64 {
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// Open decodes the file at path, sniffing its format and falling back to the
// file extension.
func Open(path string) (*PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open audio file")
	}
	defer f.Close()

	fallback, err := FormatFromPath(path)
	if err != nil {
		fallback = MP3
	}

	return DecodeAuto(f, fallback)
}

// Load decodes the file at path into a mono waveform at rate. A rate of 0
// keeps the file's own sample rate.
func Load(path string, rate int) (*Waveform, error) {
	if rate < 0 {
		return nil, errors.Errorf("invalid sample rate %d", rate)
	}

	pcm, err := Open(path)
	if err != nil {
		return nil, err
	}

	mono := pcm.Mono()
	if rate == 0 {
		rate = pcm.SampleRate
	} else {
		mono = Resample(mono, pcm.SampleRate, rate)
	}

	return &Waveform{
		Samples:    mono,
		SampleRate: rate,
	}, nil
}
