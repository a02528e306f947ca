// Package envelope computes the framed RMS energy envelope of a waveform.
package envelope

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// DefaultFrame is the frame duration used when none is configured.
const DefaultFrame = 200 * time.Millisecond

var (
	// ErrInvalidInput is returned for an empty waveform or a non-positive
	// sample rate.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfiguration is returned when the frame duration yields
	// frames shorter than one sample.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// FrameLength returns the number of samples in one frame, which is
// floor(frame × rate).
func FrameLength(rate int, frame time.Duration) (int, error) {
	if rate <= 0 {
		return 0, errors.Wrapf(ErrInvalidInput, "sample rate %d", rate)
	}
	if frame <= 0 {
		return 0, errors.Wrapf(ErrInvalidConfiguration, "frame duration %v", frame)
	}

	// Integer math keeps 200ms × 22050 at exactly 4410.
	n := int(int64(frame) * int64(rate) / int64(time.Second))
	if n < 1 {
		return 0, errors.Wrapf(ErrInvalidConfiguration,
			"frame duration %v at %d Hz is shorter than one sample", frame, rate)
	}
	return n, nil
}

// Extract returns one normalized RMS value per frame of samples. Frames do
// not overlap and the last one may be shorter than the rest. Values are
// divided by the largest one, so a non-silent waveform always has a 1.0 in
// its envelope; a silent waveform yields all zeros.
func Extract(samples []float64, rate int, frame time.Duration) ([]float64, error) {
	if len(samples) == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "empty waveform")
	}

	n, err := FrameLength(rate, frame)
	if err != nil {
		return nil, err
	}

	energies := make([]float64, 0, (len(samples)+n-1)/n)
	var peak float64

	for start := 0; start < len(samples); start += n {
		end := min(start+n, len(samples))
		e := rms(samples[start:end])
		if e > peak {
			peak = e
		}
		energies = append(energies, e)
	}

	if peak > 0 {
		for i, e := range energies {
			energies[i] = e / peak
		}
	}

	return energies, nil
}

func rms(frame []float64) float64 {
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}
