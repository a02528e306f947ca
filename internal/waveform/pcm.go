package waveform

import (
	"encoding/binary"
	"math"
)

// PCM is decoded audio with interleaved samples in [-1, 1].
type PCM struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of samples per channel.
func (p *PCM) Frames() int {
	return len(p.Samples) / p.Channels
}

// Mono averages all channels into one.
func (p *PCM) Mono() []float64 {
	frames := p.Frames()
	mono := make([]float64, frames)

	if p.Channels == 1 {
		for i := range frames {
			mono[i] = float64(p.Samples[i])
		}
		return mono
	}

	inv := 1 / float64(p.Channels)
	for f := range frames {
		var sum float64
		base := f * p.Channels
		for c := range p.Channels {
			sum += float64(p.Samples[base+c])
		}
		mono[f] = sum * inv
	}
	return mono
}

// Int16LE renders the samples as interleaved 16-bit little endian PCM,
// clipping anything outside [-1, 1].
func (p *PCM) Int16LE() []byte {
	out := make([]byte, 2*len(p.Samples))
	for i, s := range p.Samples {
		v := math.Round(float64(s) * 32767)
		v = max(-32768, min(32767, v))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v)))
	}
	return out
}

// Resample converts a mono signal from one rate to another with linear
// interpolation. The result has round(len × to / from) samples.
func Resample(samples []float64, from, to int) []float64 {
	if from == to || len(samples) == 0 {
		return samples
	}

	n := int(math.Round(float64(len(samples)) * float64(to) / float64(from)))
	if n < 1 {
		n = 1
	}

	out := make([]float64, n)
	step := float64(from) / float64(to)
	last := len(samples) - 1

	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= last {
			out[i] = samples[last]
			continue
		}
		frac := pos - float64(j)
		out[i] = samples[j] + (samples[j+1]-samples[j])*frac
	}
	return out
}
