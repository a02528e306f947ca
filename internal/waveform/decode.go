package waveform

import (
	"bufio"
	"bytes"
	"io"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/pkg/errors"
)

// Format is an audio container format.
type Format string

const (
	MP3    Format = "mp3"
	WAV    Format = "wav"
	Vorbis Format = "ogg vorbis"
)

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return MP3, nil
	case ".wav", ".wave":
		return WAV, nil
	case ".ogg", ".oga":
		return Vorbis, nil
	default:
		return "", errors.Wrapf(ErrUnsupportedFormat, "unknown extension %q", filepath.Ext(path))
	}
}

// Sniff guesses the format from the first bytes of a file. It returns false
// if the header is not recognized.
func Sniff(header []byte) (Format, bool) {
	switch {
	case len(header) >= 12 && bytes.HasPrefix(header, []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return WAV, true
	case bytes.HasPrefix(header, []byte("OggS")):
		return Vorbis, true
	case bytes.HasPrefix(header, []byte("ID3")):
		return MP3, true
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG frame sync.
		return MP3, true
	default:
		return "", false
	}
}

// Decode reads all of r as format.
func Decode(r io.Reader, format Format) (*PCM, error) {
	var (
		pcm *PCM
		err error
	)

	switch format {
	case MP3:
		pcm, err = decodeMP3(r)
	case WAV:
		pcm, err = decodeWAV(r)
	case Vorbis:
		pcm, err = decodeVorbis(r)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", format)
	}

	if len(pcm.Samples) == 0 {
		return nil, errors.Wrapf(ErrEmpty, "no samples in %s stream", format)
	}
	return pcm, nil
}

// DecodeAuto sniffs the format from the stream header, falling back to
// fallback when the header is not recognized.
func DecodeAuto(r io.Reader, fallback Format) (*PCM, error) {
	br := bufio.NewReader(r)

	header, _ := br.Peek(12)
	format, ok := Sniff(header)
	if !ok {
		format = fallback
	}

	return Decode(br, format)
}

func decodeMP3(r io.Reader) (*PCM, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	// go-mp3 always produces 16-bit little endian stereo.
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}

	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		samples[i] = float32(v) / 32768.0
	}

	return &PCM{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}

func decodeWAV(r io.Reader) (*PCM, error) {
	// go-audio needs to seek.
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, errors.Wrap(ErrUnsupportedFormat, "not a valid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, errors.Wrap(ErrUnsupportedFormat, "wav file has no channels")
	}

	return &PCM{
		Samples:    intToFloat(buf, int(dec.BitDepth)),
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}

func intToFloat(buf *goaudio.IntBuffer, bitDepth int) []float32 {
	// 8-bit wav is unsigned with silence at 128.
	var offset, scale float32
	switch bitDepth {
	case 8:
		offset, scale = 128.0, 128.0
	case 24:
		scale = 8388608.0
	case 32:
		scale = 2147483648.0
	default:
		scale = 32768.0
	}

	samples := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = (float32(v) - offset) / scale
	}
	return samples
}

func decodeVorbis(r io.Reader) (*PCM, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}

	var samples []float32
	buf := make([]float32, 4096*dec.Channels())
	for {
		n, err := dec.Read(buf)
		samples = append(samples, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return &PCM{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   dec.Channels(),
	}, nil
}
