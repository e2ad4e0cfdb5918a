// Package audio inspects synthesized audio without decoding it fully.
package audio

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always reports 16-bit stereo output
const bytesPerSample = 4

var ErrEmptyAudio = errors.New("audio is empty")

// Inspector measures playback length
type Inspector struct{}

// NewInspector creates an Inspector
func NewInspector() *Inspector {
	return &Inspector{}
}

// DurationMillis returns the play length of an MP3 payload in whole
// milliseconds. The length comes from scanning frame headers; only the
// first frame is decoded.
func (i *Inspector) DurationMillis(data []byte) (int64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyAudio
	}

	// bytes.Reader is an io.Seeker, which lets the decoder compute Length up front
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("parse mp3 header: %w", err)
	}

	length := decoder.Length()
	rate := decoder.SampleRate()
	if length < 0 || rate <= 0 {
		return 0, fmt.Errorf("mp3 length unavailable (length=%d, sample_rate=%d)", length, rate)
	}

	samples := length / bytesPerSample
	return samples * 1000 / int64(rate), nil
}
