package models

import (
	"github.com/lyzr/line-relay/common/messaging"
	"github.com/lyzr/line-relay/common/optional"
	"github.com/lyzr/line-relay/common/tts"
)

// TextPushRequest is the body of POST v1/push_message/:userId/text
type TextPushRequest struct {
	Text string `json:"text"`
}

// TTSPushRequest is the body of POST v1/push_message/:userId/tts
type TTSPushRequest struct {
	TTS     string                  `json:"tts"`
	Text    string                  `json:"text,omitempty"` // optional caption
	Volume  optional.Value[float64] `json:"volume"`
	Pitch   optional.Value[float64] `json:"pitch"`
	Speed   optional.Value[float64] `json:"speed"`
	Speaker optional.Value[int]     `json:"speaker"`
}

// SynthesisOptions converts the voice parameters, keeping unset ones unset
func (r TTSPushRequest) SynthesisOptions() tts.Options {
	return tts.Options{
		Volume:  r.Volume,
		Pitch:   r.Pitch,
		Speed:   r.Speed,
		Speaker: r.Speaker,
		Format:  tts.DefaultFormat,
	}
}

// ImageUpload is the multipart image part of POST v1/push_message/:userId/image
type ImageUpload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// PushResponse is returned by the text endpoint
type PushResponse struct {
	SentMessages []messaging.SentMessage `json:"sentMessages"`
}

// TTSPushResponse is returned by the tts endpoint
type TTSPushResponse struct {
	SentMessages     []messaging.SentMessage `json:"sentMessages"`
	TTSAudioURL      string                  `json:"tts_audio_url"`
	TTSAudioDuration int64                   `json:"tts_audio_duration"`
}

// ImagePushResponse is returned by the image endpoint
type ImagePushResponse struct {
	SentMessages []messaging.SentMessage `json:"sentMessages"`
	ImageURL     string                  `json:"image_url"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}
