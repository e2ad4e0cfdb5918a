package models

import (
	"time"

	"github.com/lyzr/line-relay/common/tts"
)

// SidecarRecord is the JSON object stored next to each media upload.
// Nothing reads it back; it exists for audit and debugging.
type SidecarRecord struct {
	Kind        string       `json:"kind"`
	Recipient   string       `json:"recipient"`
	RequestID   string       `json:"request_id,omitempty"`
	MediaKey    string       `json:"media_key"`
	ETag        string       `json:"etag"`
	ContentType string       `json:"content_type"`
	SizeBytes   int64        `json:"size_bytes"`
	Caption     string       `json:"caption,omitempty"`
	TTSText     string       `json:"tts_text,omitempty"`
	TTSOptions  *tts.Options `json:"tts_options,omitempty"`
	DurationMs  *int64       `json:"duration_ms,omitempty"`
	Filename    string       `json:"filename,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
