package messaging

import "errors"

var (
	ErrNoParts        = errors.New("at least one message part is required")
	ErrEmptyText      = errors.New("text part is empty after trimming")
	ErrMissingURL     = errors.New("media part requires a URL")
	ErrNegativeLength = errors.New("audio duration must be non-negative")
)

// Part is one ordered element of a push: Text, Audio or Image
type Part interface {
	partType() string
}

// Text is a plain text message. Body is trimmed before sending.
type Text struct {
	Body string
}

// Audio references stored audio. DurationMs must be measured before the part is built.
type Audio struct {
	URL        string
	DurationMs int64
}

// Image references a stored image
type Image struct {
	URL        string
	PreviewURL string
}

func (Text) partType() string  { return "text" }
func (Audio) partType() string { return "audio" }
func (Image) partType() string { return "image" }

// SentMessage is one acknowledged message
type SentMessage struct {
	ID         string `json:"id"`
	QuoteToken string `json:"quoteToken,omitempty"`
}

// PushResult is the platform acknowledgment of a push
type PushResult struct {
	SentMessages []SentMessage `json:"sentMessages"`
}
