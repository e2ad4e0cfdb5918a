// Package tts calls the external text-to-speech endpoint.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/lyzr/line-relay/common/clients"
	"github.com/lyzr/line-relay/common/optional"
)

// Default values.
const (
	DefaultFormat      = "mp3"
	defaultContentType = "audio/mpeg"
	maxErrorBody       = 4096
)

var ErrTextEmpty = errors.New("text cannot be empty")

// Options are the voice parameters. Only parameters that are set are forwarded;
// an explicit zero is a valid setting and is sent as such.
type Options struct {
	Volume  optional.Value[float64] `json:"volume"`
	Pitch   optional.Value[float64] `json:"pitch"`
	Speed   optional.Value[float64] `json:"speed"`
	Speaker optional.Value[int]     `json:"speaker"`
	Format  string                  `json:"format,omitempty"`
}

// Audio is what the endpoint returned
type Audio struct {
	Data        []byte
	ContentType string
}

// SynthesisError carries the raw upstream status and body for diagnostics
type SynthesisError struct {
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech synthesis failed: %v", e.Err)
	}
	return fmt.Sprintf("speech synthesis returned %s: %s", e.Status, e.Body)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// Client calls a query-parameter based TTS endpoint. It applies no timeout of
// its own; long texts may take a while and the caller's context bounds the call.
type Client struct {
	http     *clients.HTTPClient
	endpoint string
	logger   clients.Logger
}

// NewClient creates a client for endpoint. httpClient may be nil.
func NewClient(endpoint string, httpClient *http.Client, logger clients.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:     clients.NewHTTPClient(httpClient, logger),
		endpoint: endpoint,
		logger:   logger,
	}
}

// Synthesize converts text to speech
func (c *Client) Synthesize(ctx context.Context, text string, opts Options) (*Audio, error) {
	if text == "" {
		return nil, ErrTextEmpty
	}

	target, err := c.buildURL(text, opts)
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}

	resp, err := c.http.DoRequest(ctx, http.MethodGet, target, nil, nil)
	if err != nil {
		return nil, &SynthesisError{Err: fmt.Errorf("request to %s: %w", c.endpoint, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("tts endpoint returned error", "status", resp.StatusCode, "body", string(body))
		return nil, &SynthesisError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(body)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SynthesisError{StatusCode: resp.StatusCode, Status: resp.Status, Err: fmt.Errorf("read audio: %w", err)}
	}
	if len(data) == 0 {
		return nil, &SynthesisError{StatusCode: resp.StatusCode, Status: resp.Status, Err: errors.New("received empty audio data")}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}

	c.logger.Info("speech synthesized", "bytes", len(data), "content_type", contentType)
	return &Audio{Data: data, ContentType: contentType}, nil
}

func (c *Client) buildURL(text string, opts Options) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", c.endpoint, err)
	}

	format := opts.Format
	if format == "" {
		format = DefaultFormat
	}

	q := u.Query()
	q.Set("text", text)
	q.Set("format", format)
	setFloat(q, "volume", opts.Volume)
	setFloat(q, "pitch", opts.Pitch)
	setFloat(q, "speed", opts.Speed)
	if speaker, ok := opts.Speaker.Get(); ok {
		q.Set("speaker", strconv.Itoa(speaker))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func setFloat(q url.Values, name string, v optional.Value[float64]) {
	if f, ok := v.Get(); ok {
		q.Set(name, strconv.FormatFloat(f, 'f', -1, 64))
	}
}
