// Package messaging pushes ordered message parts to a LINE user.
package messaging

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Options configures a LineClient
type Options struct {
	AccessToken string
	Endpoint    string // empty = SDK default
	Timeout     time.Duration
}

// LineClient sends pushes through the LINE Messaging API
type LineClient struct {
	api    *messaging_api.MessagingApiAPI
	logger Logger
}

// NewLineClient creates a client. No network call is made.
func NewLineClient(opts Options, logger Logger) (*LineClient, error) {
	apiOpts := []messaging_api.MessagingApiAPIOption{
		messaging_api.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.Endpoint != "" {
		apiOpts = append(apiOpts, messaging_api.WithEndpoint(opts.Endpoint))
	}

	api, err := messaging_api.NewMessagingApiAPI(opts.AccessToken, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &LineClient{api: api, logger: logger}, nil
}

// Push sends parts to recipient in one API call, preserving their order
func (c *LineClient) Push(ctx context.Context, recipient string, parts []Part) (*PushResult, error) {
	messages, err := toMessages(parts)
	if err != nil {
		return nil, err
	}

	// WithContext stores ctx on its receiver; use a copy so concurrent pushes never share one
	api := *c.api
	resp, out, err := api.WithContext(ctx).PushMessageWithHttpInfo(&messaging_api.PushMessageRequest{
		To:       recipient,
		Messages: messages,
	}, "")
	if err != nil {
		deliveryErr := newDeliveryError(resp, err)
		c.logger.Warn("push failed",
			"recipient", recipient,
			"kind", deliveryErr.Kind,
			"status", deliveryErr.StatusCode,
			"error", err,
		)
		return nil, deliveryErr
	}

	result := &PushResult{SentMessages: make([]SentMessage, 0, len(out.SentMessages))}
	for _, m := range out.SentMessages {
		result.SentMessages = append(result.SentMessages, SentMessage{ID: m.Id, QuoteToken: m.QuoteToken})
	}

	c.logger.Info("push delivered", "recipient", recipient, "parts", len(parts), "sent", len(result.SentMessages))
	return result, nil
}

// toMessages validates parts and converts them to API messages in order
func toMessages(parts []Part) ([]messaging_api.MessageInterface, error) {
	if len(parts) == 0 {
		return nil, ErrNoParts
	}

	messages := make([]messaging_api.MessageInterface, 0, len(parts))
	for i, part := range parts {
		switch p := part.(type) {
		case Text:
			body := strings.TrimSpace(p.Body)
			if body == "" {
				return nil, fmt.Errorf("part %d: %w", i, ErrEmptyText)
			}
			messages = append(messages, &messaging_api.TextMessage{Text: body})
		case Audio:
			if p.URL == "" {
				return nil, fmt.Errorf("part %d: %w", i, ErrMissingURL)
			}
			if p.DurationMs < 0 {
				return nil, fmt.Errorf("part %d: %w", i, ErrNegativeLength)
			}
			messages = append(messages, &messaging_api.AudioMessage{
				OriginalContentUrl: p.URL,
				Duration:           p.DurationMs,
			})
		case Image:
			if p.URL == "" {
				return nil, fmt.Errorf("part %d: %w", i, ErrMissingURL)
			}
			preview := p.PreviewURL
			if preview == "" {
				preview = p.URL
			}
			messages = append(messages, &messaging_api.ImageMessage{
				OriginalContentUrl: p.URL,
				PreviewImageUrl:    preview,
			})
		default:
			return nil, fmt.Errorf("part %d: unsupported part type %T", i, part)
		}
	}
	return messages, nil
}
