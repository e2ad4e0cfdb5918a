package messaging

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 4096

// DeliveryKind classifies push failures
type DeliveryKind string

const (
	KindInvalidRecipient  DeliveryKind = "invalid_recipient"
	KindInvalidCredential DeliveryKind = "invalid_credential"
	KindRateLimited       DeliveryKind = "rate_limited"
	KindMalformed         DeliveryKind = "malformed"
	KindUpstream          DeliveryKind = "upstream"
)

// DeliveryError is returned when the platform rejects or never answers a push.
// StatusCode is 0 when no response was received.
type DeliveryError struct {
	Kind       DeliveryKind
	StatusCode int
	Body       string // raw platform response body, empty without a response
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("push %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("push %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// newDeliveryError classifies a failed push from its status and, for a 400,
// whether the platform's body blames the recipient.
func newDeliveryError(resp *http.Response, err error) *DeliveryError {
	if resp == nil {
		return &DeliveryError{Kind: KindUpstream, Err: err}
	}

	body := responseBody(resp, err)

	kind := KindUpstream
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = KindRateLimited
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		kind = KindInvalidCredential
	case resp.StatusCode == http.StatusBadRequest && mentionsRecipient(body):
		kind = KindInvalidRecipient
	case resp.StatusCode == http.StatusNotFound:
		kind = KindInvalidRecipient
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		kind = KindMalformed
	}
	return &DeliveryError{Kind: kind, StatusCode: resp.StatusCode, Body: body, Err: err}
}

// responseBody reads the platform's error body. The SDK buffers it back onto
// resp.Body and also folds it into err as "unexpected status code: N, <body>".
func responseBody(resp *http.Response, err error) string {
	if resp.Body != nil {
		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr == nil && len(data) > 0 {
			return string(data)
		}
	}
	if err == nil {
		return ""
	}

	msg := err.Error()
	if !strings.HasPrefix(msg, "unexpected status code:") {
		return ""
	}
	_, body, _ := strings.Cut(msg, ", ")
	return body
}

func mentionsRecipient(body string) bool {
	return strings.Contains(body, `'to'`) || strings.Contains(body, `"property":"to"`)
}
