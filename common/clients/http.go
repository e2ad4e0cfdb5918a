package clients

import (
	"context"
	"io"
	"net/http"
)

// Logger interface for HTTP client logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// HTTPClient wraps http.Client with context-aware helpers
// It automatically extracts metadata from context and adds appropriate headers
type HTTPClient struct {
	client *http.Client
	logger Logger
}

// NewHTTPClient creates a new HTTP client wrapper
func NewHTTPClient(client *http.Client, logger Logger) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{
		client: client,
		logger: logger,
	}
}

// DoRequest creates and executes an HTTP request, extracting metadata from context
func (c *HTTPClient) DoRequest(ctx context.Context, method, url string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	// Correlate upstream calls with the inbound request
	if requestID, ok := GetRequestID(ctx); ok {
		req.Header.Set("X-Request-ID", requestID)
		c.logger.Debug("added X-Request-ID header from context", "request_id", requestID)
	}

	return c.client.Do(req)
}
