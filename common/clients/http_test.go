package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

func TestDoRequest_PropagatesRequestID(t *testing.T) {
	var gotID, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.Client(), nopLogger{})
	ctx := WithRequestID(context.Background(), "req-42")

	resp, err := client.DoRequest(ctx, http.MethodGet, srv.URL, nil, http.Header{"Accept": {"audio/mpeg"}})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-42", gotID)
	assert.Equal(t, "audio/mpeg", gotAccept)
}

func TestDoRequest_NoRequestIDHeaderWhenAbsent(t *testing.T) {
	var present bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["X-Request-Id"]
	}))
	defer srv.Close()

	client := NewHTTPClient(nil, nopLogger{})
	resp, err := client.DoRequest(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.False(t, present)
}

func TestGetRequestID_EmptyIsAbsent(t *testing.T) {
	_, ok := GetRequestID(WithRequestID(context.Background(), ""))
	assert.False(t, ok)
}
