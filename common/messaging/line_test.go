package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lyzr/line-relay/common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedPush struct {
	Path          string
	Authorization string
	Body          struct {
		To       string           `json:"to"`
		Messages []map[string]any `json:"messages"`
	}
}

// fakeLine answers the push endpoint with status and body, recording each call
func fakeLine(t *testing.T, status int, body string, calls *[]capturedPush) *LineClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var c capturedPush
		c.Path = r.URL.Path
		c.Authorization = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &c.Body))
		*calls = append(*calls, c)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	client, err := NewLineClient(Options{AccessToken: "secret-token", Endpoint: srv.URL, Timeout: 5 * time.Second}, logger.Discard())
	require.NoError(t, err)
	return client
}

func TestPush_TextIsTrimmed(t *testing.T) {
	var calls []capturedPush
	client := fakeLine(t, http.StatusOK, `{"sentMessages":[{"id":"100","quoteToken":"q1"}]}`, &calls)

	result, err := client.Push(context.Background(), "U1", []Part{Text{Body: "  hello \n"}})
	require.NoError(t, err)

	require.Len(t, calls, 1)
	assert.Equal(t, "/v2/bot/message/push", calls[0].Path)
	assert.Equal(t, "Bearer secret-token", calls[0].Authorization)
	assert.Equal(t, "U1", calls[0].Body.To)
	require.Len(t, calls[0].Body.Messages, 1)
	assert.Equal(t, "text", calls[0].Body.Messages[0]["type"])
	assert.Equal(t, "hello", calls[0].Body.Messages[0]["text"])

	assert.Equal(t, []SentMessage{{ID: "100", QuoteToken: "q1"}}, result.SentMessages)
}

func TestPush_PreservesOrderInOneCall(t *testing.T) {
	var calls []capturedPush
	client := fakeLine(t, http.StatusOK, `{"sentMessages":[{"id":"1"},{"id":"2"}]}`, &calls)

	_, err := client.Push(context.Background(), "U1", []Part{
		Text{Body: "caption"},
		Audio{URL: "https://cdn.example.com/media/tts/a.mp3", DurationMs: 1200},
	})
	require.NoError(t, err)

	require.Len(t, calls, 1)
	msgs := calls[0].Body.Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "text", msgs[0]["type"])
	assert.Equal(t, "audio", msgs[1]["type"])
	assert.Equal(t, "https://cdn.example.com/media/tts/a.mp3", msgs[1]["originalContentUrl"])
	assert.EqualValues(t, 1200, msgs[1]["duration"])
}

func TestPush_ImagePreviewDefaultsToURL(t *testing.T) {
	var calls []capturedPush
	client := fakeLine(t, http.StatusOK, `{"sentMessages":[{"id":"1"}]}`, &calls)

	_, err := client.Push(context.Background(), "U1", []Part{Image{URL: "https://cdn.example.com/media/image/x.png"}})
	require.NoError(t, err)

	msg := calls[0].Body.Messages[0]
	assert.Equal(t, "image", msg["type"])
	assert.Equal(t, msg["originalContentUrl"], msg["previewImageUrl"])
}

func TestPush_RejectsEmptyParts(t *testing.T) {
	var calls []capturedPush
	client := fakeLine(t, http.StatusOK, `{}`, &calls)

	_, err := client.Push(context.Background(), "U1", nil)
	assert.ErrorIs(t, err, ErrNoParts)

	_, err = client.Push(context.Background(), "U1", []Part{Text{Body: "   "}})
	assert.ErrorIs(t, err, ErrEmptyText)

	assert.Empty(t, calls)
}

func TestPush_ErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   DeliveryKind
	}{
		{"rate limited", http.StatusTooManyRequests, `{"message":"You have reached your monthly limit."}`, KindRateLimited},
		{"bad token", http.StatusUnauthorized, `{"message":"Authentication failed."}`, KindInvalidCredential},
		{"bad recipient", http.StatusBadRequest, `{"message":"The request body has 1 error(s)","details":[{"message":"The property, 'to', in the request body is invalid (line 1, column 7)","property":"to"}]}`, KindInvalidRecipient},
		{"bad message", http.StatusBadRequest, `{"message":"The request body has 1 error(s)","details":[{"message":"Length must be between 0 and 5000","property":"messages[0].text"}]}`, KindMalformed},
		{"platform down", http.StatusInternalServerError, `{"message":"internal"}`, KindUpstream},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls []capturedPush
			client := fakeLine(t, tc.status, tc.body, &calls)

			_, err := client.Push(context.Background(), "U1", []Part{Text{Body: "hi"}})

			var deliveryErr *DeliveryError
			require.True(t, errors.As(err, &deliveryErr))
			assert.Equal(t, tc.kind, deliveryErr.Kind)
			assert.Equal(t, tc.status, deliveryErr.StatusCode)
			assert.JSONEq(t, tc.body, deliveryErr.Body)
		})
	}
}

func TestPush_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	client, err := NewLineClient(Options{AccessToken: "t", Endpoint: endpoint, Timeout: time.Second}, logger.Discard())
	require.NoError(t, err)

	_, err = client.Push(context.Background(), "U1", []Part{Text{Body: "hi"}})

	var deliveryErr *DeliveryError
	require.True(t, errors.As(err, &deliveryErr))
	assert.Equal(t, KindUpstream, deliveryErr.Kind)
	assert.Equal(t, 0, deliveryErr.StatusCode)
	assert.Empty(t, deliveryErr.Body)
}

func TestResponseBody_FallsBackToErrorText(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusBadRequest}
	err := fmt.Errorf("unexpected status code: 400, %s", `{"message":"bad, very bad"}`)

	assert.Equal(t, `{"message":"bad, very bad"}`, responseBody(resp, err))
	assert.Empty(t, responseBody(resp, errors.New("dial tcp: refused")))
}
