package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
	"github.com/riskibarqy/live-sports-hub/internal/platform/resilience"
	"github.com/stretchr/testify/require"
)

func TestWebhookPublisher_PostsPayloadWithKeyAndToken(t *testing.T) {
	t.Parallel()

	type received struct {
		auth, key, contentType, body string
	}
	got := make(chan received, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{
			auth:        r.Header.Get("Authorization"),
			key:         r.Header.Get(KeyHeader),
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	publisher, err := NewWebhookPublisher(WebhookPublisherConfig{URL: srv.URL + "/hooks/scores", Token: " secret "}, logging.NewNop())
	require.NoError(t, err)
	defer func() { _ = publisher.Close() }()

	require.NoError(t, publisher.Publish(context.Background(), "events_Soccer_all_2026-03-14", []byte(`{"type":"snapshot"}`)))

	select {
	case r := <-got:
		require.Equal(t, "Bearer secret", r.auth)
		require.Equal(t, "events_Soccer_all_2026-03-14", r.key)
		require.Equal(t, "application/json", r.contentType)
		require.Equal(t, `{"type":"snapshot"}`, r.body)
	case <-time.After(2 * time.Second):
		t.Fatalf("webhook was not called")
	}
}

func TestWebhookPublisher_TransientFailuresOpenCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	publisher, err := NewWebhookPublisher(WebhookPublisherConfig{
		URL: srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	for range 2 {
		err := publisher.Publish(ctx, "k", []byte(`{}`))
		require.Error(t, err)
		require.ErrorContains(t, err, "status=503")
	}

	err = publisher.Publish(ctx, "k", []byte(`{}`))
	require.True(t, errors.Is(err, resilience.ErrCircuitOpen), "expected open circuit, got %v", err)
	require.Equal(t, int32(2), calls.Load())
}

func TestWebhookPublisher_ClientErrorsKeepCircuitClosed(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	publisher, err := NewWebhookPublisher(WebhookPublisherConfig{
		URL:            srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1},
	}, logging.NewNop())
	require.NoError(t, err)

	for range 3 {
		err := publisher.Publish(context.Background(), "k", []byte(`{}`))
		require.ErrorContains(t, err, "status=400")
	}
	require.Equal(t, int32(3), calls.Load())
}

func TestNewWebhookPublisher_Validation(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://example.com/hook", "http://"} {
		_, err := NewWebhookPublisher(WebhookPublisherConfig{URL: raw}, logging.NewNop())
		require.Error(t, err, "url %q", raw)
	}
}
