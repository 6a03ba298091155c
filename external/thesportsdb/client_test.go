package thesportsdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/platform/resilience"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
)

var testDay = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

const okPayload = `{"events":[{"idEvent":"441613","strEvent":"Arsenal vs Chelsea","strLeague":"English Premier League","strSport":"Soccer","intHomeScore":"2","intAwayScore":1,"strStatus":"Match Finished","strTime":"15:00:00","dateEvent":"2026-03-14"}]}`

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleeps) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.delays = append(r.delays, d)
	r.mu.Unlock()
	return ctx.Err()
}

func newTestClient(t *testing.T, baseURL string, cfg ClientConfig) (*Client, *recordedSleeps) {
	t.Helper()

	cfg.BaseURL = baseURL
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 2 * time.Second}
	}
	client := NewClient(cfg)
	sleeps := &recordedSleeps{}
	client.sleep = sleeps.sleep
	return client, sleeps
}

func TestClient_FetchEvents_RetriesTransientThenSucceeds(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 4 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(okPayload))
	}))
	defer srv.Close()

	client, sleeps := newTestClient(t, srv.URL, ClientConfig{BackoffBase: time.Second, BackoffMax: time.Minute})

	events, err := client.FetchEvents(context.Background(), "Soccer", "", testDay)
	if err != nil {
		t.Fatalf("FetchEvents error: %v", err)
	}
	if got := calls.Load(); got != 5 {
		t.Fatalf("expected 5 requests, got %d", got)
	}
	if len(events) != 1 || events[0].IDEvent.String() != "441613" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].IntAwayScore.String() != "1" {
		t.Fatalf("numeric score not decoded: %q", events[0].IntAwayScore)
	}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(sleeps.delays) != len(want) {
		t.Fatalf("expected %d backoff sleeps, got %v", len(want), sleeps.delays)
	}
	for i := range want {
		if sleeps.delays[i] != want[i] {
			t.Fatalf("backoff[%d]=%s, want %s", i, sleeps.delays[i], want[i])
		}
	}
}

func TestClient_FetchEvents_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, sleeps := newTestClient(t, srv.URL, ClientConfig{})

	_, err := client.FetchEvents(context.Background(), "Soccer", "", testDay)
	if !errors.Is(err, usecase.ErrTransientFetch) {
		t.Fatalf("expected transient fetch error, got %v", err)
	}

	var fetchErr *usecase.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %T", err)
	}
	if fetchErr.Attempts != DefaultMaxAttempts || fetchErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected fetch error details: %+v", fetchErr)
	}
	if got := calls.Load(); got != DefaultMaxAttempts {
		t.Fatalf("expected %d requests, got %d", DefaultMaxAttempts, got)
	}
	if len(sleeps.delays) != DefaultMaxAttempts-1 {
		t.Fatalf("expected %d sleeps, got %d", DefaultMaxAttempts-1, len(sleeps.delays))
	}
}

func TestClient_FetchEvents_FatalStatusIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client, sleeps := newTestClient(t, srv.URL, ClientConfig{})

	_, err := client.FetchEvents(context.Background(), "Soccer", "", testDay)
	if !errors.Is(err, usecase.ErrFatalFetch) {
		t.Fatalf("expected fatal fetch error, got %v", err)
	}
	if errors.Is(err, usecase.ErrTransientFetch) {
		t.Fatalf("fatal error must not match transient")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly 1 request, got %d", got)
	}
	if len(sleeps.delays) != 0 {
		t.Fatalf("expected no backoff, got %v", sleeps.delays)
	}
}

func TestClient_FetchEvents_MalformedBody(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, ClientConfig{})

	_, err := client.FetchEvents(context.Background(), "Soccer", "", testDay)
	if !errors.Is(err, usecase.ErrMalformedData) {
		t.Fatalf("expected malformed data error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("malformed payload must not be retried, got %d requests", got)
	}
}

func TestClient_FetchEvents_NullEventsIsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events":null}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, ClientConfig{})

	events, err := client.FetchEvents(context.Background(), "Basketball", "", testDay)
	if err != nil {
		t.Fatalf("FetchEvents error: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", events)
	}
}

func TestClient_FetchEvents_SendsQueryAndUserAgent(t *testing.T) {
	t.Parallel()

	type seen struct {
		path, d, s, l, ua string
		hasLeague         bool
	}
	requests := make(chan seen, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requests <- seen{
			path:      r.URL.Path,
			d:         q.Get("d"),
			s:         q.Get("s"),
			l:         q.Get("l"),
			ua:        r.Header.Get("User-Agent"),
			hasLeague: q.Has("l"),
		}
		_, _ = w.Write([]byte(`{"events":[]}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL+"/", ClientConfig{})

	if _, err := client.FetchEvents(context.Background(), "Soccer", "English Premier League", testDay); err != nil {
		t.Fatalf("FetchEvents error: %v", err)
	}
	got := <-requests
	if got.path != "/eventsday.php" || got.d != "2026-03-14" || got.s != "Soccer" || got.l != "English Premier League" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.ua != DefaultUserAgent {
		t.Fatalf("unexpected user agent: %q", got.ua)
	}

	if _, err := client.FetchEvents(context.Background(), "Soccer", "all", testDay); err != nil {
		t.Fatalf("FetchEvents error: %v", err)
	}
	if got := <-requests; got.hasLeague {
		t.Fatalf("league filter must be omitted for all leagues: %+v", got)
	}
}

func TestClient_FetchEvents_HonorsRetryAfterWithinCap(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		case 2:
			w.Header().Set("Retry-After", "120")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = w.Write([]byte(`{"events":[]}`))
		}
	}))
	defer srv.Close()

	client, sleeps := newTestClient(t, srv.URL, ClientConfig{BackoffBase: time.Second, BackoffMax: 10 * time.Second})

	if _, err := client.FetchEvents(context.Background(), "Soccer", "", testDay); err != nil {
		t.Fatalf("FetchEvents error: %v", err)
	}
	if len(sleeps.delays) != 2 || sleeps.delays[0] != 3*time.Second || sleeps.delays[1] != 10*time.Second {
		t.Fatalf("unexpected delays: %v", sleeps.delays)
	}
}

func TestClient_FetchEvents_CircuitOpensAfterExhaustedFetches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv.URL, ClientConfig{
		MaxAttempts: 1,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Hour,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.FetchEvents(context.Background(), "Soccer", "", testDay); !errors.Is(err, usecase.ErrTransientFetch) {
		t.Fatalf("expected transient error, got %v", err)
	}

	_, err := client.FetchEvents(context.Background(), "Soccer", "", testDay)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) || !errors.Is(err, usecase.ErrTransientFetch) {
		t.Fatalf("expected short-circuited transient error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("open circuit must not reach the provider, got %d requests", got)
	}
}

func TestClient_FetchEvents_CancelDuringBackoff(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, BackoffBase: time.Hour, BackoffMax: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.FetchEvents(ctx, "Soccer", "", testDay)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("FetchEvents did not return after cancellation")
	}
}

func TestClient_Backoff(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BackoffBase: 500 * time.Millisecond, BackoffMax: 3 * time.Second})

	cases := []struct {
		attempt    int
		retryAfter time.Duration
		want       time.Duration
	}{
		{attempt: 1, want: 500 * time.Millisecond},
		{attempt: 2, want: time.Second},
		{attempt: 3, want: 2 * time.Second},
		{attempt: 4, want: 3 * time.Second},
		{attempt: 40, want: 3 * time.Second},
		{attempt: 1, retryAfter: 2 * time.Second, want: 2 * time.Second},
		{attempt: 1, retryAfter: time.Minute, want: 3 * time.Second},
	}
	for _, tc := range cases {
		if got := client.backoff(tc.attempt, tc.retryAfter); got != tc.want {
			t.Fatalf("backoff(%d, %s)=%s, want %s", tc.attempt, tc.retryAfter, got, tc.want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	if got := parseRetryAfter("7", now); got != 7*time.Second {
		t.Fatalf("seconds form: got %s", got)
	}
	if got := parseRetryAfter(now.Add(4*time.Second).Format(http.TimeFormat), now); got != 4*time.Second {
		t.Fatalf("date form: got %s", got)
	}
	if got := parseRetryAfter("soon", now); got != 0 {
		t.Fatalf("garbage must be ignored, got %s", got)
	}
}
