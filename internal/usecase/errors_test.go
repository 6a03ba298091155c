package usecase

import (
	"errors"
	"fmt"
	"testing"
)

func TestFetchError_KindsMatchSentinels(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	tests := []struct {
		err      error
		sentinel error
		kind     FetchErrorKind
	}{
		{err: NewTransientFetchError(5, 503, cause), sentinel: ErrTransientFetch, kind: FetchKindTransient},
		{err: NewFatalFetchError(1, 404, cause), sentinel: ErrFatalFetch, kind: FetchKindFatal},
		{err: NewMalformedDataError(1, cause), sentinel: ErrMalformedData, kind: FetchKindMalformed},
	}

	for _, tc := range tests {
		wrapped := fmt.Errorf("poll cycle: %w", tc.err)
		if !errors.Is(wrapped, tc.sentinel) {
			t.Fatalf("%s: expected sentinel match", tc.kind)
		}
		if !errors.Is(wrapped, cause) {
			t.Fatalf("%s: expected cause to unwrap", tc.kind)
		}
		if got := FetchKind(wrapped); got != tc.kind {
			t.Fatalf("unexpected kind: got=%s want=%s", got, tc.kind)
		}
	}

	if errors.Is(NewFatalFetchError(1, 400, cause), ErrTransientFetch) {
		t.Fatalf("fatal error must not match transient sentinel")
	}
	if FetchKind(cause) != "" {
		t.Fatalf("plain errors have no fetch kind")
	}
}

func TestFetchError_Message(t *testing.T) {
	t.Parallel()

	err := NewTransientFetchError(5, 503, errors.New("provider down"))
	want := "transient fetch failure after 5 attempt(s) (status=503): provider down"
	if err.Error() != want {
		t.Fatalf("unexpected message: got=%q want=%q", err.Error(), want)
	}
}

func TestCacheReadError(t *testing.T) {
	t.Parallel()

	cause := errors.New("unexpected end of JSON input")
	err := NewCacheReadError("events_Soccer_all_2026-03-14", cause)
	if !errors.Is(err, ErrCacheRead) || !errors.Is(err, cause) {
		t.Fatalf("cache read error does not unwrap: %v", err)
	}
	var readErr *CacheReadError
	if !errors.As(err, &readErr) || readErr.Key != "events_Soccer_all_2026-03-14" {
		t.Fatalf("expected CacheReadError, got %T", err)
	}
}
