package usecase

import (
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

var (
	ErrTransientFetch = crerr.New("transient fetch failure")
	ErrFatalFetch     = crerr.New("fatal fetch failure")
	ErrMalformedData  = crerr.New("malformed provider data")
	ErrCacheRead      = crerr.New("cache read failure")
)

type FetchErrorKind string

const (
	FetchKindTransient FetchErrorKind = "transient"
	FetchKindFatal     FetchErrorKind = "fatal"
	FetchKindMalformed FetchErrorKind = "malformed"
)

// FetchError is what the provider client returns once it has given up.
// StatusCode is zero when no HTTP response was received.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s fetch failure after %d attempt(s)", e.Kind, e.Attempts)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	switch e.Kind {
	case FetchKindTransient:
		return target == ErrTransientFetch
	case FetchKindFatal:
		return target == ErrFatalFetch
	case FetchKindMalformed:
		return target == ErrMalformedData
	default:
		return false
	}
}

func NewTransientFetchError(attempts, statusCode int, err error) *FetchError {
	return &FetchError{Kind: FetchKindTransient, StatusCode: statusCode, Attempts: attempts, Err: err}
}

func NewFatalFetchError(attempts, statusCode int, err error) *FetchError {
	return &FetchError{Kind: FetchKindFatal, StatusCode: statusCode, Attempts: attempts, Err: err}
}

func NewMalformedDataError(attempts int, err error) *FetchError {
	return &FetchError{Kind: FetchKindMalformed, Attempts: attempts, Err: err}
}

// FetchKind reports the kind of a fetch failure, or "" for errors that did
// not come from the provider client.
func FetchKind(err error) FetchErrorKind {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}
	return ""
}

// CacheReadError wraps a stored cache entry that could not be decoded.
// Cache reads fail open, so this only ever reaches logs.
type CacheReadError struct {
	Key string
	Err error
}

func (e *CacheReadError) Error() string {
	return fmt.Sprintf("read cache entry %q: %v", e.Key, e.Err)
}

func (e *CacheReadError) Unwrap() error {
	return e.Err
}

func (e *CacheReadError) Is(target error) bool {
	return target == ErrCacheRead
}

func NewCacheReadError(key string, err error) error {
	return crerr.WithStack(&CacheReadError{Key: key, Err: err})
}
