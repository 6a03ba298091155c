package thesportsdb

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
	"github.com/riskibarqy/live-sports-hub/internal/platform/metrics"
	"github.com/riskibarqy/live-sports-hub/internal/platform/resilience"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseURL     = "https://www.thesportsdb.com/api/v1/json/3"
	DefaultUserAgent   = "LiveSportsHub/2.0"
	DefaultTimeout     = 15 * time.Second
	DefaultMaxAttempts = 5
	DefaultBackoffBase = time.Second
	DefaultBackoffMax  = 30 * time.Second

	eventsDayPath = "/eventsday.php"
	maxBodyBytes  = 6 << 20
	circuitTarget = "thesportsdb"
)

var tracer = otel.Tracer("live-sports-hub/external/thesportsdb")

var errTransient = crerr.New("thesportsdb transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	UserAgent      string
	Timeout        time.Duration
	MaxAttempts    int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	Logger         *logging.Logger
	Metrics        *metrics.Metrics
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches the day's events from TheSportsDB. Retry and backoff live
// here and nowhere else.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	backoffBase time.Duration
	backoffMax  time.Duration
	logger      *logging.Logger
	metrics     *metrics.Metrics
	breaker     *resilience.CircuitBreaker
	flight      resilience.SingleFlight[fetchResult]
	sleep       func(ctx context.Context, d time.Duration) error
}

type fetchResult struct {
	raw      []byte
	attempts int
}

type eventsEnvelope struct {
	Events []match.RawEvent `json:"events"`
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = DefaultBackoffBase
	}
	backoffMax := cfg.BackoffMax
	if backoffMax <= 0 {
		backoffMax = DefaultBackoffMax
	}
	if backoffMax < backoffBase {
		backoffMax = backoffBase
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		userAgent:   userAgent,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		backoffMax:  backoffMax,
		logger:      logger.Named("thesportsdb"),
		metrics:     cfg.Metrics,
		breaker:     resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		sleep:       sleepContext,
	}
}

// FetchEvents returns the raw events for sport on day, optionally narrowed to
// one league. An empty provider list ("events": null) is not an error.
func (c *Client) FetchEvents(ctx context.Context, sport, league string, day time.Time) ([]match.RawEvent, error) {
	ctx, span := tracer.Start(ctx, "thesportsdb.FetchEvents")
	defer span.End()

	sport = strings.TrimSpace(sport)
	if sport == "" {
		return nil, fmt.Errorf("%w: sport is required", usecase.ErrInvalidInput)
	}
	fullURL := c.eventsDayURL(sport, league, day)
	span.SetAttributes(
		attribute.String("sport", sport),
		attribute.String("league", strings.TrimSpace(league)),
		attribute.String("day", day.Format(match.DateLayout)),
	)

	started := time.Now()
	events, err := c.fetch(ctx, fullURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.FetchResult(fetchOutcome(err), time.Since(started))
		return nil, err
	}

	span.SetAttributes(attribute.Int("events", len(events)))
	c.metrics.FetchResult("ok", time.Since(started))
	return events, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) ([]match.RawEvent, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "thesportsdb circuit breaker rejected request", "state", c.breaker.State())
		c.metrics.SetCircuitState(circuitTarget, c.breaker.State().Gauge())
		return nil, usecase.NewTransientFetchError(0, 0,
			fmt.Errorf("%w: sport data provider is temporarily unavailable", usecase.ErrDependencyUnavailable))
	}

	result, err, _ := c.flight.Do(fullURL, func() (fetchResult, error) {
		raw, attempts, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil && stderrors.Is(reqErr, usecase.ErrTransientFetch) {
			c.breaker.RecordFailure()
		} else if ctx.Err() == nil {
			c.breaker.RecordSuccess()
		}
		c.metrics.SetCircuitState(circuitTarget, c.breaker.State().Gauge())
		return fetchResult{raw: raw, attempts: attempts}, reqErr
	})
	if err != nil {
		return nil, err
	}

	var envelope eventsEnvelope
	if err := sonic.Unmarshal(result.raw, &envelope); err != nil {
		c.logger.WarnContext(ctx, "thesportsdb returned malformed payload", "url", fullURL, "body", abbreviateBody(result.raw), "error", err)
		return nil, usecase.NewMalformedDataError(result.attempts, fmt.Errorf("decode provider payload: %w", err))
	}
	if envelope.Events == nil {
		return []match.RawEvent{}, nil
	}

	return envelope.Events, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, int, error) {
	var (
		lastErr    error
		lastStatus int
	)
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, attempt, usecase.NewFatalFetchError(attempt, 0, fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set("user-agent", c.userAgent)

		var retryAfter time.Duration
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, attempt, ctx.Err()
			}
			c.metrics.FetchAttempt(0)
			lastStatus = 0
			lastErr = fmt.Errorf("%w: send request: %v", errTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			c.metrics.FetchAttempt(resp.StatusCode)
			lastStatus = resp.StatusCode

			switch {
			case readErr != nil:
				if ctx.Err() != nil {
					return nil, attempt, ctx.Err()
				}
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, attempt, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
				retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
			default:
				fatal := fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				c.logger.WarnContext(ctx, "thesportsdb request rejected", "url", fullURL, "status", resp.StatusCode)
				return nil, attempt, usecase.NewFatalFetchError(attempt, resp.StatusCode, fatal)
			}
		}

		if attempt == c.maxAttempts {
			break
		}
		delay := c.backoff(attempt, retryAfter)
		c.logger.DebugContext(ctx, "thesportsdb retrying request",
			"attempt", attempt,
			"status", lastStatus,
			"delay", delay,
			"error", lastErr,
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, attempt, err
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: provider request failed", errTransient)
	}
	c.logger.WarnContext(ctx, "thesportsdb request failed", "url", fullURL, "attempts", c.maxAttempts, "error", lastErr)
	return nil, c.maxAttempts, usecase.NewTransientFetchError(c.maxAttempts, lastStatus, lastErr)
}

// backoff is base * 2^(attempt-1), capped. A Retry-After hint replaces the
// computed delay but obeys the same cap.
func (c *Client) backoff(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, c.backoffMax)
	}
	delay := c.backoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.backoffMax {
			return c.backoffMax
		}
	}
	return min(delay, c.backoffMax)
}

func (c *Client) eventsDayURL(sport, league string, day time.Time) string {
	values := url.Values{}
	values.Set("d", day.Format(match.DateLayout))
	values.Set("s", sport)
	if league = strings.TrimSpace(league); league != "" && !strings.EqualFold(league, match.AllLeagues) {
		values.Set("l", league)
	}
	return c.baseURL + eventsDayPath + "?" + values.Encode()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func fetchOutcome(err error) string {
	if kind := usecase.FetchKind(err); kind != "" {
		return string(kind)
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "error"
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
