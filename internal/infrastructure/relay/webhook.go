package relay

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
	"github.com/riskibarqy/live-sports-hub/internal/platform/resilience"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// KeyHeader carries the snapshot cache key on webhook deliveries.
	KeyHeader = "X-Livehub-Key"

	defaultWebhookTimeout = 10 * time.Second
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookPublisherConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	HTTPClient     *http.Client
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookPublisher POSTs every relay message to a single HTTP endpoint.
type WebhookPublisher struct {
	client  *http.Client
	url     string
	token   string
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
}

func NewWebhookPublisher(cfg WebhookPublisherConfig, logger *logging.Logger) (*WebhookPublisher, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid RELAY_WEBHOOK_URL")
	}
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &WebhookPublisher{
		client:  client,
		url:     target,
		token:   strings.TrimSpace(cfg.Token),
		logger:  logger.Named("webhook"),
		breaker: resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}, nil
}

func (p *WebhookPublisher) Name() string { return "webhook" }

func (p *WebhookPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "webhook circuit breaker rejected request", "state", p.breaker.State())
		return fmt.Errorf("webhook is temporarily unavailable: %w", err)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("relay.webhook_url", p.url),
			attribute.String("relay.key", key),
			attribute.Int("relay.payload_bytes", len(payload)),
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(KeyHeader, key)
	}
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: post webhook url=%s: %v", errWebhookTransient, p.url, err)
		p.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		body := truncateForLog(strings.TrimSpace(string(raw)), 512)
		var callErr error
		if isRetryableWebhookStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: post webhook status=%d url=%s body=%s", errWebhookTransient, resp.StatusCode, p.url, body)
		} else {
			callErr = fmt.Errorf("post webhook status=%d url=%s body=%s", resp.StatusCode, p.url, body)
		}
		p.recordCircuitResult(callErr)
		return callErr
	}

	p.recordCircuitResult(nil)
	return nil
}

func (p *WebhookPublisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// recordCircuitResult only counts transient failures against the breaker; a
// 4xx means the endpoint is up but rejecting us.
func (p *WebhookPublisher) recordCircuitResult(err error) {
	if err == nil || !stderrors.Is(err, errWebhookTransient) {
		p.breaker.RecordSuccess()
		return
	}
	p.breaker.RecordFailure()
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return candidate, nil
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func isRetryableWebhookStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
