package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
	"github.com/riskibarqy/live-sports-hub/internal/platform/metrics"
)

const (
	MessageTypeSnapshot = "snapshot"
	MessageTypeError    = "error"

	defaultWorkers        = 4
	defaultPublishTimeout = 5 * time.Second
)

// Message is the JSON document written to every relay target.
type Message struct {
	Type     string          `json:"type"`
	Key      string          `json:"key"`
	SentAt   time.Time       `json:"sent_at"`
	Snapshot *match.Snapshot `json:"snapshot,omitempty"`
	Error    string          `json:"error,omitempty"`
}

type FanoutConfig struct {
	Workers        int
	PublishTimeout time.Duration
}

// Fanout forwards published snapshots and errors to external publishers on a
// bounded worker pool. When the pool is saturated messages are dropped so the
// poller never waits on a slow broker. Progress updates are not relayed.
type Fanout struct {
	publishers []Publisher
	pool       *ants.Pool
	timeout    time.Duration
	logger     *logging.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
	inflight   sync.WaitGroup
}

func NewFanout(cfg FanoutConfig, logger *logging.Logger, m *metrics.Metrics, publishers ...Publisher) (*Fanout, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	timeout := cfg.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create relay worker pool: %w", err)
	}

	return &Fanout{
		publishers: publishers,
		pool:       pool,
		timeout:    timeout,
		logger:     logger.Named("relay"),
		metrics:    m,
		now:        time.Now,
	}, nil
}

func (f *Fanout) PublishSnapshot(ctx context.Context, snapshot match.Snapshot) {
	snapshot = snapshot.Clone()
	f.dispatch(ctx, Message{
		Type:     MessageTypeSnapshot,
		Key:      match.NewCacheKey(snapshot.Sport, snapshot.League, snapshot.CapturedAt).String(),
		Snapshot: &snapshot,
	})
}

func (f *Fanout) PublishProgress(context.Context, int) {}

func (f *Fanout) PublishError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	f.dispatch(ctx, Message{Type: MessageTypeError, Error: err.Error()})
}

func (f *Fanout) dispatch(ctx context.Context, msg Message) {
	if len(f.publishers) == 0 {
		return
	}
	msg.SentAt = f.now().UTC()
	payload, err := sonic.Marshal(msg)
	if err != nil {
		f.logger.WarnContext(ctx, "encode relay message failed", "type", msg.Type, "error", err)
		return
	}

	// Deliveries outlive the poll session that produced them.
	deliverCtx := context.WithoutCancel(ctx)
	f.inflight.Add(1)
	if err := f.pool.Submit(func() {
		defer f.inflight.Done()
		f.deliver(deliverCtx, msg.Key, payload)
	}); err != nil {
		f.inflight.Done()
		if errors.Is(err, ants.ErrPoolOverload) {
			f.logger.WarnContext(ctx, "relay saturated, dropping message", "type", msg.Type)
		} else {
			f.logger.WarnContext(ctx, "submit relay message failed", "type", msg.Type, "error", err)
		}
		for _, publisher := range f.publishers {
			f.metrics.RelayPublish(publisher.Name(), err)
		}
	}
}

func (f *Fanout) deliver(ctx context.Context, key string, payload []byte) {
	for _, publisher := range f.publishers {
		publishCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := publisher.Publish(publishCtx, key, payload)
		cancel()

		f.metrics.RelayPublish(publisher.Name(), err)
		if err != nil {
			f.logger.WarnContext(ctx, "relay publish failed", "target", publisher.Name(), "error", err)
		}
	}
}

// Close waits for queued deliveries and then closes every publisher.
func (f *Fanout) Close() error {
	f.inflight.Wait()
	f.pool.Release()

	var errs []error
	for _, publisher := range f.publishers {
		if err := publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s publisher: %w", publisher.Name(), err))
		}
	}
	return errors.Join(errs...)
}
