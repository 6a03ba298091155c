package usecase

import (
	"context"
	"sync/atomic"

	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
)

// SnapshotSink receives everything the poller publishes. Calls come from the
// polling goroutine and must not block; a sink must never call back into
// PollingController.Start or Stop.
type SnapshotSink interface {
	PublishSnapshot(ctx context.Context, snapshot match.Snapshot)
	PublishProgress(ctx context.Context, percent int)
	PublishError(ctx context.Context, err error)
}

// Sinks fans each publish out to every member in order.
type Sinks []SnapshotSink

func (s Sinks) PublishSnapshot(ctx context.Context, snapshot match.Snapshot) {
	for _, sink := range s {
		if sink != nil {
			sink.PublishSnapshot(ctx, snapshot.Clone())
		}
	}
}

func (s Sinks) PublishProgress(ctx context.Context, percent int) {
	for _, sink := range s {
		if sink != nil {
			sink.PublishProgress(ctx, percent)
		}
	}
}

func (s Sinks) PublishError(ctx context.Context, err error) {
	for _, sink := range s {
		if sink != nil {
			sink.PublishError(ctx, err)
		}
	}
}

type NopSink struct{}

func (NopSink) PublishSnapshot(context.Context, match.Snapshot) {}
func (NopSink) PublishProgress(context.Context, int)            {}
func (NopSink) PublishError(context.Context, error)             {}

// ChannelSink exposes publishes as buffered channels. When a buffer is full
// the value is dropped and counted rather than stalling the poller.
type ChannelSink struct {
	Snapshots chan match.Snapshot
	Progress  chan int
	Errors    chan error

	dropped atomic.Int64
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelSink{
		Snapshots: make(chan match.Snapshot, buffer),
		Progress:  make(chan int, buffer*4),
		Errors:    make(chan error, buffer),
	}
}

func (s *ChannelSink) PublishSnapshot(_ context.Context, snapshot match.Snapshot) {
	select {
	case s.Snapshots <- snapshot:
	default:
		s.dropped.Add(1)
	}
}

func (s *ChannelSink) PublishProgress(_ context.Context, percent int) {
	select {
	case s.Progress <- percent:
	default:
		s.dropped.Add(1)
	}
}

func (s *ChannelSink) PublishError(_ context.Context, err error) {
	select {
	case s.Errors <- err:
	default:
		s.dropped.Add(1)
	}
}

func (s *ChannelSink) Dropped() int64 {
	return s.dropped.Load()
}
