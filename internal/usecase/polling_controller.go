package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/domain/match"
	"github.com/riskibarqy/live-sports-hub/internal/platform/id"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
	"github.com/riskibarqy/live-sports-hub/internal/platform/metrics"
	"github.com/sourcegraph/conc/panics"
)

const (
	ProgressStarted   = 0
	ProgressRequested = 30
	ProgressReceived  = 70
	ProgressDone      = 100
)

// SessionIDPrefix starts every poll session id.
const SessionIDPrefix = "poll_"

// EventFetcher is the provider client as seen by the poller.
type EventFetcher interface {
	FetchEvents(ctx context.Context, sport, league string, day time.Time) ([]match.RawEvent, error)
}

type PollState string

const (
	PollStateIdle       PollState = "idle"
	PollStateFetching   PollState = "fetching"
	PollStatePublishing PollState = "publishing"
	PollStateSleeping   PollState = "sleeping"
	PollStateStopped    PollState = "stopped"
)

// Session is what the poller is currently watching. An empty League means
// every league of the sport.
type Session struct {
	Sport  string `json:"sport"`
	League string `json:"league"`
}

func (s Session) Normalize() Session {
	league := strings.TrimSpace(s.League)
	if strings.EqualFold(league, match.AllLeagues) {
		league = ""
	}
	return Session{
		Sport:  match.ResolveSport(s.Sport),
		League: league,
	}
}

func (s Session) CacheKey(day time.Time) match.CacheKey {
	return match.NewCacheKey(s.Sport, s.League, day)
}

type PollingConfig struct {
	Interval     time.Duration
	CacheEnabled bool
	CacheMaxAge  time.Duration
	// SkipFetchAfterCacheHit waits a full interval before the first live
	// fetch when the first cycle was served from cache.
	SkipFetchAfterCacheHit bool
}

func DefaultPollingConfig() PollingConfig {
	return PollingConfig{
		Interval:     5 * time.Second,
		CacheEnabled: true,
		CacheMaxAge:  60 * time.Second,
	}
}

type PollStatus struct {
	State     PollState `json:"state"`
	Running   bool      `json:"running"`
	SessionID string    `json:"session_id,omitempty"`
	Session   Session   `json:"session"`
}

type PollingControllerDeps struct {
	Fetcher  EventFetcher
	Cache    match.SnapshotCache
	Fallback *FallbackGenerator
	Sink     SnapshotSink
	IDs      id.Generator
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// PollingController runs at most one background poll loop at a time.
type PollingController struct {
	fetcher  EventFetcher
	cache    match.SnapshotCache
	fallback *FallbackGenerator
	sink     SnapshotSink
	ids      id.Generator
	logger   *logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	cfg      PollingConfig

	// lifecycleMu serializes Start/Stop/Refresh.
	lifecycleMu sync.Mutex
	current     *pollRun
	lastSession Session
	hasSession  bool

	// publishMu makes "cancel, then no more publishes" atomic for Stop.
	publishMu sync.Mutex

	state atomic.Value
}

type pollRun struct {
	id      string
	session Session
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewPollingController(deps PollingControllerDeps, cfg PollingConfig) *PollingController {
	defaults := DefaultPollingConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.CacheMaxAge <= 0 {
		cfg.CacheMaxAge = defaults.CacheMaxAge
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	fallback := deps.Fallback
	if fallback == nil {
		fallback = NewFallbackGenerator(nil, now)
	}
	var sink SnapshotSink = NopSink{}
	if deps.Sink != nil {
		sink = deps.Sink
	}
	ids := deps.IDs
	if ids == nil {
		ids = id.NewRandomGenerator(SessionIDPrefix)
	}

	c := &PollingController{
		fetcher:  deps.Fetcher,
		cache:    deps.Cache,
		fallback: fallback,
		sink:     sink,
		ids:      ids,
		logger:   logger.Named("poller"),
		metrics:  deps.Metrics,
		now:      now,
		cfg:      cfg,
	}
	c.state.Store(PollStateIdle)
	return c
}

// Start stops any running session, waits for it to exit, then polls session
// in the background. ctx only contributes values such as trace data; the
// loop runs until Stop or the next Start.
func (c *PollingController) Start(ctx context.Context, session Session) (string, error) {
	if c.fetcher == nil {
		return "", fmt.Errorf("%w: event fetcher is not configured", ErrInvalidInput)
	}
	session = session.Normalize()

	sessionID, err := c.ids.NewID()
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}

	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.stopLocked()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	run := &pollRun{
		id:      sessionID,
		session: session,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	c.current = run
	c.lastSession = session
	c.hasSession = true
	c.setState(PollStateIdle)

	go c.supervise(runCtx, run)

	c.logger.InfoContext(ctx, "poll session started", "session_id", sessionID, "sport", session.Sport, "league", session.League)
	return sessionID, nil
}

// Stop cancels the running session and waits for its goroutine. Nothing from
// that session is published after Stop returns.
func (c *PollingController) Stop() {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	c.stopLocked()
	c.setState(PollStateStopped)
}

// Refresh restarts the current (or last) session.
func (c *PollingController) Refresh(ctx context.Context) (string, error) {
	c.lifecycleMu.Lock()
	session, ok := c.lastSession, c.hasSession
	c.lifecycleMu.Unlock()

	if !ok {
		return "", fmt.Errorf("%w: no session to refresh", ErrInvalidInput)
	}
	return c.Start(ctx, session)
}

// RunOnce performs a single fetch-normalize-publish cycle on the caller's
// goroutine. On failure the fallback snapshot is returned with the error.
func (c *PollingController) RunOnce(ctx context.Context, session Session) (match.Snapshot, error) {
	if c.fetcher == nil {
		return match.Snapshot{}, fmt.Errorf("%w: event fetcher is not configured", ErrInvalidInput)
	}
	return c.cycle(ctx, session.Normalize())
}

func (c *PollingController) State() PollState {
	state, _ := c.state.Load().(PollState)
	return state
}

func (c *PollingController) Status() PollStatus {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	status := PollStatus{
		State:   c.State(),
		Session: c.lastSession,
	}
	if c.current != nil {
		status.Running = true
		status.SessionID = c.current.id
	}
	return status
}

// Session returns the current or last session.
func (c *PollingController) Session() (Session, bool) {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()
	return c.lastSession, c.hasSession
}

func (c *PollingController) stopLocked() {
	run := c.current
	if run == nil {
		return
	}

	c.publishMu.Lock()
	run.cancel()
	c.publishMu.Unlock()

	<-run.done
	c.current = nil
	c.logger.Info("poll session stopped", "session_id", run.id)
}

func (c *PollingController) supervise(ctx context.Context, run *pollRun) {
	defer close(run.done)
	c.loop(ctx, run)
}

func (c *PollingController) loop(ctx context.Context, run *pollRun) {
	logger := c.logger.With("session_id", run.id)
	first := true
	for {
		c.guardedCycle(ctx, run, logger, first)
		first = false
		if ctx.Err() != nil {
			return
		}

		c.setState(PollStateSleeping)
		timer := time.NewTimer(c.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// guardedCycle runs one iteration of the loop. A panic is reported like any
// other failed cycle: fallback snapshot plus error, and polling continues.
func (c *PollingController) guardedCycle(ctx context.Context, run *pollRun, logger *logging.Logger, first bool) {
	var catcher panics.Catcher
	catcher.Try(func() {
		skipFetch := false
		if first && c.cfg.CacheEnabled && c.cache != nil {
			if c.publishFromCache(ctx, run.session) {
				skipFetch = c.cfg.SkipFetchAfterCacheHit
			}
		}
		if skipFetch {
			return
		}
		if _, err := c.cycle(ctx, run.session); err != nil && ctx.Err() == nil {
			logger.WarnContext(ctx, "poll cycle fell back to synthetic data",
				"sport", run.session.Sport,
				"league", run.session.League,
				"kind", string(FetchKind(err)),
				"error", err,
			)
		}
	})

	recovered := catcher.Recovered()
	if recovered == nil {
		return
	}
	logger.ErrorContext(ctx, "poll cycle panicked",
		"panic", fmt.Sprint(recovered.Value),
		"stack", string(recovered.Stack),
	)
	if ctx.Err() != nil {
		return
	}
	snapshot := c.fallback.Generate(run.session.Sport, run.session.League, c.now())
	c.setState(PollStatePublishing)
	c.publishFallback(ctx, snapshot, recovered.AsError())
}

func (c *PollingController) publishFromCache(ctx context.Context, session Session) bool {
	key := session.CacheKey(c.now()).String()
	snapshot, ok := c.cache.Get(ctx, key, c.cfg.CacheMaxAge)
	c.metrics.CacheLookup(ok)
	if !ok {
		return false
	}

	c.setState(PollStatePublishing)
	c.publishSnapshot(ctx, snapshot.WithSource(match.SourceCache))
	c.publishProgress(ctx, ProgressDone)
	return true
}

func (c *PollingController) cycle(ctx context.Context, session Session) (match.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollingController.cycle")
	defer span.End()

	started := c.now()
	defer func() {
		c.metrics.PollCycle(c.now().Sub(started))
	}()

	c.setState(PollStateFetching)
	c.publishProgress(ctx, ProgressStarted)
	c.publishProgress(ctx, ProgressRequested)

	raw, err := c.fetcher.FetchEvents(ctx, session.Sport, session.League, started)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return match.Snapshot{}, ctxErr
	}
	c.publishProgress(ctx, ProgressReceived)

	if err != nil {
		snapshot := c.fallback.Generate(session.Sport, session.League, c.now())
		c.setState(PollStatePublishing)
		c.publishFallback(ctx, snapshot, err)
		return snapshot, err
	}

	snapshot := match.Snapshot{
		Sport:      session.Sport,
		League:     session.League,
		Source:     match.SourceLive,
		CapturedAt: c.now(),
		Events:     match.NormalizeAll(raw),
	}
	if c.cfg.CacheEnabled && c.cache != nil {
		key := session.CacheKey(started).String()
		if err := c.cache.Put(ctx, key, snapshot); err != nil {
			c.logger.WarnContext(ctx, "write snapshot cache failed", "cache_key", key, "error", err)
		}
	}

	c.setState(PollStatePublishing)
	c.publishSnapshot(ctx, snapshot)
	c.publishProgress(ctx, ProgressDone)
	return snapshot, nil
}

func (c *PollingController) publishSnapshot(ctx context.Context, snapshot match.Snapshot) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	c.sink.PublishSnapshot(ctx, snapshot)
	c.metrics.SnapshotPublished(string(snapshot.Source))
}

// publishFallback emits the fallback snapshot and its error as one unit so a
// concurrent Stop never splits the pair.
func (c *PollingController) publishFallback(ctx context.Context, snapshot match.Snapshot, err error) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	c.sink.PublishSnapshot(ctx, snapshot)
	c.metrics.SnapshotPublished(string(snapshot.Source))
	c.sink.PublishError(ctx, err)
	c.sink.PublishProgress(ctx, ProgressDone)
}

func (c *PollingController) publishProgress(ctx context.Context, percent int) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	c.sink.PublishProgress(ctx, percent)
}

func (c *PollingController) publishError(ctx context.Context, err error) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	if ctx.Err() != nil {
		return
	}
	c.sink.PublishError(ctx, err)
}

func (c *PollingController) setState(state PollState) {
	c.state.Store(state)
}
