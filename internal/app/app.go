package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/riskibarqy/live-sports-hub/external/thesportsdb"
	"github.com/riskibarqy/live-sports-hub/internal/config"
	"github.com/riskibarqy/live-sports-hub/internal/domain/setting"
	"github.com/riskibarqy/live-sports-hub/internal/infrastructure/relay"
	"github.com/riskibarqy/live-sports-hub/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/live-sports-hub/internal/platform/id"
	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
	"github.com/riskibarqy/live-sports-hub/internal/platform/metrics"
	"github.com/riskibarqy/live-sports-hub/internal/platform/resilience"
	"github.com/riskibarqy/live-sports-hub/internal/usecase"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived component of the hub.
type App struct {
	cfg    config.Config
	logger *logging.Logger

	store     *Store
	metrics   *metrics.Metrics
	fanout    *relay.Fanout
	board     *usecase.LiveBoard
	poller    *usecase.PollingController
	favorites *usecase.FavoriteService
	settings  *usecase.SettingsService
	server    *http.Server
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	fanout, err := newRelay(ctx, cfg, logger, m)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	client := thesportsdb.NewClient(thesportsdb.ClientConfig{
		BaseURL:     cfg.SportsDBBaseURL,
		UserAgent:   cfg.SportsDBUserAgent,
		Timeout:     cfg.SportsDBTimeout,
		MaxAttempts: cfg.SportsDBMaxAttempts,
		BackoffBase: cfg.SportsDBBackoffBase,
		BackoffMax:  cfg.SportsDBBackoffMax,
		Logger:      logger,
		Metrics:     m,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportsDBCircuitEnabled,
			FailureThreshold: cfg.SportsDBCircuitFailureCount,
			OpenTimeout:      cfg.SportsDBCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportsDBCircuitHalfOpenMaxReq,
		},
	})

	board := usecase.NewLiveBoard(time.Now)
	sinks := usecase.Sinks{board}
	if fanout != nil {
		sinks = append(sinks, fanout)
	}

	poller := usecase.NewPollingController(usecase.PollingControllerDeps{
		Fetcher:  client,
		Cache:    store.Cache,
		Fallback: usecase.NewFallbackGenerator(cfg.FallbackSeed, time.Now),
		Sink:     sinks,
		IDs:      idgen.NewRandomGenerator(usecase.SessionIDPrefix),
		Logger:   logger,
		Metrics:  m,
	}, usecase.PollingConfig{
		Interval:               cfg.PollInterval,
		CacheEnabled:           cfg.PollCacheEnabled,
		CacheMaxAge:            cfg.PollCacheMaxAge,
		SkipFetchAfterCacheHit: cfg.PollSkipFetchAfterCacheHit,
	})

	a := &App{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		metrics:   m,
		fanout:    fanout,
		board:     board,
		poller:    poller,
		favorites: usecase.NewFavoriteService(store.Favorites, board),
		settings:  usecase.NewSettingsService(store.Settings),
	}

	if cfg.HTTPEnabled {
		if strings.TrimSpace(cfg.HTTPAddr) == "" {
			_ = a.Close()
			return nil, fmt.Errorf("http server addr cannot be empty")
		}
		handler := httpapi.NewHandler(poller, board, a.favorites, a.settings, logger)
		a.server = &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      httpapi.NewRouter(handler, logger, m, cfg.CORSAllowedOrigins),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			ErrorLog:     zap.NewStdLog(logger.Named("http").Zap()),
		}
	}

	return a, nil
}

func newRelay(ctx context.Context, cfg config.Config, logger *logging.Logger, m *metrics.Metrics) (*relay.Fanout, error) {
	var publishers []relay.Publisher
	closeAll := func() {
		for _, publisher := range publishers {
			_ = publisher.Close()
		}
	}

	if cfg.RelayRedisAddr != "" {
		client, err := relay.ConnectRedis(ctx, cfg.RelayRedisAddr, cfg.RelayRedisPassword, cfg.RelayRedisDB)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, relay.NewRedisPublisher(client, cfg.RelayRedisChannel))
		logger.Info("relay target enabled", "target", "redis", "channel", cfg.RelayRedisChannel)
	}

	if len(cfg.RelayKafkaBrokers) > 0 {
		publisher, err := relay.NewKafkaPublisher(cfg.RelayKafkaBrokers, cfg.RelayKafkaTopic)
		if err != nil {
			closeAll()
			return nil, err
		}
		publishers = append(publishers, publisher)
		logger.Info("relay target enabled", "target", "kafka", "topic", cfg.RelayKafkaTopic)
	}

	if cfg.RelayWebhookURL != "" {
		publisher, err := relay.NewWebhookPublisher(relay.WebhookPublisherConfig{
			URL:   cfg.RelayWebhookURL,
			Token: cfg.RelayWebhookToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: cfg.SportsDBCircuitFailureCount,
				OpenTimeout:      cfg.SportsDBCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SportsDBCircuitHalfOpenMaxReq,
			},
		}, logger)
		if err != nil {
			closeAll()
			return nil, err
		}
		publishers = append(publishers, publisher)
		logger.Info("relay target enabled", "target", "webhook")
	}

	if len(publishers) == 0 {
		return nil, nil
	}

	fanout, err := relay.NewFanout(relay.FanoutConfig{Workers: cfg.RelayWorkers}, logger, m, publishers...)
	if err != nil {
		closeAll()
		return nil, err
	}
	return fanout, nil
}

func (a *App) Poller() *usecase.PollingController { return a.poller }

func (a *App) Board() *usecase.LiveBoard { return a.board }

func (a *App) Favorites() *usecase.FavoriteService { return a.favorites }

// InitialSession is the stored last session, or the configured default when
// nothing was stored yet.
func (a *App) InitialSession(ctx context.Context) usecase.Session {
	fallback := usecase.Session{Sport: a.cfg.PollDefaultSport, League: a.cfg.PollDefaultLeague}.Normalize()

	sport, err := a.settings.Get(ctx, setting.KeySport)
	if err != nil {
		a.logger.WarnContext(ctx, "load last session failed", "error", err)
		return fallback
	}
	if strings.TrimSpace(sport) == "" {
		return fallback
	}

	session, err := a.settings.LastSession(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "load last session failed", "error", err)
		return fallback
	}
	return session
}

// Run starts polling and the HTTP server, then blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	session := a.InitialSession(ctx)
	sessionID, err := a.poller.Start(ctx, session)
	if err != nil {
		return fmt.Errorf("start polling: %w", err)
	}
	a.logger.Info("polling started", "session_id", sessionID, "sport", session.Sport, "league", session.League)

	serveErr := make(chan error, 1)
	if a.server != nil {
		go func() {
			a.logger.Info("http server starting", "addr", a.server.Addr)
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		runErr = fmt.Errorf("http server failed: %w", err)
	}

	a.poller.Stop()

	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			runErr = errors.Join(runErr, fmt.Errorf("graceful shutdown failed: %w", err))
		}
		a.logger.Info("http server stopped")
	}

	return runErr
}

// Close releases the relay and the store. Call after Run returns.
func (a *App) Close() error {
	var errs []error
	if a.poller != nil {
		a.poller.Stop()
	}
	if a.fanout != nil {
		if err := a.fanout.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
