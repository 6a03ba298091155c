package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_URL", "")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)
	for _, key := range []string{"POLL_INTERVAL", "POLL_CACHE_MAX_AGE", "THESPORTSDB_MAX_ATTEMPTS", "FALLBACK_SEED", "HTTP_ADDR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBDriver != DBDriverSQLite || cfg.DBURL == "" {
		t.Fatalf("unexpected db defaults: driver=%q url=%q", cfg.DBDriver, cfg.DBURL)
	}
	if cfg.PollInterval != 5*time.Second || cfg.PollCacheMaxAge != 60*time.Second {
		t.Fatalf("unexpected poll defaults: interval=%s max_age=%s", cfg.PollInterval, cfg.PollCacheMaxAge)
	}
	if cfg.SportsDBMaxAttempts != 5 || cfg.SportsDBTimeout != 15*time.Second {
		t.Fatalf("unexpected provider defaults: %+v", cfg)
	}
	if cfg.FallbackSeed != nil {
		t.Fatalf("expected no fallback seed by default")
	}
	if cfg.PollSkipFetchAfterCacheHit {
		t.Fatalf("expected first live fetch after cache hit by default")
	}
	if cfg.HTTPAddr != "127.0.0.1:8787" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTPAddr)
	}
}

func TestLoad_DBDriver(t *testing.T) {
	t.Run("postgres requires url", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_DRIVER", "postgresql")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when DB_DRIVER=postgres without DB_URL")
		}
	})

	t.Run("memory", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_DRIVER", "memory")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.DBDriver != DBDriverMemory {
			t.Fatalf("unexpected driver: %q", cfg.DBDriver)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("DB_DRIVER", "mysql")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown DB_DRIVER")
		}
	})
}

func TestLoad_PollingAndProviderParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("POLL_INTERVAL", "2s")
	t.Setenv("POLL_SKIP_FETCH_AFTER_CACHE_HIT", "true")
	t.Setenv("FALLBACK_SEED", "42")
	t.Setenv("THESPORTSDB_BACKOFF_BASE", "500ms")
	t.Setenv("THESPORTSDB_BACKOFF_MAX", "4s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PollInterval != 2*time.Second || !cfg.PollSkipFetchAfterCacheHit {
		t.Fatalf("unexpected polling config: %+v", cfg)
	}
	if cfg.FallbackSeed == nil || *cfg.FallbackSeed != 42 {
		t.Fatalf("unexpected fallback seed: %v", cfg.FallbackSeed)
	}
	if cfg.SportsDBBackoffBase != 500*time.Millisecond || cfg.SportsDBBackoffMax != 4*time.Second {
		t.Fatalf("unexpected backoff config: base=%s max=%s", cfg.SportsDBBackoffBase, cfg.SportsDBBackoffMax)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"POLL_INTERVAL":                     "0s",
		"POLL_CACHE_ENABLED":                "maybe",
		"FALLBACK_SEED":                     "-1",
		"THESPORTSDB_MAX_ATTEMPTS":          "0",
		"THESPORTSDB_TIMEOUT":               "soon",
		"THESPORTSDB_CIRCUIT_FAILURE_COUNT": "0",
		"RELAY_WORKERS":                     "0",
		"HTTP_ENABLED":                      "not-bool",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestLoad_BackoffMaxBelowBase(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("THESPORTSDB_BACKOFF_BASE", "10s")
	t.Setenv("THESPORTSDB_BACKOFF_MAX", "1s")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when backoff max is below base")
	}
}

func TestLoad_RelayParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("RELAY_REDIS_ADDR", "localhost:6379")
	t.Setenv("RELAY_KAFKA_BROKERS", " kafka-1:9092, kafka-2:9092 ")
	t.Setenv("RELAY_WEBHOOK_URL", " https://hooks.example.com/scores ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RelayRedisChannel != "live_scores" || cfg.RelayKafkaTopic != "live-scores" {
		t.Fatalf("unexpected relay defaults: %+v", cfg)
	}
	if len(cfg.RelayKafkaBrokers) != 2 || cfg.RelayKafkaBrokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected kafka brokers: %+v", cfg.RelayKafkaBrokers)
	}
	if cfg.RelayWebhookURL != "https://hooks.example.com/scores" {
		t.Fatalf("unexpected webhook url: %q", cfg.RelayWebhookURL)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SERVICE_NAME", "live-sports-hub-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "live-sports-hub-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
		t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
	}
}

func TestParseLogLevel(t *testing.T) {
	if got := parseLogLevel("WARNING"); got.String() != "warn" {
		t.Fatalf("unexpected level: %s", got)
	}
	if got := parseLogLevel("nonsense"); got.String() != "info" {
		t.Fatalf("unexpected fallback level: %s", got)
	}
}
