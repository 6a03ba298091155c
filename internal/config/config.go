package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/live-sports-hub/internal/platform/logging"
)

const (
	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
	DBDriverMemory   = "memory"
)

// Config stores runtime configuration for the hub.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	HTTPEnabled        bool
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string

	DBDriver string
	DBURL    string

	SportsDBBaseURL               string
	SportsDBUserAgent             string
	SportsDBTimeout               time.Duration
	SportsDBMaxAttempts           int
	SportsDBBackoffBase           time.Duration
	SportsDBBackoffMax            time.Duration
	SportsDBCircuitEnabled        bool
	SportsDBCircuitFailureCount   int
	SportsDBCircuitOpenTimeout    time.Duration
	SportsDBCircuitHalfOpenMaxReq int

	PollInterval               time.Duration
	PollCacheEnabled           bool
	PollCacheMaxAge            time.Duration
	PollSkipFetchAfterCacheHit bool
	PollDefaultSport           string
	PollDefaultLeague          string
	// FallbackSeed is nil unless FALLBACK_SEED is set.
	FallbackSeed *uint64

	RelayRedisAddr     string
	RelayRedisPassword string
	RelayRedisDB       int
	RelayRedisChannel  string
	RelayKafkaBrokers  []string
	RelayKafkaTopic    string
	RelayWebhookURL    string
	RelayWebhookToken  string
	RelayWorkers       int

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	PprofEnabled               bool
	PprofAddr                  string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("SERVICE_NAME", "live-sports-hub"),
		ServiceVersion:     getEnv("SERVICE_VERSION", "dev"),
		LogLevel:           parseLogLevel(getEnv("LOG_LEVEL", "info")),
		HTTPAddr:           strings.TrimSpace(getEnv("HTTP_ADDR", "127.0.0.1:8787")),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DBURL:              strings.TrimSpace(getEnv("DB_URL", "")),
		SportsDBBaseURL:    strings.TrimSpace(getEnv("THESPORTSDB_BASE_URL", "https://www.thesportsdb.com/api/v1/json/3")),
		SportsDBUserAgent:  strings.TrimSpace(getEnv("THESPORTSDB_USER_AGENT", "LiveSportsHub/2.0")),
		PollDefaultSport:   strings.TrimSpace(getEnv("POLL_DEFAULT_SPORT", "")),
		PollDefaultLeague:  strings.TrimSpace(getEnv("POLL_DEFAULT_LEAGUE", "")),
		RelayRedisAddr:     strings.TrimSpace(getEnv("RELAY_REDIS_ADDR", "")),
		RelayRedisPassword: getEnv("RELAY_REDIS_PASSWORD", ""),
		RelayRedisChannel:  strings.TrimSpace(getEnv("RELAY_REDIS_CHANNEL", "live_scores")),
		RelayKafkaBrokers:  splitCSV(getEnv("RELAY_KAFKA_BROKERS", "")),
		RelayKafkaTopic:    strings.TrimSpace(getEnv("RELAY_KAFKA_TOPIC", "live-scores")),
		RelayWebhookURL:    strings.TrimSpace(getEnv("RELAY_WEBHOOK_URL", "")),
		RelayWebhookToken:  getEnv("RELAY_WEBHOOK_TOKEN", ""),
		UptraceDSN:         strings.TrimSpace(getEnv("UPTRACE_DSN", "")),

		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", "127.0.0.1:6060")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if err := loadHTTP(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadDB(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadProvider(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadPolling(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadRelay(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadHTTP(cfg *Config) error {
	var err error
	cfg.HTTPEnabled, err = strconv.ParseBool(getEnv("HTTP_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse HTTP_ENABLED: %w", err)
	}
	if cfg.HTTPEnabled && cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required when HTTP_ENABLED=true")
	}

	cfg.ReadTimeout, err = parsePositiveDuration("HTTP_READ_TIMEOUT", "10s")
	if err != nil {
		return err
	}
	cfg.WriteTimeout, err = parsePositiveDuration("HTTP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return err
	}
	return nil
}

func loadDB(cfg *Config) error {
	driver := strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", DBDriverSQLite)))
	switch driver {
	case DBDriverSQLite, "sqlite3":
		cfg.DBDriver = DBDriverSQLite
		if cfg.DBURL == "" {
			cfg.DBURL = "file:live_scores.db?_pragma=busy_timeout(5000)"
		}
	case DBDriverPostgres, "postgresql":
		cfg.DBDriver = DBDriverPostgres
		if cfg.DBURL == "" {
			return fmt.Errorf("DB_URL is required when DB_DRIVER=postgres")
		}
	case DBDriverMemory:
		cfg.DBDriver = DBDriverMemory
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: valid values are %s, %s, %s", driver, DBDriverSQLite, DBDriverPostgres, DBDriverMemory)
	}
	return nil
}

func loadProvider(cfg *Config) error {
	var err error
	if cfg.SportsDBBaseURL == "" {
		return fmt.Errorf("THESPORTSDB_BASE_URL must not be empty")
	}

	cfg.SportsDBTimeout, err = parsePositiveDuration("THESPORTSDB_TIMEOUT", "15s")
	if err != nil {
		return err
	}
	cfg.SportsDBMaxAttempts, err = getEnvAsInt("THESPORTSDB_MAX_ATTEMPTS", 5)
	if err != nil {
		return fmt.Errorf("parse THESPORTSDB_MAX_ATTEMPTS: %w", err)
	}
	if cfg.SportsDBMaxAttempts < 1 {
		return fmt.Errorf("THESPORTSDB_MAX_ATTEMPTS must be >= 1")
	}
	cfg.SportsDBBackoffBase, err = parsePositiveDuration("THESPORTSDB_BACKOFF_BASE", "1s")
	if err != nil {
		return err
	}
	cfg.SportsDBBackoffMax, err = parsePositiveDuration("THESPORTSDB_BACKOFF_MAX", "30s")
	if err != nil {
		return err
	}
	if cfg.SportsDBBackoffMax < cfg.SportsDBBackoffBase {
		return fmt.Errorf("THESPORTSDB_BACKOFF_MAX must be >= THESPORTSDB_BACKOFF_BASE")
	}

	cfg.SportsDBCircuitEnabled, err = strconv.ParseBool(getEnv("THESPORTSDB_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse THESPORTSDB_CIRCUIT_ENABLED: %w", err)
	}
	cfg.SportsDBCircuitFailureCount, err = getEnvAsInt("THESPORTSDB_CIRCUIT_FAILURE_COUNT", 3)
	if err != nil {
		return fmt.Errorf("parse THESPORTSDB_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cfg.SportsDBCircuitFailureCount <= 0 {
		return fmt.Errorf("THESPORTSDB_CIRCUIT_FAILURE_COUNT must be > 0")
	}
	cfg.SportsDBCircuitOpenTimeout, err = parsePositiveDuration("THESPORTSDB_CIRCUIT_OPEN_TIMEOUT", "60s")
	if err != nil {
		return err
	}
	cfg.SportsDBCircuitHalfOpenMaxReq, err = getEnvAsInt("THESPORTSDB_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return fmt.Errorf("parse THESPORTSDB_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cfg.SportsDBCircuitHalfOpenMaxReq <= 0 {
		return fmt.Errorf("THESPORTSDB_CIRCUIT_HALF_OPEN_MAX_REQ must be > 0")
	}
	return nil
}

func loadPolling(cfg *Config) error {
	var err error
	cfg.PollInterval, err = parsePositiveDuration("POLL_INTERVAL", "5s")
	if err != nil {
		return err
	}
	cfg.PollCacheEnabled, err = strconv.ParseBool(getEnv("POLL_CACHE_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse POLL_CACHE_ENABLED: %w", err)
	}
	cfg.PollCacheMaxAge, err = parsePositiveDuration("POLL_CACHE_MAX_AGE", "60s")
	if err != nil {
		return err
	}
	cfg.PollSkipFetchAfterCacheHit, err = strconv.ParseBool(getEnv("POLL_SKIP_FETCH_AFTER_CACHE_HIT", "false"))
	if err != nil {
		return fmt.Errorf("parse POLL_SKIP_FETCH_AFTER_CACHE_HIT: %w", err)
	}

	if raw := strings.TrimSpace(os.Getenv("FALLBACK_SEED")); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parse FALLBACK_SEED: %w", err)
		}
		cfg.FallbackSeed = &seed
	}
	return nil
}

func loadRelay(cfg *Config) error {
	var err error
	cfg.RelayRedisDB, err = getEnvAsInt("RELAY_REDIS_DB", 0)
	if err != nil {
		return fmt.Errorf("parse RELAY_REDIS_DB: %w", err)
	}
	if cfg.RelayRedisAddr != "" && cfg.RelayRedisChannel == "" {
		return fmt.Errorf("RELAY_REDIS_CHANNEL is required when RELAY_REDIS_ADDR is set")
	}
	if len(cfg.RelayKafkaBrokers) > 0 && cfg.RelayKafkaTopic == "" {
		return fmt.Errorf("RELAY_KAFKA_TOPIC is required when RELAY_KAFKA_BROKERS is set")
	}

	cfg.RelayWorkers, err = getEnvAsInt("RELAY_WORKERS", 4)
	if err != nil {
		return fmt.Errorf("parse RELAY_WORKERS: %w", err)
	}
	if cfg.RelayWorkers <= 0 {
		return fmt.Errorf("RELAY_WORKERS must be > 0")
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeUploadRate, err = parsePositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return err
	}

	cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	return nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
