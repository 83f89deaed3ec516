package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"matchstats/internal/aggregate"
)

// Config holds runtime configuration for the match stats worker.
type Config struct {
	DBURL      string
	RedisURL   string
	RedisQueue string

	RiotAPIKey          string
	RiotAccountBaseURL  string
	RiotMatchBaseURL    string
	RiotPlatformBaseURL string // league-v4

	RequestsPerSecond int
	RateLimitTimeout  time.Duration

	MatchCount       int
	QueueID          int
	SeasonStartEpoch int64

	RemakeThresholdMinutes float64
	// AggregateRole scopes aggregation to one lane; empty aggregates every role.
	AggregateRole aggregate.Role

	FetchConcurrency int
	WorkerCount      int
	JobBufferSize    int
	PUUIDCacheTTL    time.Duration

	MetricsAddr string
	LogLevel    string
}

const (
	defaultRiotBaseURL     = "https://americas.api.riotgames.com"
	defaultRiotPlatformURL = "https://na1.api.riotgames.com"

	// match-v5 rejects count above 100
	maxMatchCount = 100
)

// Load builds a Config from environment variables, after loading a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBURL:              os.Getenv("DB_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RedisQueue:         os.Getenv("REDIS_QUEUE"),
		RiotAPIKey:         strings.Trim(os.Getenv("RIOT_API_KEY"), "\""),
		RiotAccountBaseURL: os.Getenv("RIOT_ACCOUNT_BASE_URL"),
		RiotMatchBaseURL:   os.Getenv("RIOT_MATCH_BASE_URL"),
		MetricsAddr:        os.Getenv("METRICS_ADDR"),
		LogLevel:           os.Getenv("LOG_LEVEL"),

		RiotPlatformBaseURL: os.Getenv("RIOT_PLATFORM_BASE_URL"),
	}

	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	if cfg.RiotAPIKey == "" {
		return nil, fmt.Errorf("RIOT_API_KEY is required")
	}

	if cfg.RedisQueue == "" {
		cfg.RedisQueue = "refresh_players"
	}
	if cfg.RiotAccountBaseURL == "" {
		cfg.RiotAccountBaseURL = defaultRiotBaseURL
	}
	if cfg.RiotMatchBaseURL == "" {
		cfg.RiotMatchBaseURL = defaultRiotBaseURL
	}
	if cfg.RiotPlatformBaseURL == "" {
		cfg.RiotPlatformBaseURL = defaultRiotPlatformURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	var err error
	if cfg.RequestsPerSecond, err = intEnv("RIOT_REQUESTS_PER_SECOND", 15); err != nil {
		return nil, err
	}
	if cfg.RateLimitTimeout, err = durationEnv("RIOT_RATE_LIMIT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MatchCount, err = intEnv("MATCH_COUNT", 20); err != nil {
		return nil, err
	}
	if cfg.QueueID, err = intEnv("QUEUE_ID", 420); err != nil {
		return nil, err
	}
	if cfg.SeasonStartEpoch, err = int64Env("SEASON_START_EPOCH", 0); err != nil {
		return nil, err
	}
	if cfg.RemakeThresholdMinutes, err = floatEnv("REMAKE_THRESHOLD_MINUTES", 10); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency, err = intEnv("FETCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = intEnv("WORKER_COUNT", 1); err != nil {
		return nil, err
	}
	if cfg.JobBufferSize, err = intEnv("JOB_BUFFER_SIZE", 16); err != nil {
		return nil, err
	}
	if cfg.PUUIDCacheTTL, err = durationEnv("PUUID_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if role := strings.ToUpper(strings.TrimSpace(os.Getenv("AGGREGATE_ROLE"))); role != "" {
		r, ok := aggregate.ParseRole(role)
		if !ok {
			return nil, fmt.Errorf("AGGREGATE_ROLE %q is not a known role", role)
		}
		cfg.AggregateRole = r
	}

	if cfg.RequestsPerSecond <= 0 {
		return nil, fmt.Errorf("RIOT_REQUESTS_PER_SECOND must be positive")
	}
	if cfg.MatchCount < 1 || cfg.MatchCount > maxMatchCount {
		return nil, fmt.Errorf("MATCH_COUNT must be between 1 and %d", maxMatchCount)
	}
	if cfg.RemakeThresholdMinutes <= 0 {
		return nil, fmt.Errorf("REMAKE_THRESHOLD_MINUTES must be positive")
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 1
	}

	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func int64Env(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
