package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchstats/internal/aggregate"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/matchstats")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RIOT_API_KEY", `"RGAPI-test"`)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "RGAPI-test", cfg.RiotAPIKey)
	assert.Equal(t, "refresh_players", cfg.RedisQueue)
	assert.Equal(t, defaultRiotBaseURL, cfg.RiotAccountBaseURL)
	assert.Equal(t, defaultRiotBaseURL, cfg.RiotMatchBaseURL)
	assert.Equal(t, defaultRiotPlatformURL, cfg.RiotPlatformBaseURL)
	assert.Equal(t, 15, cfg.RequestsPerSecond)
	assert.Equal(t, 10*time.Second, cfg.RateLimitTimeout)
	assert.Equal(t, 20, cfg.MatchCount)
	assert.Equal(t, 420, cfg.QueueID)
	assert.Zero(t, cfg.SeasonStartEpoch)
	assert.Equal(t, 10.0, cfg.RemakeThresholdMinutes)
	assert.Empty(t, cfg.AggregateRole)
	assert.Equal(t, 4, cfg.FetchConcurrency)
	assert.Equal(t, 1, cfg.WorkerCount)
	assert.Equal(t, 16, cfg.JobBufferSize)
	assert.Equal(t, 24*time.Hour, cfg.PUUIDCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("REDIS_QUEUE", "custom")
	t.Setenv("RIOT_REQUESTS_PER_SECOND", "20")
	t.Setenv("RIOT_RATE_LIMIT_TIMEOUT", "3s")
	t.Setenv("MATCH_COUNT", "50")
	t.Setenv("QUEUE_ID", "440")
	t.Setenv("SEASON_START_EPOCH", "1704067200")
	t.Setenv("REMAKE_THRESHOLD_MINUTES", "5.5")
	t.Setenv("AGGREGATE_ROLE", "adc")
	t.Setenv("FETCH_CONCURRENCY", "0")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("RIOT_PLATFORM_BASE_URL", "https://euw1.api.riotgames.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "custom", cfg.RedisQueue)
	assert.Equal(t, 20, cfg.RequestsPerSecond)
	assert.Equal(t, 3*time.Second, cfg.RateLimitTimeout)
	assert.Equal(t, 50, cfg.MatchCount)
	assert.Equal(t, 440, cfg.QueueID)
	assert.Equal(t, int64(1704067200), cfg.SeasonStartEpoch)
	assert.Equal(t, 5.5, cfg.RemakeThresholdMinutes)
	assert.Equal(t, aggregate.RoleADC, cfg.AggregateRole)
	assert.Equal(t, 1, cfg.FetchConcurrency)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, "https://euw1.api.riotgames.com", cfg.RiotPlatformBaseURL)
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"DB_URL", "REDIS_URL", "RIOT_API_KEY"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MATCH_COUNT", "twenty"},
		{"MATCH_COUNT", "0"},
		{"MATCH_COUNT", "-5"},
		{"MATCH_COUNT", "101"},
		{"RIOT_RATE_LIMIT_TIMEOUT", "10"},
		{"RIOT_REQUESTS_PER_SECOND", "0"},
		{"REMAKE_THRESHOLD_MINUTES", "0"},
		{"REMAKE_THRESHOLD_MINUTES", "-3"},
		{"AGGREGATE_ROLE", "carry"},
		{"SEASON_START_EPOCH", "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_MatchCountBounds(t *testing.T) {
	for _, value := range []string{"1", "100"} {
		setRequired(t)
		t.Setenv("MATCH_COUNT", value)

		_, err := Load()
		assert.NoError(t, err, "MATCH_COUNT=%s", value)
	}
}
