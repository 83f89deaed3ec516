package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"matchstats/internal/aggregate"
	"matchstats/internal/logging"
	"matchstats/internal/observability"
	"matchstats/internal/service"
)

// JobPayload represents the incoming refresh job from the Redis queue.
// Exactly one of PUUID, Email or GameName+TagLine identifies the player.
type JobPayload struct {
	JobID    string `json:"job_id"`
	GameName string `json:"game_name,omitempty"`
	TagLine  string `json:"tag_line,omitempty"`
	Email    string `json:"email,omitempty"`
	PUUID    string `json:"puuid,omitempty"`
}

// Identifier converts the payload into a player identifier.
func (j JobPayload) Identifier() service.PlayerIdentifier {
	return service.PlayerIdentifier{
		PUUID:    j.PUUID,
		GameName: j.GameName,
		TagLine:  j.TagLine,
		Email:    j.Email,
	}
}

// Aggregator produces a player's match aggregate.
type Aggregator interface {
	FetchMatchAggregation(ctx context.Context, id service.PlayerIdentifier) (aggregate.MatchAggregate, error)
}

// RefreshProcessor handles player refresh jobs.
type RefreshProcessor struct {
	aggregator Aggregator
	metrics    *observability.Metrics
}

// NewRefreshProcessor creates a new refresh processor.
func NewRefreshProcessor(aggregator Aggregator, metrics *observability.Metrics) *RefreshProcessor {
	return &RefreshProcessor{aggregator: aggregator, metrics: metrics}
}

// Handle processes a single refresh job from the queue. Jobs naming an unknown
// player or a player without match history are acknowledged instead of retried.
func (p *RefreshProcessor) Handle(ctx context.Context, payload []byte) (err error) {
	logger := logging.Logger()
	startTime := time.Now()
	defer func() { p.metrics.JobHandled(err) }()

	// Parse job payload
	var job JobPayload
	if err := json.Unmarshal(payload, &job); err != nil {
		// Malformed payloads never succeed; drop them.
		logger.Errorf("discarding malformed refresh job: %v", err)
		return nil
	}

	id := job.Identifier()
	if id.PUUID == "" && id.Email == "" && (id.GameName == "" || id.TagLine == "") {
		logger.Errorf("discarding refresh job %s without player identifier", job.JobID)
		return nil
	}

	logger.Infof("processing refresh job %s for %s", job.JobID, id)

	agg, err := p.aggregator.FetchMatchAggregation(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrPlayerNotFound) || errors.Is(err, service.ErrMatchDataUnavailable) {
			logger.Warnf("refresh job %s skipped: %v", job.JobID, err)
			return nil
		}
		return fmt.Errorf("refresh %s: %w", id, err)
	}

	logger.Infof("refresh job %s completed for %s in %v: %d games, %.1f%% win rate, %d champions",
		job.JobID, id, time.Since(startTime), agg.GamesAnalyzed, agg.WinRate()*100, len(agg.Champions))
	if agg.Rank != nil {
		logger.Infof("refresh job %s: %s ranked %s %s %d LP, benchmark attached: %t",
			job.JobID, id, agg.Rank.Tier, agg.Rank.Division, agg.Rank.LeaguePoints, agg.Benchmark != nil)
	}

	return nil
}
