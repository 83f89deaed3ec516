package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"matchstats/internal/aggregate"
	"matchstats/internal/logging"
	"matchstats/internal/observability"
	"matchstats/internal/riot"
)

const (
	defaultRemakeThresholdMinutes = 10.0
	defaultFetchConcurrency       = 4
)

// Drop reasons for fetched matches that never reach the store.
const (
	dropSummaryNotFound = "summary_not_found"
	dropNotParticipant  = "not_participant"
	dropRemake          = "remake"
)

// PlayerResolver maps a player identifier to a puuid.
type PlayerResolver interface {
	ResolvePUUID(ctx context.Context, id PlayerIdentifier) (string, error)
}

// MatchSource is the remote match-data API. Each call is rate limited by the implementation.
type MatchSource interface {
	ListRecentMatchIDs(ctx context.Context, puuid string) ([]string, error)
	GetMatch(ctx context.Context, matchID string) (*riot.MatchResponse, error)
	GetTimeline(ctx context.Context, matchID string) (*riot.TimelineResponse, error)
}

// MatchRecordStore caches built match records keyed by (match id, puuid).
type MatchRecordStore interface {
	// LoadExisting returns the stored records of puuid whose match id is in matchIDs.
	LoadExisting(ctx context.Context, puuid string, matchIDs []string) ([]aggregate.MatchRecord, error)

	// SaveAll persists records. Saving an already stored (match id, puuid) is a no-op.
	SaveAll(ctx context.Context, records []aggregate.MatchRecord) error
}

// RankSource reads a player's ranked solo/duo standing. A nil entry means unranked.
type RankSource interface {
	GetSoloQueueEntry(ctx context.Context, puuid string) (*riot.LeagueEntry, error)
}

// BenchmarkStore looks up reference stats per tier and role.
type BenchmarkStore interface {
	Benchmark(ctx context.Context, tier aggregate.Tier, role aggregate.Role) (aggregate.Benchmark, bool, error)
}

// Options tunes the aggregation pipeline.
type Options struct {
	// RemakeThresholdMinutes drops fetched games shorter than this. Zero uses 10.
	RemakeThresholdMinutes float64
	// Role restricts aggregation to one lane. Persistence is never role scoped.
	Role aggregate.Role
	// FetchConcurrency bounds how many match ids are fetched at once.
	FetchConcurrency int
	Metrics          *observability.Metrics

	// Ranks attaches the player's rank when set.
	Ranks RankSource
	// Benchmarks attaches the benchmark of the player's tier to role-scoped aggregates.
	Benchmarks BenchmarkStore
}

// MatchAggregationService runs resolve, list, diff, fetch, filter, persist and aggregate
// for one player per call.
type MatchAggregationService struct {
	resolver PlayerResolver
	source   MatchSource
	store    MatchRecordStore

	ranks      RankSource
	benchmarks BenchmarkStore

	remakeThreshold  float64
	role             aggregate.Role
	fetchConcurrency int
	metrics          *observability.Metrics
}

// NewMatchAggregationService wires the pipeline collaborators.
func NewMatchAggregationService(resolver PlayerResolver, source MatchSource, store MatchRecordStore, opts Options) *MatchAggregationService {
	if opts.RemakeThresholdMinutes <= 0 {
		opts.RemakeThresholdMinutes = defaultRemakeThresholdMinutes
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = defaultFetchConcurrency
	}
	return &MatchAggregationService{
		resolver:         resolver,
		source:           source,
		store:            store,
		ranks:            opts.Ranks,
		benchmarks:       opts.Benchmarks,
		remakeThreshold:  opts.RemakeThresholdMinutes,
		role:             opts.Role,
		fetchConcurrency: opts.FetchConcurrency,
		metrics:          opts.Metrics,
	}
}

// pipelineRun collects per-request counters for logging and metrics.
type pipelineRun struct {
	storeHits int
	fetched   int
	saved     int
	dropped   map[string]int
}

// FetchMatchAggregation returns the player's aggregate over their recent matches.
// Either the whole pipeline succeeds or one error is returned; no partial aggregate
// is ever produced.
func (s *MatchAggregationService) FetchMatchAggregation(ctx context.Context, id PlayerIdentifier) (agg aggregate.MatchAggregate, err error) {
	logger := logging.With("request_id", uuid.NewString())
	startTime := time.Now()
	run := &pipelineRun{dropped: make(map[string]int)}
	defer func() {
		s.metrics.PipelineRun(run.storeHits, run.fetched, run.saved, run.dropped, err)
	}()

	// Resolve player
	puuid, err := s.resolver.ResolvePUUID(ctx, id)
	if err != nil {
		return aggregate.MatchAggregate{}, fmt.Errorf("resolve player %s: %w", id, err)
	}

	// List recent match ids
	matchIDs, err := s.source.ListRecentMatchIDs(ctx, puuid)
	if err != nil {
		if errors.Is(err, riot.ErrNotFound) {
			return aggregate.MatchAggregate{}, fmt.Errorf("%w: no match history for %s", ErrMatchDataUnavailable, id)
		}
		return aggregate.MatchAggregate{}, fmt.Errorf("list match ids: %w", err)
	}
	matchIDs = dedupe(matchIDs)

	// Diff against the store
	existing, err := s.store.LoadExisting(ctx, puuid, matchIDs)
	if err != nil {
		return aggregate.MatchAggregate{}, fmt.Errorf("load existing records: %w", err)
	}
	missing := missingMatchIDs(matchIDs, existing)
	run.storeHits = len(existing)

	logger.Infof("player %s: %d match ids, %d stored, %d to fetch", id, len(matchIDs), len(existing), len(missing))

	// Fetch missing matches and build records
	fresh, err := s.fetchMissing(ctx, puuid, missing, run)
	if err != nil {
		return aggregate.MatchAggregate{}, err
	}

	// Drop remakes
	fresh = s.filterRemakes(fresh, run)

	// Persist
	if len(fresh) > 0 {
		if err := s.store.SaveAll(ctx, fresh); err != nil {
			return aggregate.MatchAggregate{}, fmt.Errorf("save match records: %w", err)
		}
		run.saved = len(fresh)
	}

	// Aggregate in match id order
	records := orderByMatchID(matchIDs, existing, fresh)
	if s.role != "" {
		agg = aggregate.BuildRoleAggregate(records, s.role)
	} else {
		agg = aggregate.BuildMatchAggregate(records)
	}

	// Rank and benchmark
	if err := s.attachRank(ctx, puuid, &agg); err != nil {
		return aggregate.MatchAggregate{}, err
	}

	logger.Infof("player %s: aggregated %d games (%d fetched, %d saved, %d dropped) in %v",
		id, agg.GamesAnalyzed, run.fetched, run.saved, totalDropped(run.dropped), time.Since(startTime))

	return agg, nil
}

// fetchMissing fetches every missing match concurrently. The first failure cancels
// all in-flight fetches and fails the whole phase.
func (s *MatchAggregationService) fetchMissing(ctx context.Context, puuid string, missing []string, run *pipelineRun) ([]aggregate.MatchRecord, error) {
	if len(missing) == 0 {
		return nil, nil
	}

	type fetchResult struct {
		record aggregate.MatchRecord
		drop   string
	}
	results := make([]fetchResult, len(missing))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchConcurrency)

	for i, matchID := range missing {
		i, matchID := i, matchID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record, drop, err := s.fetchOne(gctx, puuid, matchID)
			if err != nil {
				return err
			}
			results[i] = fetchResult{record: record, drop: drop}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInterrupted, ctxErr)
		}
		return nil, err
	}

	records := make([]aggregate.MatchRecord, 0, len(missing))
	for _, r := range results {
		if r.drop != "" {
			run.dropped[r.drop]++
			continue
		}
		records = append(records, r.record)
	}
	run.fetched = len(records)

	return records, nil
}

// fetchOne fetches a match summary and its timeline in parallel and builds the record.
// A failure of either call cancels the other. Not-found responses are not failures: an
// unknown match becomes a drop reason once both calls have returned, so a real error
// from the timeline still fails the request.
func (s *MatchAggregationService) fetchOne(ctx context.Context, puuid, matchID string) (aggregate.MatchRecord, string, error) {
	var match *riot.MatchResponse
	var timeline *riot.TimelineResponse
	var matchNotFound bool

	pair, pctx := errgroup.WithContext(ctx)
	pair.Go(func() error {
		m, err := s.source.GetMatch(pctx, matchID)
		if err != nil {
			if errors.Is(err, riot.ErrNotFound) {
				matchNotFound = true
				return nil
			}
			return fmt.Errorf("get match %s: %w", matchID, err)
		}
		match = m
		return nil
	})
	pair.Go(func() error {
		t, err := s.source.GetTimeline(pctx, matchID)
		if err != nil {
			if errors.Is(err, riot.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("get timeline %s: %w", matchID, err)
		}
		timeline = t
		return nil
	})

	if err := pair.Wait(); err != nil {
		return aggregate.MatchRecord{}, "", err
	}
	if matchNotFound {
		logging.Logger().Warnf("match %s not found, skipping", matchID)
		return aggregate.MatchRecord{}, dropSummaryNotFound, nil
	}

	record, ok := aggregate.BuildMatchRecord(puuid, matchID, match, timeline)
	if !ok {
		logging.Logger().Warnf("puuid %s is not a participant of match %s, skipping", puuid, matchID)
		return aggregate.MatchRecord{}, dropNotParticipant, nil
	}

	return record, "", nil
}

// attachRank looks up the player's solo/duo rank and, for role-scoped aggregates, the
// benchmark of that tier and role. Unranked players and missing benchmarks leave the
// fields nil; any other failure fails the request.
func (s *MatchAggregationService) attachRank(ctx context.Context, puuid string, agg *aggregate.MatchAggregate) error {
	if s.ranks == nil {
		return nil
	}

	entry, err := s.ranks.GetSoloQueueEntry(ctx, puuid)
	if err != nil {
		if errors.Is(err, riot.ErrNotFound) {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, ctxErr)
		}
		return fmt.Errorf("get league entry: %w", err)
	}
	if entry == nil {
		return nil
	}

	tier, ok := aggregate.ParseTier(entry.Tier)
	if !ok {
		logging.Logger().Warnf("unknown tier %q for puuid %s, skipping rank", entry.Tier, puuid)
		return nil
	}
	agg.Rank = &aggregate.Rank{
		Tier:         tier,
		Division:     entry.Rank,
		LeaguePoints: entry.LeaguePoints,
		Wins:         entry.Wins,
		Losses:       entry.Losses,
	}

	if s.benchmarks == nil || agg.Role == "" {
		return nil
	}
	benchmark, found, err := s.benchmarks.Benchmark(ctx, tier, agg.Role)
	if err != nil {
		return fmt.Errorf("load benchmark: %w", err)
	}
	if found {
		agg.Benchmark = &benchmark
	}
	return nil
}

// filterRemakes drops games shorter than the remake threshold.
func (s *MatchAggregationService) filterRemakes(records []aggregate.MatchRecord, run *pipelineRun) []aggregate.MatchRecord {
	kept := records[:0]
	for _, r := range records {
		if r.GameDurationMinutes < s.remakeThreshold {
			run.dropped[dropRemake]++
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// missingMatchIDs returns the ids in matchIDs without a stored record, keeping their order.
func missingMatchIDs(matchIDs []string, existing []aggregate.MatchRecord) []string {
	stored := make(map[string]struct{}, len(existing))
	for _, r := range existing {
		stored[r.MatchID] = struct{}{}
	}

	var missing []string
	for _, id := range matchIDs {
		if _, ok := stored[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// orderByMatchID reassembles stored and freshly built records in listing order.
func orderByMatchID(matchIDs []string, existing, fresh []aggregate.MatchRecord) []aggregate.MatchRecord {
	byID := make(map[string]aggregate.MatchRecord, len(existing)+len(fresh))
	for _, r := range existing {
		byID[r.MatchID] = r
	}
	for _, r := range fresh {
		byID[r.MatchID] = r
	}

	records := make([]aggregate.MatchRecord, 0, len(byID))
	for _, id := range matchIDs {
		if r, ok := byID[id]; ok {
			records = append(records, r)
		}
	}
	return records
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func totalDropped(dropped map[string]int) int {
	n := 0
	for _, c := range dropped {
		n += c
	}
	return n
}
