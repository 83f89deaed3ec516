package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchstats/internal/aggregate"
	"matchstats/internal/service"
)

var _ service.BenchmarkStore = (*BenchmarkReader)(nil)

// BenchmarkReader provides read-only access to tier and role benchmarks.
type BenchmarkReader struct {
	pool *pgxpool.Pool
}

func NewBenchmarkReader(pool *pgxpool.Pool) *BenchmarkReader {
	return &BenchmarkReader{pool: pool}
}

// Benchmark returns the benchmark row of (tier, role). found is false when none is loaded.
func (r *BenchmarkReader) Benchmark(ctx context.Context, tier aggregate.Tier, role aggregate.Role) (b aggregate.Benchmark, found bool, err error) {
	b.Tier, b.Role = tier, role
	err = r.pool.QueryRow(ctx, `
		SELECT
			median_cs_per_minute, median_kda, median_gold_per_minute,
			median_damage_per_minute, median_vision_score_per_minute, median_kill_participation,
			avg_cs_per_minute, avg_kda, avg_gold_per_minute,
			avg_damage_per_minute, avg_vision_score_per_minute, avg_kill_participation
		FROM benchmarks
		WHERE tier = $1 AND role = $2
	`, string(tier), string(role)).Scan(
		&b.Median.CSPerMinute, &b.Median.KDA, &b.Median.GoldPerMinute,
		&b.Median.DamagePerMinute, &b.Median.VisionScorePerMinute, &b.Median.KillParticipation,
		&b.Average.CSPerMinute, &b.Average.KDA, &b.Average.GoldPerMinute,
		&b.Average.DamagePerMinute, &b.Average.VisionScorePerMinute, &b.Average.KillParticipation,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return aggregate.Benchmark{}, false, nil
		}
		return aggregate.Benchmark{}, false, fmt.Errorf("get benchmark %s/%s: %w", tier, role, err)
	}
	return b, true, nil
}
