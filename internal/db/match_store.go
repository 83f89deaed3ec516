package db

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"matchstats/internal/aggregate"
	"matchstats/internal/logging"
	"matchstats/internal/service"
)

var _ service.MatchRecordStore = (*MatchRecordStore)(nil)

// matchRecordColumns is the column order shared by COPY and SELECT.
var matchRecordColumns = []string{
	"match_id", "puuid", "win", "game_duration_minutes", "champion_name", "role",
	"kills", "deaths", "assists", "kda", "solo_kills",
	"damage_per_minute", "damage_per_gold", "team_damage_percentage", "damage_taken_percentage", "kill_participation",
	"gold_per_minute", "cs_per_minute",
	"damage_to_turrets", "damage_to_objectives", "turret_plates_taken",
	"vision_score_per_minute", "wards_placed", "wards_killed", "control_wards_placed",
	"cs_at_10", "gold_at_10", "gold_at_15", "xp_at_15",
}

// MatchRecordStore persists match records in the match_records table.
type MatchRecordStore struct {
	pool *pgxpool.Pool
}

// NewMatchRecordStore creates a new Postgres-backed match record store.
func NewMatchRecordStore(pool *pgxpool.Pool) *MatchRecordStore {
	return &MatchRecordStore{pool: pool}
}

// LoadExisting returns the stored records of puuid among matchIDs.
func (s *MatchRecordStore) LoadExisting(ctx context.Context, puuid string, matchIDs []string) ([]aggregate.MatchRecord, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT match_id, puuid, win, game_duration_minutes, champion_name, role,
		       kills, deaths, assists, kda, solo_kills,
		       damage_per_minute, damage_per_gold, team_damage_percentage, damage_taken_percentage, kill_participation,
		       gold_per_minute, cs_per_minute,
		       damage_to_turrets, damage_to_objectives, turret_plates_taken,
		       vision_score_per_minute, wards_placed, wards_killed, control_wards_placed,
		       cs_at_10, gold_at_10, gold_at_15, xp_at_15
		FROM match_records
		WHERE puuid = $1 AND match_id = ANY($2)
	`, puuid, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("query match records: %w", err)
	}
	defer rows.Close()

	var records []aggregate.MatchRecord
	for rows.Next() {
		var r aggregate.MatchRecord
		var role string
		if err := rows.Scan(&r.MatchID, &r.PUUID, &r.Win, &r.GameDurationMinutes, &r.ChampionName, &role,
			&r.Kills, &r.Deaths, &r.Assists, &r.KDA, &r.SoloKills,
			&r.DamagePerMinute, &r.DamagePerGold, &r.TeamDamagePercentage, &r.DamageTakenPercentage, &r.KillParticipation,
			&r.GoldPerMinute, &r.CSPerMinute,
			&r.DamageToTurrets, &r.DamageToObjectives, &r.TurretPlatesTaken,
			&r.VisionScorePerMinute, &r.WardsPlaced, &r.WardsKilled, &r.ControlWardsPlaced,
			&r.CSAt10, &r.GoldAt10, &r.GoldAt15, &r.XPAt15); err != nil {
			return nil, fmt.Errorf("scan match record: %w", err)
		}
		r.Role = aggregate.Role(role)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match records: %w", err)
	}

	logging.Logger().Debugf("loaded %d stored match records for puuid %s", len(records), puuid)
	return records, nil
}

// SaveAll inserts records within a single transaction. Records whose (match_id, puuid)
// already exists are left untouched, so re-saving is a no-op.
func (s *MatchRecordStore) SaveAll(ctx context.Context, records []aggregate.MatchRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize concurrent saves for the same player.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(records[0].PUUID)); err != nil {
		return fmt.Errorf("acquire player lock: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		CREATE TEMP TABLE match_records_staging
		(LIKE match_records INCLUDING DEFAULTS) ON COMMIT DROP
	`); err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}

	if err := copyMatchRecords(ctx, tx, records); err != nil {
		return fmt.Errorf("copy match records: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO match_records
		SELECT * FROM match_records_staging
		ON CONFLICT (match_id, puuid) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert match records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	logging.Logger().Debugf("persisted %d of %d match records", tag.RowsAffected(), len(records))
	return nil
}

// copyMatchRecords loads records into the staging table using COPY protocol.
func copyMatchRecords(ctx context.Context, tx pgx.Tx, records []aggregate.MatchRecord) error {
	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"match_records_staging"},
		matchRecordColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{
				r.MatchID, r.PUUID, r.Win, r.GameDurationMinutes, r.ChampionName, string(r.Role),
				r.Kills, r.Deaths, r.Assists, r.KDA, r.SoloKills,
				r.DamagePerMinute, r.DamagePerGold, r.TeamDamagePercentage, r.DamageTakenPercentage, r.KillParticipation,
				r.GoldPerMinute, r.CSPerMinute,
				r.DamageToTurrets, r.DamageToObjectives, r.TurretPlatesTaken,
				r.VisionScorePerMinute, r.WardsPlaced, r.WardsKilled, r.ControlWardsPlaced,
				r.CSAt10, r.GoldAt10, r.GoldAt15, r.XPAt15,
			}, nil
		}),
	)
	return err
}

// advisoryLockKey generates a stable int64 key from a puuid for pg_advisory_xact_lock.
func advisoryLockKey(puuid string) int64 {
	h := fnv.New64a()
	h.Write([]byte(puuid))
	return int64(binary.BigEndian.Uint64(h.Sum(nil)[:8]))
}
