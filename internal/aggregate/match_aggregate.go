package aggregate

// BuildMatchAggregate rolls a list of match records up into overall averages and a
// per-champion breakdown. An empty list yields a zero aggregate with no champions.
func BuildMatchAggregate(records []MatchRecord) MatchAggregate {
	if len(records) == 0 {
		return MatchAggregate{Champions: []ChampionAggregate{}}
	}

	return MatchAggregate{
		Stats:     computeStats(records),
		Champions: BuildChampionAggregates(records),
	}
}

// BuildRoleAggregate is BuildMatchAggregate restricted to records played in role.
func BuildRoleAggregate(records []MatchRecord, role Role) MatchAggregate {
	var scoped []MatchRecord
	for _, r := range records {
		if r.Role == role {
			scoped = append(scoped, r)
		}
	}

	agg := BuildMatchAggregate(scoped)
	agg.Role = role
	return agg
}

// computeStats averages every numeric field over the records. Timeline averages use
// their own denominators: records with a 10 minute snapshot for CS/gold at 10 and
// records with a 15 minute snapshot for gold/xp at 15.
func computeStats(records []MatchRecord) Stats {
	var totalKills, totalDeaths, totalAssists float64
	var totalKDA, totalSoloKills, totalDamagePerMinute, totalDamagePerGold float64
	var totalTeamDamagePct, totalDamageTakenPct, totalKillParticipation float64
	var totalGoldPerMinute, totalCSPerMinute float64
	var totalDamageToTurrets, totalDamageToObjectives, totalTurretPlates float64
	var totalVisionPerMinute, totalWardsPlaced, totalWardsKilled, totalControlWards float64

	var gamesWithAt10, gamesWithAt15 int
	var totalCSAt10, totalGoldAt10, totalGoldAt15, totalXPAt15 float64

	wins := 0

	for _, r := range records {
		if r.Win {
			wins++
		}

		totalKills += float64(r.Kills)
		totalDeaths += float64(r.Deaths)
		totalAssists += float64(r.Assists)
		totalKDA += r.KDA
		totalSoloKills += float64(r.SoloKills)
		totalDamagePerMinute += r.DamagePerMinute
		totalDamagePerGold += r.DamagePerGold
		totalTeamDamagePct += r.TeamDamagePercentage
		totalDamageTakenPct += r.DamageTakenPercentage
		totalKillParticipation += r.KillParticipation

		totalGoldPerMinute += r.GoldPerMinute
		totalCSPerMinute += r.CSPerMinute

		totalDamageToTurrets += float64(r.DamageToTurrets)
		totalDamageToObjectives += float64(r.DamageToObjectives)
		totalTurretPlates += float64(r.TurretPlatesTaken)

		totalVisionPerMinute += r.VisionScorePerMinute
		totalWardsPlaced += float64(r.WardsPlaced)
		totalWardsKilled += float64(r.WardsKilled)
		totalControlWards += float64(r.ControlWardsPlaced)

		// CS and gold at 10 are always set together.
		if r.CSAt10 != nil && r.GoldAt10 != nil {
			gamesWithAt10++
			totalCSAt10 += *r.CSAt10
			totalGoldAt10 += *r.GoldAt10
		}
		if r.GoldAt15 != nil && r.XPAt15 != nil {
			gamesWithAt15++
			totalGoldAt15 += *r.GoldAt15
			totalXPAt15 += *r.XPAt15
		}
	}

	games := len(records)

	return Stats{
		GamesAnalyzed: games,
		Wins:          wins,
		Losses:        games - wins,
		GamesWithAt10: gamesWithAt10,
		GamesWithAt15: gamesWithAt15,

		AvgKills:                 average(totalKills, games),
		AvgDeaths:                average(totalDeaths, games),
		AvgAssists:               average(totalAssists, games),
		AvgKDA:                   average(totalKDA, games),
		AvgSoloKills:             average(totalSoloKills, games),
		AvgDamagePerMinute:       average(totalDamagePerMinute, games),
		AvgDamagePerGold:         average(totalDamagePerGold, games),
		AvgTeamDamagePercentage:  average(totalTeamDamagePct, games),
		AvgDamageTakenPercentage: average(totalDamageTakenPct, games),
		AvgKillParticipation:     average(totalKillParticipation, games),

		AvgGoldPerMinute: average(totalGoldPerMinute, games),
		AvgCSPerMinute:   average(totalCSPerMinute, games),
		AvgCSAt10:        average(totalCSAt10, gamesWithAt10),
		AvgGoldAt10:      average(totalGoldAt10, gamesWithAt10),
		AvgGoldAt15:      average(totalGoldAt15, gamesWithAt15),
		AvgXPAt15:        average(totalXPAt15, gamesWithAt15),

		AvgDamageToTurrets:    average(totalDamageToTurrets, games),
		AvgDamageToObjectives: average(totalDamageToObjectives, games),
		AvgTurretPlatesTaken:  average(totalTurretPlates, games),

		AvgVisionScorePerMinute: average(totalVisionPerMinute, games),
		AvgWardsPlaced:          average(totalWardsPlaced, games),
		AvgWardsKilled:          average(totalWardsKilled, games),
		AvgControlWardsPlaced:   average(totalControlWards, games),
	}
}

func average(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
