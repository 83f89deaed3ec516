package aggregate

import (
	"matchstats/internal/riot"
)

// BuildMatchRecord derives one player's MatchRecord from a match summary and its timeline.
// It returns false when the player is not a participant of the match, which happens
// when a puuid goes stale; callers drop the match. A nil timeline, or one without
// extractable snapshots, leaves the timeline fields unset.
func BuildMatchRecord(puuid, matchID string, match *riot.MatchResponse, timeline *riot.TimelineResponse) (MatchRecord, bool) {
	if match == nil {
		return MatchRecord{}, false
	}

	p := findParticipant(puuid, match.Info.Participants)
	if p == nil {
		return MatchRecord{}, false
	}

	c := p.Challenges
	if c == nil {
		c = &riot.Challenges{}
	}

	gameDurationMinutes := float64(match.Info.GameDuration) / 60.0

	var csPerMinute float64
	if gameDurationMinutes > 0 {
		csPerMinute = float64(p.TotalMinionsKilled+p.NeutralMinionsKilled) / gameDurationMinutes
	}

	var damagePerGold float64
	if p.GoldEarned != 0 {
		damagePerGold = float64(p.TotalDamageDealtToChampions) / float64(p.GoldEarned)
	}

	record := MatchRecord{
		MatchID:             matchID,
		PUUID:               puuid,
		Win:                 p.Win,
		GameDurationMinutes: gameDurationMinutes,
		ChampionName:        p.ChampionName,
		Role:                RoleFromPosition(p.TeamPosition),

		Kills:                 p.Kills,
		Deaths:                p.Deaths,
		Assists:               p.Assists,
		KDA:                   floatOrZero(c.KDA),
		SoloKills:             intOrZero(c.SoloKills),
		DamagePerMinute:       floatOrZero(c.DamagePerMinute),
		DamagePerGold:         damagePerGold,
		TeamDamagePercentage:  floatOrZero(c.TeamDamagePercentage),
		DamageTakenPercentage: floatOrZero(c.DamageTakenOnTeamPercentage),
		KillParticipation:     floatOrZero(c.KillParticipation),

		GoldPerMinute: floatOrZero(c.GoldPerMinute),
		CSPerMinute:   csPerMinute,

		DamageToTurrets:    p.DamageDealtToTurrets,
		DamageToObjectives: p.DamageDealtToObjectives,
		TurretPlatesTaken:  intOrZero(c.TurretPlatesTaken),

		VisionScorePerMinute: floatOrZero(c.VisionScorePerMinute),
		WardsPlaced:          p.WardsPlaced,
		WardsKilled:          p.WardsKilled,
		ControlWardsPlaced:   intOrZero(c.ControlWardsPlaced),
	}

	if snapshots := ExtractSnapshots(puuid, timeline); snapshots != nil {
		record.CSAt10 = floatPtr(snapshots.At10.CS)
		record.GoldAt10 = floatPtr(snapshots.At10.Gold)
		if snapshots.At15 != nil {
			record.GoldAt15 = floatPtr(snapshots.At15.Gold)
			record.XPAt15 = floatPtr(snapshots.At15.XP)
		}
	}

	return record, true
}

func findParticipant(puuid string, participants []riot.MatchParticipant) *riot.MatchParticipant {
	for i := range participants {
		if participants[i].PUUID == puuid {
			return &participants[i]
		}
	}
	return nil
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatPtr(v int) *float64 {
	f := float64(v)
	return &f
}
