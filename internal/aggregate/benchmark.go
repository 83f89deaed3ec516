package aggregate

import "strings"

// Tier is a ranked ladder tier, lowest first.
type Tier string

const (
	TierIron        Tier = "IRON"
	TierBronze      Tier = "BRONZE"
	TierSilver      Tier = "SILVER"
	TierGold        Tier = "GOLD"
	TierPlatinum    Tier = "PLATINUM"
	TierEmerald     Tier = "EMERALD"
	TierDiamond     Tier = "DIAMOND"
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
)

var tiers = []Tier{
	TierIron, TierBronze, TierSilver, TierGold, TierPlatinum,
	TierEmerald, TierDiamond, TierMaster, TierGrandmaster, TierChallenger,
}

// ParseTier maps a league-v4 tier label such as "GOLD" to a Tier.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range tiers {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// IsApex reports whether the tier has no divisions.
func (t Tier) IsApex() bool {
	return t == TierMaster || t == TierGrandmaster || t == TierChallenger
}

// Rank is a player's standing in ranked solo/duo.
type Rank struct {
	Tier         Tier
	Division     string // I to IV, always I for apex tiers
	LeaguePoints int
	Wins         int
	Losses       int
}

// Benchmark is the reference distribution of players in one tier and role.
// Rows are loaded into the benchmarks table out of band.
type Benchmark struct {
	Tier    Tier
	Role    Role
	Median  BenchmarkStats
	Average BenchmarkStats
}

// BenchmarkStats are the per-game metrics a player is compared against.
type BenchmarkStats struct {
	CSPerMinute          float64
	KDA                  float64
	GoldPerMinute        float64
	DamagePerMinute      float64
	VisionScorePerMinute float64
	KillParticipation    float64
}
