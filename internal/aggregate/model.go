package aggregate

// Role is the lane a player was assigned in a match.
type Role string

const (
	RoleADC     Role = "ADC"
	RoleJungle  Role = "JUNGLE"
	RoleMid     Role = "MID"
	RoleTop     Role = "TOP"
	RoleSupport Role = "SUPPORT"
	RoleOther   Role = "OTHER"
)

// riotPositions maps the match-v5 teamPosition label to a Role.
var riotPositions = map[string]Role{
	"BOTTOM":  RoleADC,
	"MIDDLE":  RoleMid,
	"TOP":     RoleTop,
	"JUNGLE":  RoleJungle,
	"UTILITY": RoleSupport,
}

// RoleFromPosition maps a Riot position label. Unknown or empty labels map to RoleOther.
func RoleFromPosition(position string) Role {
	if role, ok := riotPositions[position]; ok {
		return role
	}
	return RoleOther
}

// ParseRole validates a configured role name.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleADC, RoleJungle, RoleMid, RoleTop, RoleSupport, RoleOther:
		return r, true
	}
	return "", false
}

// MatchRecord mirrors the match_records table: one player's performance in one match.
// Identity is (MatchID, PUUID). Timeline fields are nil when the game ended before the snapshot.
type MatchRecord struct {
	MatchID             string
	PUUID               string
	Win                 bool
	GameDurationMinutes float64
	ChampionName        string
	Role                Role

	// Combat
	Kills                 int
	Deaths                int
	Assists               int
	KDA                   float64
	SoloKills             int
	DamagePerMinute       float64
	DamagePerGold         float64
	TeamDamagePercentage  float64
	DamageTakenPercentage float64
	KillParticipation     float64

	// Economy
	GoldPerMinute float64
	CSPerMinute   float64

	// Objectives
	DamageToTurrets    int
	DamageToObjectives int
	TurretPlatesTaken  int

	// Vision
	VisionScorePerMinute float64
	WardsPlaced          int
	WardsKilled          int
	ControlWardsPlaced   int

	// Timeline
	CSAt10   *float64
	GoldAt10 *float64
	GoldAt15 *float64
	XPAt15   *float64
}

// Stats holds the counts and averages shared by MatchAggregate and ChampionAggregate.
type Stats struct {
	GamesAnalyzed int
	Wins          int
	Losses        int

	// Denominators of the optional timeline averages.
	GamesWithAt10 int
	GamesWithAt15 int

	// Combat
	AvgKills                 float64
	AvgDeaths                float64
	AvgAssists               float64
	AvgKDA                   float64
	AvgSoloKills             float64
	AvgDamagePerMinute       float64
	AvgDamagePerGold         float64
	AvgTeamDamagePercentage  float64
	AvgDamageTakenPercentage float64
	AvgKillParticipation     float64

	// Economy
	AvgGoldPerMinute float64
	AvgCSPerMinute   float64
	AvgCSAt10        float64
	AvgGoldAt10      float64
	AvgGoldAt15      float64
	AvgXPAt15        float64

	// Objectives
	AvgDamageToTurrets    float64
	AvgDamageToObjectives float64
	AvgTurretPlatesTaken  float64

	// Vision
	AvgVisionScorePerMinute float64
	AvgWardsPlaced          float64
	AvgWardsKilled          float64
	AvgControlWardsPlaced   float64
}

// WinRate returns Wins/GamesAnalyzed, or 0 when no games were analyzed.
func (s Stats) WinRate() float64 {
	if s.GamesAnalyzed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesAnalyzed)
}

// MatchAggregate is the overall rollup of a player's match records.
type MatchAggregate struct {
	// Role is the role of interest the aggregate was scoped to, empty for all roles.
	Role Role
	Stats
	Champions []ChampionAggregate

	// Rank is the player's ranked solo/duo standing, nil when unranked or not looked up.
	Rank *Rank
	// Benchmark is the reference of Rank.Tier for Role. Only role-scoped aggregates carry one.
	Benchmark *Benchmark
}

// ChampionAggregate is the rollup restricted to one champion.
type ChampionAggregate struct {
	ChampionName string
	Stats
}
