package riot

// AccountResponse represents the response from /riot/account/v1/accounts/by-riot-id
type AccountResponse struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// MatchResponse represents the response from /lol/match/v5/matches/{matchId}.
// Only the fields the aggregation pipeline reads are decoded.
type MatchResponse struct {
	Metadata MatchMetadata `json:"metadata"`
	Info     MatchInfo     `json:"info"`
}

type MatchMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs
}

type MatchInfo struct {
	GameCreation int64              `json:"gameCreation"`
	GameDuration int                `json:"gameDuration"` // seconds
	QueueID      int                `json:"queueId"`
	Participants []MatchParticipant `json:"participants"`
}

type MatchParticipant struct {
	PUUID        string `json:"puuid"`
	Win          bool   `json:"win"`
	ChampionName string `json:"championName"`
	TeamPosition string `json:"teamPosition"` // TOP, JUNGLE, MIDDLE, BOTTOM, UTILITY

	// Combat
	Kills                       int `json:"kills"`
	Deaths                      int `json:"deaths"`
	Assists                     int `json:"assists"`
	TotalDamageDealtToChampions int `json:"totalDamageDealtToChampions"`
	GoldEarned                  int `json:"goldEarned"`
	DamageDealtToTurrets        int `json:"damageDealtToTurrets"`
	DamageDealtToObjectives     int `json:"damageDealtToObjectives"`

	// Farming
	TotalMinionsKilled   int `json:"totalMinionsKilled"`
	NeutralMinionsKilled int `json:"neutralMinionsKilled"`

	// Vision
	WardsPlaced int `json:"wardsPlaced"`
	WardsKilled int `json:"wardsKilled"`

	Challenges *Challenges `json:"challenges"`
}

// Challenges holds values pre-computed by Riot. Any of them may be missing from a payload.
type Challenges struct {
	KDA                         *float64 `json:"kda"`
	SoloKills                   *int     `json:"soloKills"`
	DamagePerMinute             *float64 `json:"damagePerMinute"`
	TeamDamagePercentage        *float64 `json:"teamDamagePercentage"`
	DamageTakenOnTeamPercentage *float64 `json:"damageTakenOnTeamPercentage"`
	KillParticipation           *float64 `json:"killParticipation"`
	GoldPerMinute               *float64 `json:"goldPerMinute"`
	VisionScorePerMinute        *float64 `json:"visionScorePerMinute"`
	ControlWardsPlaced          *int     `json:"controlWardsPlaced"`
	TurretPlatesTaken           *int     `json:"turretPlatesTaken"`
}

// TimelineResponse represents the response from /lol/match/v5/matches/{matchId}/timeline
type TimelineResponse struct {
	Metadata TimelineMetadata `json:"metadata"`
	Info     TimelineInfo     `json:"info"`
}

type TimelineMetadata struct {
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"` // PUUIDs, position+1 is the participant id
}

type TimelineInfo struct {
	FrameInterval int             `json:"frameInterval"`
	Frames        []TimelineFrame `json:"frames"`
}

type TimelineFrame struct {
	Timestamp         int                         `json:"timestamp"`
	ParticipantFrames map[string]ParticipantFrame `json:"participantFrames"` // keyed by participant id
}

type ParticipantFrame struct {
	MinionsKilled       int `json:"minionsKilled"`
	JungleMinionsKilled int `json:"jungleMinionsKilled"`
	TotalGold           int `json:"totalGold"`
	XP                  int `json:"xp"`
}

// LeagueEntry is one element of /lol/league/v4/entries/by-puuid/{puuid}.
type LeagueEntry struct {
	LeagueID     string `json:"leagueId"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	PUUID        string `json:"puuid"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}
