package aggregate

import (
	"sort"
)

// BuildChampionAggregates groups records by champion and computes Stats for each group.
// Output is ordered by games played (descending), then champion name, so it is stable
// for a given input regardless of record order.
func BuildChampionAggregates(records []MatchRecord) []ChampionAggregate {
	byChampion := make(map[string][]MatchRecord)
	for _, r := range records {
		byChampion[r.ChampionName] = append(byChampion[r.ChampionName], r)
	}

	champions := make([]ChampionAggregate, 0, len(byChampion))
	for name, champRecords := range byChampion {
		champions = append(champions, ChampionAggregate{
			ChampionName: name,
			Stats:        computeStats(champRecords),
		})
	}

	sort.Slice(champions, func(i, j int) bool {
		if champions[i].GamesAnalyzed != champions[j].GamesAnalyzed {
			return champions[i].GamesAnalyzed > champions[j].GamesAnalyzed
		}
		return champions[i].ChampionName < champions[j].ChampionName
	})

	return champions
}
