package aggregate

import (
	"slices"
	"strconv"

	"matchstats/internal/riot"
)

// Frame indices of the timeline checkpoints. Riot emits one frame per minute
// starting at frame 0, so these are positions, not timestamps.
const (
	frameAt10 = 10
	frameAt15 = 15
)

// Snapshot is a player's cumulative state at one timeline checkpoint.
type Snapshot struct {
	CS   int
	Gold int
	XP   int
}

// TimelineSnapshots holds the 10 minute snapshot and, for long enough games, the 15 minute one.
type TimelineSnapshots struct {
	At10 Snapshot
	At15 *Snapshot
}

// ExtractSnapshots finds the player's participant frames at 10 and 15 minutes.
// It returns nil when the player is not in the timeline, the game has 10 frames or
// fewer, or frame 10 has no entry for the player. A missing 15 minute frame only
// leaves At15 nil.
func ExtractSnapshots(puuid string, timeline *riot.TimelineResponse) *TimelineSnapshots {
	if timeline == nil {
		return nil
	}

	index := slices.Index(timeline.Metadata.Participants, puuid)
	if index == -1 {
		return nil
	}
	participantID := strconv.Itoa(index + 1)

	frames := timeline.Info.Frames
	if len(frames) <= frameAt10 {
		return nil
	}

	at10, ok := frames[frameAt10].ParticipantFrames[participantID]
	if !ok {
		return nil
	}

	snapshots := &TimelineSnapshots{At10: snapshotOf(at10)}

	if len(frames) > frameAt15 {
		if at15, ok := frames[frameAt15].ParticipantFrames[participantID]; ok {
			s := snapshotOf(at15)
			snapshots.At15 = &s
		}
	}

	return snapshots
}

func snapshotOf(f riot.ParticipantFrame) Snapshot {
	return Snapshot{
		CS:   f.MinionsKilled + f.JungleMinionsKilled,
		Gold: f.TotalGold,
		XP:   f.XP,
	}
}
