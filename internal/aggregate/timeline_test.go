package aggregate

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchstats/internal/riot"
)

// buildTimeline returns a timeline with frameCount frames where the participant at
// position idx (0-based) has 8*minute lane minions and 2*minute jungle minions, so cs is
// 10*minute. Gold is 300*minute and xp is 400*minute.
func buildTimeline(participants []string, idx, frameCount int) *riot.TimelineResponse {
	frames := make([]riot.TimelineFrame, frameCount)
	pid := strconv.Itoa(idx + 1)
	for minute := range frames {
		frames[minute] = riot.TimelineFrame{
			Timestamp: minute * 60000,
			ParticipantFrames: map[string]riot.ParticipantFrame{
				pid: {
					MinionsKilled:       8 * minute,
					JungleMinionsKilled: 2 * minute,
					TotalGold:           300 * minute,
					XP:                  400 * minute,
				},
			},
		}
	}
	return &riot.TimelineResponse{
		Metadata: riot.TimelineMetadata{Participants: participants},
		Info:     riot.TimelineInfo{FrameInterval: 60000, Frames: frames},
	}
}

func TestExtractSnapshots_Both(t *testing.T) {
	timeline := buildTimeline([]string{"a", "b", "me"}, 2, 30)

	s := ExtractSnapshots("me", timeline)
	require.NotNil(t, s)

	assert.Equal(t, Snapshot{CS: 100, Gold: 3000, XP: 4000}, s.At10)
	require.NotNil(t, s.At15)
	assert.Equal(t, Snapshot{CS: 150, Gold: 4500, XP: 6000}, *s.At15)
}

func TestExtractSnapshots_ShortGameHasNoAt15(t *testing.T) {
	// 13 frames: frame 10 exists, frame 15 does not.
	timeline := buildTimeline([]string{"me"}, 0, 13)

	s := ExtractSnapshots("me", timeline)
	require.NotNil(t, s)
	assert.Equal(t, 3000, s.At10.Gold)
	assert.Nil(t, s.At15)
}

func TestExtractSnapshots_ExactlySixteenFrames(t *testing.T) {
	s := ExtractSnapshots("me", buildTimeline([]string{"me"}, 0, 16))
	require.NotNil(t, s)
	require.NotNil(t, s.At15)
	assert.Equal(t, 6000, s.At15.XP)
}

func TestExtractSnapshots_Absent(t *testing.T) {
	tests := []struct {
		name     string
		timeline *riot.TimelineResponse
	}{
		{"nil timeline", nil},
		{"player not in timeline", buildTimeline([]string{"a", "b"}, 0, 30)},
		{"ten frames", buildTimeline([]string{"me"}, 0, 10)},
		{"no frames", buildTimeline([]string{"me"}, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ExtractSnapshots("me", tt.timeline))
		})
	}
}

func TestExtractSnapshots_MissingParticipantFrame(t *testing.T) {
	timeline := buildTimeline([]string{"me"}, 0, 30)
	delete(timeline.Info.Frames[10].ParticipantFrames, "1")

	assert.Nil(t, ExtractSnapshots("me", timeline))
}

func TestExtractSnapshots_MissingFrame15Entry(t *testing.T) {
	timeline := buildTimeline([]string{"me"}, 0, 30)
	delete(timeline.Info.Frames[15].ParticipantFrames, "1")

	s := ExtractSnapshots("me", timeline)
	require.NotNil(t, s)
	assert.Nil(t, s.At15)
}
