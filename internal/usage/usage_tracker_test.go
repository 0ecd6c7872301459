package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sherlock/internal/gemini"
)

func TestTracker_TrackAndStats(t *testing.T) {
	tracker, err := NewTracker(t.TempDir())
	require.NoError(t, err)

	tracker.Track("retail6", "gemini-2.5-pro", "analyze", &gemini.UsageMetadata{
		PromptTokenCount: 1000, CandidatesTokenCount: 200, TotalTokenCount: 1200,
	})
	tracker.Track("retail6", "gemini-2.5-pro", "batch", &gemini.UsageMetadata{
		PromptTokenCount: 500, CandidatesTokenCount: 100, TotalTokenCount: 600,
	})

	stats := tracker.Stats()
	assert.Equal(t, int64(1800), stats.Total.Total)
	assert.Equal(t, int64(1500), stats.Total.Prompt)
	assert.Equal(t, int64(1800), stats.ByProject["retail6"].Total)
	assert.Equal(t, int64(1200), stats.ByOperation["analyze"].Total)
	assert.Equal(t, int64(600), stats.ByOperation["batch"].Total)
	assert.Equal(t, int64(1800), stats.BySession[tracker.SessionID()].Total)
}

func TestTracker_NilUsageIgnored(t *testing.T) {
	tracker, err := NewTracker(t.TempDir())
	require.NoError(t, err)

	tracker.Track("retail6", "gemini-2.5-pro", "analyze", nil)
	assert.Equal(t, int64(0), tracker.Stats().Total.Total)
}

func TestTracker_Persistence(t *testing.T) {
	dir := t.TempDir()

	tracker, err := NewTracker(dir)
	require.NoError(t, err)
	tracker.Track("retail6", "gemini-2.5-pro", "analyze", &gemini.UsageMetadata{
		PromptTokenCount: 100, CandidatesTokenCount: 50, TotalTokenCount: 150,
	})
	require.NoError(t, tracker.Save())

	reloaded, err := NewTracker(dir)
	require.NoError(t, err)

	stats := reloaded.Stats()
	assert.Equal(t, int64(150), stats.Total.Total)
	assert.Equal(t, int64(150), stats.ByProject["retail6"].Total)
	// New process gets a fresh session id.
	assert.NotEqual(t, tracker.SessionID(), reloaded.SessionID())
}

func TestTracker_StatsIsCopy(t *testing.T) {
	tracker, err := NewTracker(t.TempDir())
	require.NoError(t, err)
	tracker.Track("retail6", "m", "analyze", &gemini.UsageMetadata{PromptTokenCount: 1, CandidatesTokenCount: 1})

	stats := tracker.Stats()
	stats.ByProject["retail6"] = TokenCounts{Total: 999}

	assert.Equal(t, int64(2), tracker.Stats().ByProject["retail6"].Total)
}
