package services

import (
	"testing"
	"time"

	"mazadly/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCountdown(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		endingAt time.Time
		expected models.CountdownState
	}{
		{
			name:     "one of each unit",
			endingAt: now.Add(90061001 * time.Millisecond), // 1d 1h 1m 1s and 1ms
			expected: models.CountdownState{Days: "01", Hours: "01", Minutes: "01", Seconds: "01"},
		},
		{
			name:     "sub-second remainder truncates",
			endingAt: now.Add(999 * time.Millisecond),
			expected: models.CountdownState{Days: "00", Hours: "00", Minutes: "00", Seconds: "00"},
		},
		{
			name:     "large day counts keep full width",
			endingAt: now.Add(120 * 24 * time.Hour),
			expected: models.CountdownState{Days: "120", Hours: "00", Minutes: "00", Seconds: "00"},
		},
		{
			name:     "deadline in the past",
			endingAt: now.Add(-time.Second),
			expected: models.CountdownState{Days: "00", Hours: "00", Minutes: "00", Seconds: "00", HasEnded: true},
		},
		{
			name:     "deadline exactly now",
			endingAt: now,
			expected: models.CountdownState{Days: "00", Hours: "00", Minutes: "00", Seconds: "00", HasEnded: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeCountdown(tt.endingAt, now))
		})
	}
}

func TestCountdownEngine_TickRecomputesSnapshot(t *testing.T) {
	engine, err := NewCountdownEngine(&MockListingRepository{})
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	listingID := uuid.New()
	engine.Track(listingID, now.Add(61*time.Second))
	engine.tick()

	state, ok := engine.StateFor(listingID)
	require.True(t, ok)
	assert.Equal(t, "01", state.Minutes)
	assert.Equal(t, "01", state.Seconds)
	assert.False(t, state.HasEnded)

	// Advance past the deadline; the next tick flips the ended flag.
	now = now.Add(2 * time.Minute)
	engine.tick()

	state, ok = engine.StateFor(listingID)
	require.True(t, ok)
	assert.True(t, state.HasEnded)
	assert.Equal(t, "00", state.Seconds)
}

func TestCountdownEngine_SnapshotReplacedWholesale(t *testing.T) {
	engine, err := NewCountdownEngine(&MockListingRepository{})
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	listingID := uuid.New()
	engine.Track(listingID, now.Add(time.Hour))
	engine.tick()

	before := engine.Snapshot()
	now = now.Add(time.Second)
	engine.tick()
	after := engine.Snapshot()

	// Old snapshot readers keep a consistent view.
	assert.Equal(t, "00", before[listingID].Seconds)
	assert.Equal(t, "59", after[listingID].Minutes)
	assert.Equal(t, "59", after[listingID].Seconds)
}

func TestCountdownEngine_Untrack(t *testing.T) {
	engine, err := NewCountdownEngine(&MockListingRepository{})
	require.NoError(t, err)

	listingID := uuid.New()
	engine.Track(listingID, time.Now().Add(time.Hour))
	engine.tick()

	_, ok := engine.StateFor(listingID)
	require.True(t, ok)

	engine.Untrack(listingID)
	engine.tick()

	_, ok = engine.StateFor(listingID)
	assert.False(t, ok)
}
