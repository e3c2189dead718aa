package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSnapshot() *StandingSnapshot {
	return &StandingSnapshot{
		ID:           StandingID(2024, 2, 44),
		Year:         2024,
		Round:        2,
		AfterRace:    "Saudi Arabian Grand Prix",
		DriverNumber: 44,
		DriverName:   "Lewis HAMILTON",
		TeamName:     "Mercedes",
		Position:     1,
		Points:       44,
	}
}

func TestStandingID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2024_2_44", StandingID(2024, 2, 44))
}

func TestStandingSnapshotValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validSnapshot().Validate())

	tests := []struct {
		name    string
		mutate  func(s *StandingSnapshot)
		wantErr error
	}{
		{
			name:    "non-positive year",
			mutate:  func(s *StandingSnapshot) { s.Year = 0 },
			wantErr: ErrResultYearInvalid,
		},
		{
			name:    "non-positive round",
			mutate:  func(s *StandingSnapshot) { s.Round = 0 },
			wantErr: ErrResultRoundInvalid,
		},
		{
			name:    "non-positive driver number",
			mutate:  func(s *StandingSnapshot) { s.DriverNumber = -44 },
			wantErr: ErrResultDriverInvalid,
		},
		{
			name:    "non-positive position",
			mutate:  func(s *StandingSnapshot) { s.Position = 0 },
			wantErr: ErrStandingPositionInvalid,
		},
		{
			name:    "negative gap to leader",
			mutate:  func(s *StandingSnapshot) { s.PointsBehindLeader = -1 },
			wantErr: ErrStandingGapNegative,
		},
		{
			name:    "negative gap to next",
			mutate:  func(s *StandingSnapshot) { s.PointsAheadNext = -1 },
			wantErr: ErrStandingGapNegative,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			snap := validSnapshot()
			tc.mutate(snap)
			assert.ErrorIs(t, snap.Validate(), tc.wantErr)
		})
	}
}
