package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvents(year int, dates ...time.Time) []RaceEvent {
	events := make([]RaceEvent, len(dates))
	for i, d := range dates {
		events[i] = RaceEvent{
			Year:       year,
			Round:      i + 1,
			GrandPrix:  "Grand Prix",
			SessionKey: 9000 + i,
			Date:       d,
		}
	}
	return events
}

func TestNewCalendarValid(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
	events := testEvents(2024, base, base.AddDate(0, 0, 7), base.AddDate(0, 0, 14))

	calendar, err := NewCalendar(2024, events)
	require.NoError(t, err)
	assert.Equal(t, 2024, calendar.Year)
	assert.Equal(t, 3, calendar.Rounds())

	ev, ok := calendar.EventForRound(2)
	require.True(t, ok)
	assert.Equal(t, 2, ev.Round)

	_, ok = calendar.EventForRound(0)
	assert.False(t, ok)
	_, ok = calendar.EventForRound(4)
	assert.False(t, ok)
}

func TestNewCalendarRejections(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		year   int
		events []RaceEvent
	}{
		{
			name:   "non-positive year",
			year:   0,
			events: testEvents(0, base),
		},
		{
			name:   "no events",
			year:   2024,
			events: nil,
		},
		{
			name: "event from another season",
			year: 2024,
			events: []RaceEvent{
				{Year: 2023, Round: 1, Date: base},
			},
		},
		{
			name: "rounds not starting at 1",
			year: 2024,
			events: []RaceEvent{
				{Year: 2024, Round: 2, Date: base},
			},
		},
		{
			name: "round gap",
			year: 2024,
			events: []RaceEvent{
				{Year: 2024, Round: 1, Date: base},
				{Year: 2024, Round: 3, Date: base.AddDate(0, 0, 7)},
			},
		},
		{
			name: "equal dates",
			year: 2024,
			events: []RaceEvent{
				{Year: 2024, Round: 1, Date: base},
				{Year: 2024, Round: 2, Date: base},
			},
		},
		{
			name: "dates out of order",
			year: 2024,
			events: []RaceEvent{
				{Year: 2024, Round: 1, Date: base},
				{Year: 2024, Round: 2, Date: base.AddDate(0, 0, -7)},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			calendar, err := NewCalendar(tc.year, tc.events)
			assert.Nil(t, calendar)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDataIntegrity)

			var integrityErr *DataIntegrityError
			require.ErrorAs(t, err, &integrityErr)
			assert.Equal(t, tc.year, integrityErr.Year)
		})
	}
}
