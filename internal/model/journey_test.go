package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckInInterval(t *testing.T) {
	j := &Journey{CheckInIntervalMinutes: 15}
	assert.Equal(t, 15*time.Minute, j.CheckInInterval())
}

func TestCheckInDeadline(t *testing.T) {
	start := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

	t.Run("uses next_check_in when present", func(t *testing.T) {
		next := start.Add(30 * time.Minute)
		j := &Journey{
			StartTime:              start,
			CheckInIntervalMinutes: 15,
			NextCheckIn:            &next,
		}
		assert.Equal(t, next, j.CheckInDeadline())
	})

	t.Run("falls back to start_time plus interval", func(t *testing.T) {
		j := &Journey{
			StartTime:              start,
			CheckInIntervalMinutes: 15,
		}
		assert.Equal(t, start.Add(15*time.Minute), j.CheckInDeadline())
	})
}

func TestIsMonitorable(t *testing.T) {
	cases := []struct {
		status JourneyStatus
		want   bool
	}{
		{JourneyStatusActive, true},
		{JourneyStatusAlert, true},
		{JourneyStatusCompleted, false},
	}

	for _, tc := range cases {
		j := &Journey{Status: tc.status}
		assert.Equal(t, tc.want, j.IsMonitorable(), "status=%s", tc.status)
	}
}
