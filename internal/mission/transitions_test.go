package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rachitshah07/drone-survey-management-system/models"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		event Event
		from  models.MissionStatus
		ok    bool
	}{
		{EventStart, models.MissionStatusPlanned, true},
		{EventStart, models.MissionStatusInProgress, false},
		{EventStart, models.MissionStatusPaused, false},
		{EventStart, models.MissionStatusCompleted, false},

		{EventPause, models.MissionStatusInProgress, true},
		{EventPause, models.MissionStatusPlanned, false},
		{EventPause, models.MissionStatusPaused, false},

		{EventResume, models.MissionStatusPaused, true},
		{EventResume, models.MissionStatusInProgress, false},
		{EventResume, models.MissionStatusPlanned, false},

		{EventAbort, models.MissionStatusPlanned, true},
		{EventAbort, models.MissionStatusInProgress, true},
		{EventAbort, models.MissionStatusPaused, true},
		{EventAbort, models.MissionStatusCompleted, false},
		{EventAbort, models.MissionStatusAborted, false},
		{EventAbort, models.MissionStatusFailed, false},

		{EventComplete, models.MissionStatusInProgress, true},
		{EventComplete, models.MissionStatusPaused, true},
		{EventComplete, models.MissionStatusPlanned, false},
		{EventComplete, models.MissionStatusCompleted, false},
	}
	for _, tc := range cases {
		got := transitionRules[tc.event].allows(tc.from)
		assert.Equal(t, tc.ok, got, "%s from %s", tc.event, tc.from)
	}

	// No rule produces the declared but unused starting state, and every
	// terminal state is a dead end.
	for ev, r := range transitionRules {
		assert.NotEqual(t, models.MissionStatusStarting, r.to, "event %s", ev)
		for _, from := range r.from {
			assert.False(t, from.Terminal(), "event %s fires from terminal %s", ev, from)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, models.MissionStatusCompleted.Terminal())
	assert.True(t, models.MissionStatusAborted.Terminal())
	assert.True(t, models.MissionStatusFailed.Terminal())
	assert.False(t, models.MissionStatusPlanned.Terminal())
	assert.False(t, models.MissionStatusPaused.Terminal())

	assert.True(t, models.MissionStatusInProgress.Active())
	assert.True(t, models.MissionStatusPaused.Active())
	assert.False(t, models.MissionStatusPlanned.Active())
	assert.False(t, models.MissionStatusCompleted.Active())
}
