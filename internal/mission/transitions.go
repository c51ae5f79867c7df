package mission

import "github.com/rachitshah07/drone-survey-management-system/models"

// Event is a caller-driven mission lifecycle event.
type Event string

const (
	EventStart  Event = "start"
	EventPause  Event = "pause"
	EventResume Event = "resume"
	EventAbort  Event = "abort"
	// EventComplete is raised by the progress tracker when progress reaches 100%.
	EventComplete Event = "complete"
)

// rule describes one row of the transition table: the states an event may fire
// from, the destination state, and the side effects applied with it. Drone
// side effects are compare-and-set: claiming requires the drone to still be
// available, freeing only fires when the mission was holding the drone.
type rule struct {
	from            []models.MissionStatus
	to              models.MissionStatus
	claimsDrone     bool
	freesDrone      bool
	setStartedAt    bool
	setCompletedAt  bool
	computeDuration bool
}

func (r rule) allows(s models.MissionStatus) bool {
	for _, f := range r.from {
		if f == s {
			return true
		}
	}
	return false
}

// transitionRules is the whole reachable state machine. `starting` appears in
// no row: it is declared in the schema but nothing produces it, so the
// reachable path is planned → in_progress directly.
var transitionRules = map[Event]rule{
	EventStart: {
		from:         []models.MissionStatus{models.MissionStatusPlanned},
		to:           models.MissionStatusInProgress,
		claimsDrone:  true,
		setStartedAt: true,
	},
	EventPause: {
		from: []models.MissionStatus{models.MissionStatusInProgress},
		to:   models.MissionStatusPaused,
	},
	EventResume: {
		from: []models.MissionStatus{models.MissionStatusPaused},
		to:   models.MissionStatusInProgress,
	},
	EventAbort: {
		from: []models.MissionStatus{
			models.MissionStatusPlanned,
			models.MissionStatusInProgress,
			models.MissionStatusPaused,
		},
		to:             models.MissionStatusAborted,
		freesDrone:     true,
		setCompletedAt: true,
	},
	EventComplete: {
		from: []models.MissionStatus{
			models.MissionStatusInProgress,
			models.MissionStatusPaused,
		},
		to:              models.MissionStatusCompleted,
		freesDrone:      true,
		setCompletedAt:  true,
		computeDuration: true,
	},
}
