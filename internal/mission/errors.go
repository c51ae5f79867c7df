package mission

import (
	"errors"
	"fmt"

	"github.com/rachitshah07/drone-survey-management-system/models"
)

var (
	// ErrMissionNotFound is returned when the referenced mission id does not exist.
	ErrMissionNotFound = errors.New("mission not found")
	// ErrDroneNotFound is returned when the referenced drone id does not exist.
	ErrDroneNotFound = errors.New("drone not found")
	// ErrDroneUnavailable is returned when the drone is not in the available
	// state at a point where the lifecycle requires it.
	ErrDroneUnavailable = errors.New("drone not available")
	// ErrInvalidTransition is returned when an event is not valid for the
	// mission's current state. The mission and drone are left unchanged.
	ErrInvalidTransition = errors.New("invalid mission transition")
	// ErrConflict is returned when a concurrent transition won the race. The
	// failure is benign; callers may retry.
	ErrConflict = errors.New("concurrent transition conflict")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransitionError wraps ErrInvalidTransition with the rejected event and the
// state the mission was in when it was rejected.
type TransitionError struct {
	MissionID int64
	From      models.MissionStatus
	Event     Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("mission %d: cannot %s from %s", e.MissionID, e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// isAny reports whether err matches any of the given sentinel errors.
func isAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
