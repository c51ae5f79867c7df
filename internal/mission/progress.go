package mission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/rachitshah07/drone-survey-management-system/models"
)

// completionThreshold is the progress percentage at which a mission
// auto-completes.
const completionThreshold = 100.0

// eventProgress names progress reports in rejection errors; it is not a
// transition of its own.
const eventProgress Event = "report progress on"

// ProgressTracker accepts incremental progress reports and is the sole writer
// of progress_percentage and distance_covered. Status changes are delegated to
// the coordinator: a report reaching 100% completes the mission in the same
// transaction as the final progress write.
type ProgressTracker struct {
	coord *Coordinator
}

// NewProgressTracker wires a tracker over the coordinator.
func NewProgressTracker(coord *Coordinator) *ProgressTracker {
	return &ProgressTracker{coord: coord}
}

// Report records a progress update for an active mission. Percentage is
// clamped to [0,100]; a negative distance is rejected. Lost races against a
// concurrent transition surface as ErrConflict and are retried here with
// exponential backoff before giving up.
func (t *ProgressTracker) Report(ctx context.Context, missionID int64, pct, distance float64) (*models.Mission, error) {
	if distance < 0 {
		return nil, &ValidationError{Field: "distance_covered", Reason: "must not be negative"}
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	operation := func() (*models.Mission, error) {
		m, err := t.reportOnce(ctx, missionID, pct, distance)
		if err != nil && !errors.Is(err, ErrConflict) {
			return nil, backoff.Permanent(err)
		}
		return m, err
	}
	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(3),
		backoff.WithMaxElapsedTime(2*time.Second),
	)
}

func (t *ProgressTracker) reportOnce(ctx context.Context, missionID int64, pct, distance float64) (*models.Mission, error) {
	tx, err := t.coord.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin progress report: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	missions := t.coord.missions.WithTx(tx)
	m, err := missions.GetByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("get mission: %w", err)
	}
	if m == nil {
		return nil, ErrMissionNotFound
	}
	switch m.Status {
	case models.MissionStatusInProgress, models.MissionStatusPaused:
	default:
		return nil, &TransitionError{MissionID: missionID, From: m.Status, Event: eventProgress}
	}

	// The status guard in the UPDATE detects a transition that committed
	// between the read above and this write.
	ok, err := missions.UpdateProgress(ctx, missionID, pct, distance)
	if err != nil {
		return nil, fmt.Errorf("update progress: %w", err)
	}
	if !ok {
		return nil, ErrConflict
	}

	if pct >= completionThreshold {
		m, err = t.coord.transitionTx(ctx, tx, missionID, EventComplete, transitionRules[EventComplete])
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("commit progress report: %w", err)
		}
		t.coord.metrics.ObserveProgressReport()
		t.coord.observeSuccess(m, EventComplete)
		return m, nil
	}

	m, err = missions.GetByID(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("reload mission: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit progress report: %w", err)
	}
	t.coord.metrics.ObserveProgressReport()
	return m, nil
}
