package mission

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rachitshah07/drone-survey-management-system/internal/geo"
	"github.com/rachitshah07/drone-survey-management-system/internal/metrics"
	"github.com/rachitshah07/drone-survey-management-system/models"
	"github.com/rachitshah07/drone-survey-management-system/repository"
)

// Coordinator owns every mission status transition and the drone status side
// effects that come with it. All dual-entity writes happen here, inside a
// single transaction, so a drone can never end up committed to two missions.
type Coordinator struct {
	db       *sql.DB
	missions *repository.MissionRepository
	drones   *repository.DroneRepository
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewCoordinator wires a coordinator over the shared database handle.
// metrics may be nil.
func NewCoordinator(db *sql.DB, missions *repository.MissionRepository, drones *repository.DroneRepository, m *metrics.Metrics, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		db:       db,
		missions: missions,
		drones:   drones,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateMissionInput carries the caller-supplied mission parameters.
type CreateMissionInput struct {
	Name              string
	Description       string
	Type              models.MissionType
	DroneID           int64
	UserID            int64
	FlightAltitude    float64
	FlightSpeed       float64
	OverlapPercentage int
	SurveyArea        json.RawMessage
	Waypoints         json.RawMessage
	EstimatedDuration *int
}

// CreateMission validates the input, checks that the referenced drone is
// currently available, and creates the mission in the planned state. The
// availability check here fails fast for callers; Start re-validates it
// atomically, so passing here does not reserve the drone.
func (c *Coordinator) CreateMission(ctx context.Context, in CreateMissionInput) (*models.Mission, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}
	if !in.Type.Valid() {
		return nil, &ValidationError{Field: "mission_type", Reason: fmt.Sprintf("unknown type %q", in.Type)}
	}
	if in.DroneID <= 0 {
		return nil, &ValidationError{Field: "drone_id", Reason: "required"}
	}
	if in.OverlapPercentage < 0 || in.OverlapPercentage > 100 {
		return nil, &ValidationError{Field: "overlap_percentage", Reason: "must be between 0 and 100"}
	}

	m := &models.Mission{
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Type:              in.Type,
		Status:            models.MissionStatusPlanned,
		FlightAltitude:    in.FlightAltitude,
		FlightSpeed:       in.FlightSpeed,
		OverlapPercentage: in.OverlapPercentage,
		EstimatedDuration: in.EstimatedDuration,
		DroneID:           in.DroneID,
		UserID:            in.UserID,
	}
	if len(in.SurveyArea) > 0 {
		var pts []models.Coordinate
		if err := json.Unmarshal(in.SurveyArea, &pts); err != nil {
			return nil, &ValidationError{Field: "survey_area", Reason: "must be a list of lat/lng points"}
		}
		m.SurveyArea = in.SurveyArea
	}
	var waypoints []models.Coordinate
	if len(in.Waypoints) > 0 {
		if err := json.Unmarshal(in.Waypoints, &waypoints); err != nil {
			return nil, &ValidationError{Field: "waypoints", Reason: "must be a list of lat/lng points"}
		}
		m.Waypoints = in.Waypoints
	}

	d, err := c.drones.GetByID(ctx, in.DroneID)
	if err != nil {
		return nil, fmt.Errorf("get drone: %w", err)
	}
	if d == nil {
		return nil, ErrDroneNotFound
	}
	if d.Status != models.DroneStatusAvailable {
		return nil, fmt.Errorf("drone %d is %s: %w", d.ID, d.Status, ErrDroneUnavailable)
	}

	// Derive an estimate from the flight plan when the caller did not supply one.
	if m.EstimatedDuration == nil && len(waypoints) > 1 {
		speed := m.FlightSpeed
		if speed == 0 {
			speed = 5.0
		}
		if est := geo.EstimateDurationMinutes(geo.PathLengthMeters(waypoints), speed); est > 0 {
			m.EstimatedDuration = &est
		}
	}

	created, err := c.missions.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create mission: %w", err)
	}
	c.logger.Info("mission created",
		"mission_id", created.ID,
		"mission_type", created.Type,
		"drone_id", created.DroneID,
		"user_id", created.UserID,
	)
	return created, nil
}

// Start moves a planned mission to in_progress and commits its drone.
func (c *Coordinator) Start(ctx context.Context, id int64) (*models.Mission, error) {
	return c.Transition(ctx, id, EventStart)
}

// Pause moves an in_progress mission to paused. The drone stays committed.
func (c *Coordinator) Pause(ctx context.Context, id int64) (*models.Mission, error) {
	return c.Transition(ctx, id, EventPause)
}

// Resume moves a paused mission back to in_progress.
func (c *Coordinator) Resume(ctx context.Context, id int64) (*models.Mission, error) {
	return c.Transition(ctx, id, EventResume)
}

// Abort terminates a non-terminal mission and frees its drone.
func (c *Coordinator) Abort(ctx context.Context, id int64) (*models.Mission, error) {
	return c.Transition(ctx, id, EventAbort)
}

// Transition applies one lifecycle event to a mission. The mission status
// write, drone status write, and timestamp writes commit together or not at
// all; any rejection leaves both records unchanged.
func (c *Coordinator) Transition(ctx context.Context, id int64, ev Event) (*models.Mission, error) {
	r, ok := transitionRules[ev]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", ev)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	m, err := c.transitionTx(ctx, tx, id, ev, r)
	if err != nil {
		c.observeFailure(err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition: %w", err)
	}
	c.observeSuccess(m, ev)
	return m, nil
}

// transitionTx runs the guarded transition inside the caller's transaction.
// The progress tracker reuses it to complete a mission in the same transaction
// as the final progress write.
func (c *Coordinator) transitionTx(ctx context.Context, tx *sql.Tx, id int64, ev Event, r rule) (*models.Mission, error) {
	missions := c.missions.WithTx(tx)
	drones := c.drones.WithTx(tx)

	m, err := missions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get mission: %w", err)
	}
	if m == nil {
		return nil, ErrMissionNotFound
	}
	if !r.allows(m.Status) {
		return nil, &TransitionError{MissionID: id, From: m.Status, Event: ev}
	}

	now := c.now().UTC()
	var tt repository.TransitionTimes
	if r.setStartedAt {
		tt.StartedAt = &now
	}
	if r.setCompletedAt {
		tt.CompletedAt = &now
	}
	if r.computeDuration && m.StartedAt != nil {
		minutes := int(now.Sub(*m.StartedAt).Minutes())
		tt.ActualDuration = &minutes
	}

	// The status guard in the UPDATE is the authoritative check: if another
	// transition committed between our read and this write, zero rows match.
	ok, err := missions.TransitionStatus(ctx, id, m.Status, r.to, tt)
	if err != nil {
		return nil, fmt.Errorf("update mission status: %w", err)
	}
	if !ok {
		return nil, ErrConflict
	}

	if r.claimsDrone {
		claimed, err := drones.UpdateStatusFrom(ctx, m.DroneID, models.DroneStatusAvailable, models.DroneStatusInMission)
		if err != nil {
			return nil, fmt.Errorf("claim drone: %w", err)
		}
		if !claimed {
			// Rolls back the mission status write above.
			return nil, fmt.Errorf("drone %d: %w", m.DroneID, ErrDroneUnavailable)
		}
	}
	if r.freesDrone && m.Status.Active() {
		// Only release a drone this mission was holding. If fleet management
		// moved it to maintenance mid-flight, leave that status alone.
		if _, err := drones.UpdateStatusFrom(ctx, m.DroneID, models.DroneStatusInMission, models.DroneStatusAvailable); err != nil {
			return nil, fmt.Errorf("release drone: %w", err)
		}
	}

	updated, err := missions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload mission: %w", err)
	}
	return updated, nil
}

func (c *Coordinator) observeSuccess(m *models.Mission, ev Event) {
	c.logger.Info("mission transition",
		"mission_id", m.ID,
		"event", string(ev),
		"status", string(m.Status),
		"drone_id", m.DroneID,
	)
	c.metrics.ObserveTransition(string(ev), string(m.Status))
	if ev == EventComplete && m.ActualDuration != nil {
		c.metrics.ObserveMissionDuration(float64(*m.ActualDuration))
	}
}

func (c *Coordinator) observeFailure(err error) {
	switch {
	case isAny(err, ErrInvalidTransition):
		c.metrics.ObserveTransitionFailure("invalid_transition")
	case isAny(err, ErrConflict):
		c.metrics.ObserveTransitionFailure("conflict")
	case isAny(err, ErrDroneUnavailable):
		c.metrics.ObserveTransitionFailure("drone_unavailable")
	case isAny(err, ErrMissionNotFound, ErrDroneNotFound):
		c.metrics.ObserveTransitionFailure("not_found")
	default:
		c.metrics.ObserveTransitionFailure("internal")
	}
}
