package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rachitshah07/drone-survey-management-system/models"
)

// MissionRepository is the core repository for Mission entities.
// It performs no lifecycle validation; guards live in the coordinator.
type MissionRepository struct {
	db DBTX
}

func NewMissionRepository(db *sql.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

// WithTx returns a copy of the repository that executes against tx.
func (r *MissionRepository) WithTx(tx *sql.Tx) *MissionRepository {
	return &MissionRepository{db: tx}
}

const missionColumns = `id, name, description, mission_type, status, flight_altitude, flight_speed, overlap_percentage, survey_area, waypoints, progress_percentage, estimated_duration, actual_duration, distance_covered, created_at, started_at, completed_at, drone_id, user_id`

// Create inserts a new mission. Status defaults to 'planned' if empty.
func (r *MissionRepository) Create(ctx context.Context, m *models.Mission) (*models.Mission, error) {
	if m == nil {
		return nil, errors.New("mission is nil")
	}
	if m.Status == "" {
		m.Status = models.MissionStatusPlanned
	}
	if m.FlightAltitude == 0 {
		m.FlightAltitude = 50.0
	}
	if m.FlightSpeed == 0 {
		m.FlightSpeed = 5.0
	}
	if m.OverlapPercentage == 0 {
		m.OverlapPercentage = 70
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	m.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `INSERT INTO missions (name, description, mission_type, status, flight_altitude, flight_speed, overlap_percentage, survey_area, waypoints, progress_percentage, estimated_duration, actual_duration, distance_covered, created_at, started_at, completed_at, drone_id, user_id) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		m.Name, m.Description, string(m.Type), string(m.Status), m.FlightAltitude, m.FlightSpeed, m.OverlapPercentage,
		nullString(string(m.SurveyArea)), nullString(string(m.Waypoints)),
		m.ProgressPercentage, nullInt(m.EstimatedDuration), nullInt(m.ActualDuration), m.DistanceCovered,
		formatTime(m.CreatedAt), nullTime(m.StartedAt), nullTime(m.CompletedAt), m.DroneID, m.UserID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	m2, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m2 == nil {
		return nil, fmt.Errorf("created mission not found: id=%d", id)
	}
	return m2, nil
}

func (r *MissionRepository) GetByID(ctx context.Context, id int64) (*models.Mission, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	m, err := scanMissionRow(r.db.QueryRowContext(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// TransitionTimes carries the timestamp writes that accompany a status change.
// Nil fields leave the stored value untouched.
type TransitionTimes struct {
	StartedAt      *time.Time
	CompletedAt    *time.Time
	ActualDuration *int // minutes
}

// TransitionStatus moves a mission from one status to another in a single
// conditional UPDATE. Returns false when the stored status no longer matches
// from, which signals a lost race to the coordinator.
func (r *MissionRepository) TransitionStatus(ctx context.Context, id int64, from, to models.MissionStatus, tt TransitionTimes) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `
UPDATE missions SET status = ?,
       started_at = COALESCE(?, started_at),
       completed_at = COALESCE(?, completed_at),
       actual_duration = COALESCE(?, actual_duration)
WHERE id = ? AND status = ?`,
		string(to), nullTime(tt.StartedAt), nullTime(tt.CompletedAt), nullInt(tt.ActualDuration), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateProgress writes progress fields for a mission that is still active.
// Returns false when the mission is missing or no longer in an active state.
func (r *MissionRepository) UpdateProgress(ctx context.Context, id int64, pct, distance float64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `
UPDATE missions SET progress_percentage = ?, distance_covered = ?
WHERE id = ? AND status IN ('in_progress','paused')`, pct, distance, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *MissionRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM missions WHERE id = ?`, id)
	return err
}

func scanMissionRow(row rowScanner) (*models.Mission, error) {
	var m models.Mission
	var missionType, status, createdAt string
	var description sql.NullString
	var surveyArea, waypoints sql.NullString
	var estimated, actual sql.NullInt64
	var startedAt, completedAt sql.NullString
	err := row.Scan(&m.ID, &m.Name, &description, &missionType, &status,
		&m.FlightAltitude, &m.FlightSpeed, &m.OverlapPercentage,
		&surveyArea, &waypoints,
		&m.ProgressPercentage, &estimated, &actual, &m.DistanceCovered,
		&createdAt, &startedAt, &completedAt, &m.DroneID, &m.UserID)
	if err != nil {
		return nil, err
	}
	m.Description = description.String
	m.Type = models.MissionType(missionType)
	m.Status = models.MissionStatus(status)
	if surveyArea.Valid {
		m.SurveyArea = []byte(surveyArea.String)
	}
	if waypoints.Valid {
		m.Waypoints = []byte(waypoints.String)
	}
	if estimated.Valid {
		v := int(estimated.Int64)
		m.EstimatedDuration = &v
	}
	if actual.Valid {
		v := int(actual.Int64)
		m.ActualDuration = &v
	}
	m.CreatedAt = parseTime(createdAt)
	m.StartedAt = parseNullTime(startedAt)
	m.CompletedAt = parseNullTime(completedAt)
	return &m, nil
}
