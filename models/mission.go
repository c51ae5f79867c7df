package models

import (
	"encoding/json"
	"time"
)

// MissionStatus represents the current lifecycle state of a mission.
type MissionStatus string

const (
	MissionStatusPlanned MissionStatus = "planned"
	// MissionStatusStarting is declared for schema parity with earlier
	// deployments; no transition currently produces it.
	MissionStatusStarting   MissionStatus = "starting"
	MissionStatusInProgress MissionStatus = "in_progress"
	MissionStatusPaused     MissionStatus = "paused"
	MissionStatusCompleted  MissionStatus = "completed"
	MissionStatusAborted    MissionStatus = "aborted"
	MissionStatusFailed     MissionStatus = "failed"
)

// Terminal reports whether s is a final state.
func (s MissionStatus) Terminal() bool {
	switch s {
	case MissionStatusCompleted, MissionStatusAborted, MissionStatusFailed:
		return true
	}
	return false
}

// Active reports whether the mission currently commits its drone.
func (s MissionStatus) Active() bool {
	switch s {
	case MissionStatusStarting, MissionStatusInProgress, MissionStatusPaused:
		return true
	}
	return false
}

// Valid reports whether s is one of the declared mission statuses.
func (s MissionStatus) Valid() bool {
	switch s {
	case MissionStatusPlanned, MissionStatusStarting, MissionStatusInProgress,
		MissionStatusPaused, MissionStatusCompleted, MissionStatusAborted, MissionStatusFailed:
		return true
	}
	return false
}

// MissionType represents the kind of survey a mission performs.
type MissionType string

const (
	MissionTypeInspection     MissionType = "inspection"
	MissionTypeMapping        MissionType = "mapping"
	MissionTypeSecurityPatrol MissionType = "security_patrol"
	MissionTypeSurvey         MissionType = "survey"
)

// Valid reports whether t is one of the declared mission types.
func (t MissionType) Valid() bool {
	switch t {
	case MissionTypeInspection, MissionTypeMapping, MissionTypeSecurityPatrol, MissionTypeSurvey:
		return true
	}
	return false
}

// Coordinate is a single lat/lng point used in survey areas and waypoint lists.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Mission represents one survey flight assigned to exactly one drone.
// SurveyArea and Waypoints are stored as raw JSON text columns.
type Mission struct {
	ID                 int64           `db:"id" json:"id"`
	Name               string          `db:"name" json:"name"`
	Description        string          `db:"description" json:"description"`
	Type               MissionType     `db:"mission_type" json:"mission_type"`
	Status             MissionStatus   `db:"status" json:"status"`
	FlightAltitude     float64         `db:"flight_altitude" json:"flight_altitude"`       // meters
	FlightSpeed        float64         `db:"flight_speed" json:"flight_speed"`             // m/s
	OverlapPercentage  int             `db:"overlap_percentage" json:"overlap_percentage"`
	SurveyArea         json.RawMessage `db:"survey_area" json:"survey_area,omitempty"`
	Waypoints          json.RawMessage `db:"waypoints" json:"waypoints,omitempty"`
	ProgressPercentage float64         `db:"progress_percentage" json:"progress_percentage"`
	EstimatedDuration  *int            `db:"estimated_duration" json:"estimated_duration"` // minutes
	ActualDuration     *int            `db:"actual_duration" json:"actual_duration"`       // minutes
	DistanceCovered    float64         `db:"distance_covered" json:"distance_covered"`     // meters
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
	StartedAt          *time.Time      `db:"started_at" json:"started_at"`
	CompletedAt        *time.Time      `db:"completed_at" json:"completed_at"`
	DroneID            int64           `db:"drone_id" json:"drone_id"`
	UserID             int64           `db:"user_id" json:"user_id"`
}

// WaypointList decodes the waypoints column. Returns an empty slice when unset.
func (m *Mission) WaypointList() ([]Coordinate, error) {
	if len(m.Waypoints) == 0 {
		return nil, nil
	}
	var pts []Coordinate
	if err := json.Unmarshal(m.Waypoints, &pts); err != nil {
		return nil, err
	}
	return pts, nil
}

// SetWaypoints encodes pts into the waypoints column.
func (m *Mission) SetWaypoints(pts []Coordinate) error {
	b, err := json.Marshal(pts)
	if err != nil {
		return err
	}
	m.Waypoints = b
	return nil
}

// SurveyAreaPolygon decodes the survey_area column. Returns an empty slice when unset.
func (m *Mission) SurveyAreaPolygon() ([]Coordinate, error) {
	if len(m.SurveyArea) == 0 {
		return nil, nil
	}
	var pts []Coordinate
	if err := json.Unmarshal(m.SurveyArea, &pts); err != nil {
		return nil, err
	}
	return pts, nil
}
