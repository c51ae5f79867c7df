package repository

import (
	"context"
	"strings"
	"time"

	"github.com/rachitshah07/drone-survey-management-system/models"
)

// ListMissionsParams contains filters and pagination for List.
type ListMissionsParams struct {
	Statuses []models.MissionStatus
	Type     *models.MissionType
	DroneID  *int64
	UserID   *int64
	PageSize int
	AfterID  int64
}

// List returns missions matching the filters ordered by id asc with keyset pagination.
func (r *MissionRepository) List(ctx context.Context, p ListMissionsParams) ([]models.Mission, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var where []string
	var args []any
	if len(p.Statuses) > 0 {
		placeholders := make([]string, len(p.Statuses))
		for i, s := range p.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ",")+")")
	}
	if p.Type != nil {
		where = append(where, "mission_type = ?")
		args = append(args, string(*p.Type))
	}
	if p.DroneID != nil {
		where = append(where, "drone_id = ?")
		args = append(args, *p.DroneID)
	}
	if p.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *p.UserID)
	}
	if p.AfterID > 0 {
		where = append(where, "id > ?")
		args = append(args, p.AfterID)
	}

	query := `SELECT ` + missionColumns + ` FROM missions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC LIMIT ?"
	args = append(args, p.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Mission
	for rows.Next() {
		m, err := scanMissionRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// MissionStats holds the aggregate counters reported by the stats endpoint.
// Active counts starting and in_progress missions, matching the dashboard's
// definition of a flight currently underway.
type MissionStats struct {
	Total         int     `json:"total_missions"`
	Completed     int     `json:"completed_missions"`
	Active        int     `json:"active_missions"`
	TotalDistance float64 `json:"total_distance_covered"`
}

// Stats aggregates mission counters in a single scan.
func (r *MissionRepository) Stats(ctx context.Context) (MissionStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var s MissionStats
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN status IN ('starting','in_progress') THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(distance_covered), 0)
FROM missions`).Scan(&s.Total, &s.Completed, &s.Active, &s.TotalDistance)
	return s, err
}

// CountNonTerminalByDrone counts missions referencing a drone that have not
// reached a terminal state. Used to refuse drone deletion while referenced.
func (r *MissionRepository) CountNonTerminalByDrone(ctx context.Context, droneID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM missions
WHERE drone_id = ? AND status NOT IN ('completed','aborted','failed')`, droneID).Scan(&n)
	return n, err
}

// CountActiveByDrone counts missions holding the drone's availability
// (starting, in_progress, paused). The coordinator's invariant is that this is
// 1 exactly when the drone status is in_mission.
func (r *MissionRepository) CountActiveByDrone(ctx context.Context, droneID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var n int
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM missions
WHERE drone_id = ? AND status IN ('starting','in_progress','paused')`, droneID).Scan(&n)
	return n, err
}
