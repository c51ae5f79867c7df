package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/rachitshah07/drone-survey-management-system/models"
)

type DroneRepository struct {
	db DBTX
}

func NewDroneRepository(db *sql.DB) *DroneRepository {
	return &DroneRepository{db: db}
}

// WithTx returns a copy of the repository that executes against tx.
func (r *DroneRepository) WithTx(tx *sql.Tx) *DroneRepository {
	return &DroneRepository{db: tx}
}

const droneColumns = `id, name, model, serial_number, status, battery_level, location_lat, location_lng, altitude, max_flight_time, created_at, last_seen`

// Create inserts a new drone. Status defaults to 'available' if empty.
func (r *DroneRepository) Create(ctx context.Context, d *models.Drone) (*models.Drone, error) {
	if d == nil {
		return nil, errors.New("drone is nil")
	}
	if d.Status == "" {
		d.Status = models.DroneStatusAvailable
	}
	if d.BatteryLevel == 0 {
		d.BatteryLevel = 100
	}
	if d.MaxFlightTime == 0 {
		d.MaxFlightTime = 30
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	now := time.Now().UTC()
	d.CreatedAt = now
	d.LastSeen = now
	res, err := r.db.ExecContext(ctx, `INSERT INTO drones (name, model, serial_number, status, battery_level, location_lat, location_lng, altitude, max_flight_time, created_at, last_seen) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		d.Name, d.Model, d.SerialNumber, string(d.Status), d.BatteryLevel, nullFloat(d.LocationLat), nullFloat(d.LocationLng), d.Altitude, d.MaxFlightTime, formatTime(now), formatTime(now))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	d.ID = id
	return d, nil
}

func (r *DroneRepository) GetByID(ctx context.Context, id int64) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+droneColumns+` FROM drones WHERE id = ?`, id))
}

func (r *DroneRepository) GetBySerial(ctx context.Context, serial string) (*models.Drone, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.scanOne(r.db.QueryRowContext(ctx, `SELECT `+droneColumns+` FROM drones WHERE serial_number = ?`, serial))
}

// Update overwrites the descriptive and telemetry fields of a drone and bumps last_seen.
func (r *DroneRepository) Update(ctx context.Context, d *models.Drone) error {
	if d == nil {
		return errors.New("drone is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx,
		`UPDATE drones SET name = ?, model = ?, status = ?, battery_level = ?, location_lat = ?, location_lng = ?, altitude = ?, max_flight_time = ?, last_seen = ? WHERE id = ?`,
		d.Name, d.Model, string(d.Status), d.BatteryLevel, nullFloat(d.LocationLat), nullFloat(d.LocationLng), d.Altitude, d.MaxFlightTime, formatTime(time.Now()), d.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus sets the drone status unconditionally and bumps last_seen.
// Returns false when the drone does not exist.
func (r *DroneRepository) UpdateStatus(ctx context.Context, id int64, status models.DroneStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE drones SET status = ?, last_seen = ? WHERE id = ?`, string(status), formatTime(time.Now()), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateStatusFrom sets the drone status only when the current status matches
// from. Returns false when the drone is missing or its status changed
// underneath the caller; the coordinator uses this as its compare-and-set.
func (r *DroneRepository) UpdateStatusFrom(ctx context.Context, id int64, from, to models.DroneStatus) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE drones SET status = ?, last_seen = ? WHERE id = ? AND status = ?`,
		string(to), formatTime(time.Now()), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateTelemetry records battery, position, and altitude and bumps last_seen.
func (r *DroneRepository) UpdateTelemetry(ctx context.Context, id int64, battery int, lat, lng *float64, altitude float64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE drones SET battery_level = ?, location_lat = ?, location_lng = ?, altitude = ?, last_seen = ? WHERE id = ?`,
		battery, nullFloat(lat), nullFloat(lng), altitude, formatTime(time.Now()), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *DroneRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.db.ExecContext(ctx, `DELETE FROM drones WHERE id = ?`, id)
	return err
}

// ListDronesParams contains filters and pagination for List.
type ListDronesParams struct {
	Status               *models.DroneStatus
	NameOrSerialContains *string
	PageSize             int
	AfterID              int64
}

// List returns drones matching the filters ordered by id asc with keyset pagination.
func (r *DroneRepository) List(ctx context.Context, p ListDronesParams) ([]models.Drone, error) {
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	where := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if p.Status != nil {
		where = append(where, "status = ?")
		args = append(args, string(*p.Status))
	}
	if p.NameOrSerialContains != nil && strings.TrimSpace(*p.NameOrSerialContains) != "" {
		like := "%" + strings.TrimSpace(*p.NameOrSerialContains) + "%"
		where = append(where, "(name LIKE ? OR serial_number LIKE ?)")
		args = append(args, like, like)
	}
	if p.AfterID > 0 {
		where = append(where, "id > ?")
		args = append(args, p.AfterID)
	}

	query := `SELECT ` + droneColumns + ` FROM drones`
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

	var out []models.Drone
	for rows.Next() {
		d, err := scanDroneRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// DroneStats holds fleet-wide drone counts by status.
type DroneStats struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	InMission   int `json:"in_mission"`
	Maintenance int `json:"maintenance"`
	Offline     int `json:"offline"`
}

// CountByStatus aggregates fleet counts in a single scan.
func (r *DroneRepository) CountByStatus(ctx context.Context) (DroneStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var s DroneStats
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN status = 'available' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN status = 'in_mission' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN status = 'maintenance' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN status = 'offline' THEN 1 ELSE 0 END), 0)
FROM drones`).Scan(&s.Total, &s.Available, &s.InMission, &s.Maintenance, &s.Offline)
	return s, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DroneRepository) scanOne(row *sql.Row) (*models.Drone, error) {
	d, err := scanDroneRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func scanDroneRow(row rowScanner) (*models.Drone, error) {
	var d models.Drone
	var status, createdAt, lastSeen string
	var lat, lng sql.NullFloat64
	err := row.Scan(&d.ID, &d.Name, &d.Model, &d.SerialNumber, &status, &d.BatteryLevel, &lat, &lng, &d.Altitude, &d.MaxFlightTime, &createdAt, &lastSeen)
	if err != nil {
		return nil, err
	}
	d.Status = models.DroneStatus(status)
	if lat.Valid {
		v := lat.Float64
		d.LocationLat = &v
	}
	if lng.Valid {
		v := lng.Float64
		d.LocationLng = &v
	}
	d.CreatedAt = parseTime(createdAt)
	d.LastSeen = parseTime(lastSeen)
	return &d, nil
}
