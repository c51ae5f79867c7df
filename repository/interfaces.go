package repository

import (
	"context"
	"database/sql"

	"github.com/rachitshah07/drone-survey-management-system/models"
)

// DBTX is the subset of database/sql used by repositories. Both *sql.DB and
// *sql.Tx satisfy it, which lets the mission coordinator run repository calls
// inside a single transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

// DroneRepositoryI defines operations on Drone entities.
// No cross-mission validation happens here; the mission coordinator is trusted
// to keep drone status consistent with mission state.
type DroneRepositoryI interface {
	Create(ctx context.Context, d *models.Drone) (*models.Drone, error)
	GetByID(ctx context.Context, id int64) (*models.Drone, error)
	GetBySerial(ctx context.Context, serial string) (*models.Drone, error)
	Update(ctx context.Context, d *models.Drone) error
	UpdateStatus(ctx context.Context, id int64, status models.DroneStatus) (bool, error)
	UpdateStatusFrom(ctx context.Context, id int64, from, to models.DroneStatus) (bool, error)
	UpdateTelemetry(ctx context.Context, id int64, battery int, lat, lng *float64, altitude float64) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, p ListDronesParams) ([]models.Drone, error)
	CountByStatus(ctx context.Context) (DroneStats, error)
}

// MissionRepositoryI defines operations on Mission entities. Pure data access;
// lifecycle guards live in the coordinator.
type MissionRepositoryI interface {
	Create(ctx context.Context, m *models.Mission) (*models.Mission, error)
	GetByID(ctx context.Context, id int64) (*models.Mission, error)
	TransitionStatus(ctx context.Context, id int64, from, to models.MissionStatus, tt TransitionTimes) (bool, error)
	UpdateProgress(ctx context.Context, id int64, pct, distance float64) (bool, error)
	List(ctx context.Context, p ListMissionsParams) ([]models.Mission, error)
	Stats(ctx context.Context) (MissionStats, error)
	CountNonTerminalByDrone(ctx context.Context, droneID int64) (int, error)
}
