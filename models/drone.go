package models

import "time"

// DroneStatus represents the availability status of a drone.
type DroneStatus string

const (
	DroneStatusAvailable   DroneStatus = "available"
	DroneStatusInMission   DroneStatus = "in_mission"
	DroneStatusMaintenance DroneStatus = "maintenance"
	DroneStatusOffline     DroneStatus = "offline"
)

// Valid reports whether s is one of the declared drone statuses.
func (s DroneStatus) Valid() bool {
	switch s {
	case DroneStatusAvailable, DroneStatusInMission, DroneStatusMaintenance, DroneStatusOffline:
		return true
	}
	return false
}

// Drone represents a survey drone in the fleet.
// Status is `in_mission` only while an active mission references the drone;
// the mission coordinator owns that side of the record.
type Drone struct {
	ID            int64       `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	Model         string      `db:"model" json:"model"`
	SerialNumber  string      `db:"serial_number" json:"serial_number"`
	Status        DroneStatus `db:"status" json:"status"`
	BatteryLevel  int         `db:"battery_level" json:"battery_level"`
	LocationLat   *float64    `db:"location_lat" json:"location_lat"`
	LocationLng   *float64    `db:"location_lng" json:"location_lng"`
	Altitude      float64     `db:"altitude" json:"altitude"`
	MaxFlightTime int         `db:"max_flight_time" json:"max_flight_time"` // minutes
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	LastSeen      time.Time   `db:"last_seen" json:"last_seen"`
}
