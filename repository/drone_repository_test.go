package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rachitshah07/drone-survey-management-system/internal/db"
	"github.com/rachitshah07/drone-survey-management-system/models"
)

func openTestDB(t *testing.T) *DroneRepository {
	t.Helper()
	d, err := db.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return NewDroneRepository(d)
}

func TestDroneCreateAndGet(t *testing.T) {
	repo := openTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d, err := repo.Create(ctx, &models.Drone{
		Name:         "Surveyor-1",
		Model:        "QuadX",
		SerialNumber: "SN-100",
	})
	if err != nil {
		t.Fatalf("create drone: %v", err)
	}
	if d.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if d.Status != models.DroneStatusAvailable {
		t.Errorf("expected status available, got %s", d.Status)
	}
	if d.BatteryLevel != 100 {
		t.Errorf("expected default battery 100, got %d", d.BatteryLevel)
	}
	if d.MaxFlightTime != 30 {
		t.Errorf("expected default max flight time 30, got %d", d.MaxFlightTime)
	}

	got, err := repo.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got == nil || got.SerialNumber != "SN-100" {
		t.Fatalf("get by id returned %+v", got)
	}

	got, err = repo.GetBySerial(ctx, "SN-100")
	if err != nil {
		t.Fatalf("get by serial: %v", err)
	}
	if got == nil || got.ID != d.ID {
		t.Fatalf("get by serial returned %+v", got)
	}

	// Unknown ids return nil, nil.
	got, err = repo.GetByID(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing drone: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing drone, got %+v", got)
	}

	// Duplicate serials are rejected by the schema.
	if _, err := repo.Create(ctx, &models.Drone{Name: "Dup", Model: "QuadX", SerialNumber: "SN-100"}); err == nil {
		t.Error("expected duplicate serial to fail")
	}
}

func TestDroneUpdateStatusFrom(t *testing.T) {
	repo := openTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d, err := repo.Create(ctx, &models.Drone{Name: "Surveyor-2", Model: "QuadX", SerialNumber: "SN-200"})
	if err != nil {
		t.Fatalf("create drone: %v", err)
	}

	// Matching precondition moves the status.
	ok, err := repo.UpdateStatusFrom(ctx, d.ID, models.DroneStatusAvailable, models.DroneStatusInMission)
	if err != nil {
		t.Fatalf("update status from available: %v", err)
	}
	if !ok {
		t.Fatal("expected CAS from available to succeed")
	}

	// Stale precondition touches nothing.
	ok, err = repo.UpdateStatusFrom(ctx, d.ID, models.DroneStatusAvailable, models.DroneStatusInMission)
	if err != nil {
		t.Fatalf("stale update status: %v", err)
	}
	if ok {
		t.Error("expected CAS with stale status to report false")
	}
	got, err := repo.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("get drone: %v", err)
	}
	if got.Status != models.DroneStatusInMission {
		t.Errorf("expected in_mission, got %s", got.Status)
	}

	// Missing drone also reports false.
	ok, err = repo.UpdateStatusFrom(ctx, 9999, models.DroneStatusAvailable, models.DroneStatusInMission)
	if err != nil {
		t.Fatalf("update missing drone: %v", err)
	}
	if ok {
		t.Error("expected CAS on missing drone to report false")
	}
}

func TestDroneTelemetryAndList(t *testing.T) {
	repo := openTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var ids []int64
	for _, serial := range []string{"SN-301", "SN-302", "SN-303"} {
		d, err := repo.Create(ctx, &models.Drone{Name: "Fleet " + serial, Model: "QuadX", SerialNumber: serial})
		if err != nil {
			t.Fatalf("create %s: %v", serial, err)
		}
		ids = append(ids, d.ID)
	}

	lat, lng := 12.9716, 77.5946
	if err := repo.UpdateTelemetry(ctx, ids[0], 64, &lat, &lng, 80.5); err != nil {
		t.Fatalf("update telemetry: %v", err)
	}
	got, err := repo.GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("get drone: %v", err)
	}
	if got.BatteryLevel != 64 || got.LocationLat == nil || *got.LocationLat != lat {
		t.Errorf("telemetry not persisted: %+v", got)
	}

	if _, err := repo.UpdateStatus(ctx, ids[1], models.DroneStatusMaintenance); err != nil {
		t.Fatalf("update status: %v", err)
	}

	// Filter by status.
	st := models.DroneStatusMaintenance
	list, err := repo.List(ctx, ListDronesParams{Status: &st})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(list) != 1 || list[0].ID != ids[1] {
		t.Fatalf("expected only the maintenance drone, got %d rows", len(list))
	}

	// Substring search matches name or serial.
	q := "302"
	list, err = repo.List(ctx, ListDronesParams{NameOrSerialContains: &q})
	if err != nil {
		t.Fatalf("list by query: %v", err)
	}
	if len(list) != 1 || list[0].SerialNumber != "SN-302" {
		t.Fatalf("expected SN-302, got %d rows", len(list))
	}

	// Keyset pagination walks the fleet in id order.
	list, err = repo.List(ctx, ListDronesParams{PageSize: 2})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 rows on first page, got %d", len(list))
	}
	list, err = repo.List(ctx, ListDronesParams{PageSize: 2, AfterID: list[1].ID})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(list) != 1 || list[0].ID != ids[2] {
		t.Fatalf("expected last drone on second page, got %d rows", len(list))
	}

	stats, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("count by status: %v", err)
	}
	if stats.Total != 3 || stats.Available != 2 || stats.Maintenance != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestDroneDelete(t *testing.T) {
	repo := openTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d, err := repo.Create(ctx, &models.Drone{Name: "Short-lived", Model: "QuadX", SerialNumber: "SN-400"})
	if err != nil {
		t.Fatalf("create drone: %v", err)
	}
	if err := repo.Delete(ctx, d.ID); err != nil {
		t.Fatalf("delete drone: %v", err)
	}
	got, err := repo.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("get deleted drone: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}
