package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rachitshah07/drone-survey-management-system/internal/db"
	"github.com/rachitshah07/drone-survey-management-system/models"
)

type missionTestEnv struct {
	missions *MissionRepository
	drones   *DroneRepository
	users    *UserRepository
	userID   int64
	droneID  int64
}

func newMissionTestEnv(t *testing.T) *missionTestEnv {
	t.Helper()
	d, err := db.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	env := &missionTestEnv{
		missions: NewMissionRepository(d),
		drones:   NewDroneRepository(d),
		users:    NewUserRepository(d),
	}

	ctx := context.Background()
	u, err := env.users.Create(ctx, &models.User{Username: "pilot", Email: "pilot@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	env.userID = u.ID
	dr, err := env.drones.Create(ctx, &models.Drone{Name: "Surveyor", Model: "QuadX", SerialNumber: "SN-500"})
	if err != nil {
		t.Fatalf("create drone: %v", err)
	}
	env.droneID = dr.ID
	return env
}

func (e *missionTestEnv) createMission(t *testing.T, status models.MissionStatus) *models.Mission {
	t.Helper()
	m, err := e.missions.Create(context.Background(), &models.Mission{
		Name:    "field sweep",
		Type:    models.MissionTypeSurvey,
		Status:  status,
		DroneID: e.droneID,
		UserID:  e.userID,
	})
	if err != nil {
		t.Fatalf("create mission: %v", err)
	}
	return m
}

func TestMissionCreateDefaults(t *testing.T) {
	env := newMissionTestEnv(t)
	ctx := context.Background()

	m, err := env.missions.Create(ctx, &models.Mission{
		Name:    "defaults",
		Type:    models.MissionTypeMapping,
		DroneID: env.droneID,
		UserID:  env.userID,
	})
	if err != nil {
		t.Fatalf("create mission: %v", err)
	}
	if m.Status != models.MissionStatusPlanned {
		t.Errorf("expected planned, got %s", m.Status)
	}
	if m.FlightAltitude != 50.0 || m.FlightSpeed != 5.0 || m.OverlapPercentage != 70 {
		t.Errorf("defaults not applied: %+v", m)
	}
	if m.StartedAt != nil || m.CompletedAt != nil || m.ActualDuration != nil {
		t.Errorf("expected nil timestamps on a new mission: %+v", m)
	}

	got, err := env.missions.GetByID(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing mission: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing mission, got %+v", got)
	}
}

func TestMissionWaypointsRoundTrip(t *testing.T) {
	env := newMissionTestEnv(t)
	ctx := context.Background()

	m := &models.Mission{
		Name:    "with plan",
		Type:    models.MissionTypeInspection,
		DroneID: env.droneID,
		UserID:  env.userID,
	}
	pts := []models.Coordinate{{Lat: 12.97, Lng: 77.59}, {Lat: 12.98, Lng: 77.60}}
	if err := m.SetWaypoints(pts); err != nil {
		t.Fatalf("set waypoints: %v", err)
	}
	created, err := env.missions.Create(ctx, m)
	if err != nil {
		t.Fatalf("create mission: %v", err)
	}

	got, err := env.missions.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get mission: %v", err)
	}
	decoded, err := got.WaypointList()
	if err != nil {
		t.Fatalf("decode waypoints: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Lat != 12.98 {
		t.Errorf("waypoints did not survive storage: %+v", decoded)
	}
}

func TestMissionTransitionStatus(t *testing.T) {
	env := newMissionTestEnv(t)
	ctx := context.Background()
	m := env.createMission(t, models.MissionStatusPlanned)

	now := time.Now().UTC()
	ok, err := env.missions.TransitionStatus(ctx, m.ID, models.MissionStatusPlanned, models.MissionStatusInProgress, TransitionTimes{StartedAt: &now})
	if err != nil {
		t.Fatalf("transition to in_progress: %v", err)
	}
	if !ok {
		t.Fatal("expected transition from planned to succeed")
	}
	got, err := env.missions.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("get mission: %v", err)
	}
	if got.Status != models.MissionStatusInProgress {
		t.Errorf("expected in_progress, got %s", got.Status)
	}
	if got.StartedAt == nil {
		t.Error("expected started_at to be set")
	}

	// Stale precondition: mission already left planned.
	ok, err = env.missions.TransitionStatus(ctx, m.ID, models.MissionStatusPlanned, models.MissionStatusInProgress, TransitionTimes{})
	if err != nil {
		t.Fatalf("stale transition: %v", err)
	}
	if ok {
		t.Error("expected stale transition to report false")
	}

	// Completing writes completed_at and actual_duration while keeping started_at.
	done := now.Add(10 * time.Minute)
	dur := 10
	ok, err = env.missions.TransitionStatus(ctx, m.ID, models.MissionStatusInProgress, models.MissionStatusCompleted, TransitionTimes{CompletedAt: &done, ActualDuration: &dur})
	if err != nil {
		t.Fatalf("transition to completed: %v", err)
	}
	if !ok {
		t.Fatal("expected completion to succeed")
	}
	got, err = env.missions.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("get completed mission: %v", err)
	}
	if got.CompletedAt == nil || got.ActualDuration == nil || *got.ActualDuration != 10 {
		t.Errorf("completion fields not persisted: %+v", got)
	}
	if got.StartedAt == nil || !got.StartedAt.Equal(now) {
		t.Errorf("started_at should be untouched, got %v", got.StartedAt)
	}
}

func TestMissionUpdateProgress(t *testing.T) {
	env := newMissionTestEnv(t)
	ctx := context.Background()

	m := env.createMission(t, models.MissionStatusInProgress)
	ok, err := env.missions.UpdateProgress(ctx, m.ID, 42.5, 900)
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if !ok {
		t.Fatal("expected progress write on in_progress mission to succeed")
	}
	got, err := env.missions.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("get mission: %v", err)
	}
	if got.ProgressPercentage != 42.5 || got.DistanceCovered != 900 {
		t.Errorf("progress not persisted: %+v", got)
	}

	// Planned and terminal missions refuse the write.
	planned := env.createMission(t, models.MissionStatusPlanned)
	ok, err = env.missions.UpdateProgress(ctx, planned.ID, 10, 100)
	if err != nil {
		t.Fatalf("update planned progress: %v", err)
	}
	if ok {
		t.Error("expected progress write on planned mission to report false")
	}

	completed := env.createMission(t, models.MissionStatusCompleted)
	ok, err = env.missions.UpdateProgress(ctx, completed.ID, 10, 100)
	if err != nil {
		t.Fatalf("update completed progress: %v", err)
	}
	if ok {
		t.Error("expected progress write on completed mission to report false")
	}
}

func TestMissionListAndStats(t *testing.T) {
	env := newMissionTestEnv(t)
	ctx := context.Background()

	env.createMission(t, models.MissionStatusPlanned)
	env.createMission(t, models.MissionStatusInProgress)
	completed := env.createMission(t, models.MissionStatusCompleted)
	if ok, err := env.missions.UpdateProgress(ctx, completed.ID, 0, 0); err != nil || ok {
		t.Fatalf("unexpected progress write on completed mission: ok=%v err=%v", ok, err)
	}

	// Filter by one status.
	list, err := env.missions.List(ctx, ListMissionsParams{Statuses: []models.MissionStatus{models.MissionStatusInProgress}})
	if err != nil {
		t.Fatalf("list in_progress: %v", err)
	}
	if len(list) != 1 || list[0].Status != models.MissionStatusInProgress {
		t.Fatalf("expected 1 in_progress mission, got %d", len(list))
	}

	// Filter by drone.
	list, err = env.missions.List(ctx, ListMissionsParams{DroneID: &env.droneID})
	if err != nil {
		t.Fatalf("list by drone: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 missions for drone, got %d", len(list))
	}

	// Keyset pagination.
	list, err = env.missions.List(ctx, ListMissionsParams{PageSize: 2})
	if err != nil {
		t.Fatalf("list first page: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 rows on first page, got %d", len(list))
	}
	rest, err := env.missions.List(ctx, ListMissionsParams{PageSize: 2, AfterID: list[1].ID})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest) != 1 || rest[0].ID <= list[1].ID {
		t.Fatalf("expected 1 trailing row, got %d", len(rest))
	}

	stats, err := env.missions.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Completed != 1 || stats.Active != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	nonTerminal, err := env.missions.CountNonTerminalByDrone(ctx, env.droneID)
	if err != nil {
		t.Fatalf("count non-terminal: %v", err)
	}
	if nonTerminal != 2 {
		t.Errorf("expected 2 non-terminal missions, got %d", nonTerminal)
	}

	active, err := env.missions.CountActiveByDrone(ctx, env.droneID)
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if active != 1 {
		t.Errorf("expected 1 active mission, got %d", active)
	}
}
