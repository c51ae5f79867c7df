package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/rachitshah07/drone-survey-management-system/internal/auth"
	"github.com/rachitshah07/drone-survey-management-system/internal/db"
	"github.com/rachitshah07/drone-survey-management-system/models"
	"github.com/rachitshah07/drone-survey-management-system/repository"
)

// Secret is the JWT signing secret used across tests.
const Secret = "test-secret"

// OpenInMemoryDB opens an in-memory SQLite database and applies migrations.
// A shared cache keeps the database alive across the pooled connection. The
// database is closed via t.Cleanup.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// Token mints a signed access token for the given user.
func Token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := auth.IssueToken(Secret, u.ID, u.Username, u.IsAdmin, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

// SeedUser creates a user with a fixed password hash placeholder.
func SeedUser(t *testing.T, d *sql.DB, username string, admin bool) *models.User {
	t.Helper()
	users := repository.NewUserRepository(d)
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := users.Create(context.Background(), &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		IsAdmin:      admin,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// SeedDrone creates an available drone with sane defaults.
func SeedDrone(t *testing.T, d *sql.DB, serial string) *models.Drone {
	t.Helper()
	drones := repository.NewDroneRepository(d)
	dr, err := drones.Create(context.Background(), &models.Drone{
		Name:         "drone-" + serial,
		Model:        "QuadX",
		SerialNumber: serial,
	})
	if err != nil {
		t.Fatalf("create drone: %v", err)
	}
	return dr
}
