package repository

import (
	"context"
	"testing"

	"github.com/rachitshah07/drone-survey-management-system/internal/db"
	"github.com/rachitshah07/drone-survey-management-system/models"
)

func TestUserRepository(t *testing.T) {
	d, err := db.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	defer d.Close()

	repo := NewUserRepository(d)
	ctx := context.Background()

	u, err := repo.Create(ctx, &models.User{Username: "operator", Email: "op@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if u.IsAdmin {
		t.Error("new users should not be admin")
	}

	got, err := repo.GetByUsername(ctx, "operator")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if got == nil || got.ID != u.ID {
		t.Fatalf("get by username returned %+v", got)
	}

	got, err = repo.GetByEmail(ctx, "op@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.Username != "operator" {
		t.Fatalf("get by email returned %+v", got)
	}

	got, err = repo.GetByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("get missing user: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing user, got %+v", got)
	}

	// Duplicate usernames and emails are rejected by the schema.
	if _, err := repo.Create(ctx, &models.User{Username: "operator", Email: "other@example.com", PasswordHash: "hash"}); err == nil {
		t.Error("expected duplicate username to fail")
	}
	if _, err := repo.Create(ctx, &models.User{Username: "other", Email: "op@example.com", PasswordHash: "hash"}); err == nil {
		t.Error("expected duplicate email to fail")
	}

	if err := repo.SetAdmin(ctx, u.ID, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}
	got, err = repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if !got.IsAdmin {
		t.Error("expected admin flag to be set")
	}

	users, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}
