package auth

import (
	"context"
	"testing"

	"bracketrank/internal/models"
	"bracketrank/internal/store"
	"bracketrank/pkg/errors"
)

func TestCreateUserThenLoginSucceeds(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory(), 1000)

	if _, err := svc.CreateUser(ctx, "admin", "hunter2", []string{"nyc"}, models.AdminLevelRegion); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session, err := svc.Login(ctx, "admin", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID == "" || session.User != "admin" {
		t.Fatalf("expected a populated session, got %+v", session)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory(), 1000)
	if _, err := svc.CreateUser(ctx, "admin", "hunter2", nil, models.AdminLevelRegion); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Login(ctx, "admin", "wrong-password")
	if errors.As(err).Code != errors.CodeUnauthorized {
		t.Fatalf("expected CodeUnauthorized, got %v", err)
	}
}

func TestLoginEvictsPriorSession(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory(), 1000)
	if _, err := svc.CreateUser(ctx, "admin", "hunter2", nil, models.AdminLevelRegion); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.Login(ctx, "admin", "hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Login(ctx, "admin", "hunter2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.RequireUser(ctx, first.ID); err == nil {
		t.Fatalf("expected the first session to be invalidated by the second login")
	}
}

func TestRequireUserRejectsUnknownToken(t *testing.T) {
	ctx := context.Background()
	svc := New(store.NewMemory(), 1000)
	if _, err := svc.RequireUser(ctx, "not-a-real-token"); errors.As(err).Code != errors.CodeUnauthorized {
		t.Fatalf("expected CodeUnauthorized, got %v", err)
	}
}

func TestRequireRegionAdminAllowsSuperAdminEverywhere(t *testing.T) {
	u := &models.User{Username: "root", AdminLevel: models.AdminLevelSuper}
	if err := RequireRegionAdmin(u, "any-region"); err != nil {
		t.Fatalf("expected super admin to pass, got %v", err)
	}
}

func TestRequireRegionAdminRejectsOutsideScope(t *testing.T) {
	u := &models.User{Username: "nyc-admin", AdminLevel: models.AdminLevelRegion, AdminRegions: []string{"nyc"}}
	if err := RequireRegionAdmin(u, "westchester"); errors.As(err).Code != errors.CodeForbidden {
		t.Fatalf("expected CodeForbidden, got %v", err)
	}
	if err := RequireRegionAdmin(u, "nyc"); err != nil {
		t.Fatalf("expected region admin to pass for their own region, got %v", err)
	}
}
