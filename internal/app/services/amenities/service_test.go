package amenities

import (
	"context"
	"testing"

	"github.com/hbnb-project/hbnb/internal/app/domain/user"
	"github.com/hbnb-project/hbnb/internal/app/services/places"
	"github.com/hbnb-project/hbnb/internal/app/storage/memory"
	apperrors "github.com/hbnb-project/hbnb/internal/errors"
	"github.com/hbnb-project/hbnb/internal/logging"
)

func TestCreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := New(store, store, logging.NewNop())

	created, err := svc.Create(ctx, "  Wi-Fi  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Wi-Fi" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}

	_, err = svc.Create(ctx, "wi-fi")
	svcErr := apperrors.GetServiceError(err)
	if svcErr == nil || svcErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}

	if _, err := svc.Create(ctx, "   "); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
}

func TestUpdateRename(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := New(store, store, logging.NewNop())

	created, _ := svc.Create(ctx, "Pool")
	updated, err := svc.Update(ctx, created.ID, "Heated Pool")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Heated Pool" {
		t.Fatalf("rename not applied: %q", updated.Name)
	}

	if _, err := svc.Update(ctx, "missing", "X"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteUnlinksFromPlaces(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	owner, _ := store.CreateUser(ctx, user.User{Email: "o@example.com"})
	svc := New(store, store, logging.NewNop())
	placeSvc := places.New(store, store, store, store, logging.NewNop())

	wifi, _ := svc.Create(ctx, "Wi-Fi")
	pool, _ := svc.Create(ctx, "Pool")

	p, err := placeSvc.Create(ctx, places.CreateInput{
		Title:      "Loft",
		OwnerID:    owner.ID,
		AmenityIDs: []string{wifi.ID, pool.ID},
	})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}

	if err := svc.Delete(ctx, wifi.ID); err != nil {
		t.Fatalf("delete amenity: %v", err)
	}

	got, _ := placeSvc.Get(ctx, p.ID)
	if len(got.AmenityIDs) != 1 || got.AmenityIDs[0] != pool.ID {
		t.Fatalf("expected amenity unlinked, got %v", got.AmenityIDs)
	}
	if _, err := svc.Get(ctx, wifi.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("expected amenity gone, got %v", err)
	}
}
