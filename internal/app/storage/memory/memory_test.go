package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/hbnb-project/hbnb/internal/app/domain/amenity"
	"github.com/hbnb-project/hbnb/internal/app/domain/place"
	"github.com/hbnb-project/hbnb/internal/app/domain/review"
	"github.com/hbnb-project/hbnb/internal/app/domain/user"
	"github.com/hbnb-project/hbnb/internal/app/storage"
)

func TestUserLifecycle(t *testing.T) {
	ctx := context.Background()
	store := New()

	created, err := store.CreateUser(ctx, user.User{FirstName: "Ada", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}

	if _, err := store.CreateUser(ctx, user.User{Email: "ADA@example.com"}); err == nil {
		t.Fatalf("expected duplicate email rejection")
	}

	byEmail, err := store.GetUserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, byEmail.ID)
	}

	created.FirstName = "Grace"
	updated, err := store.UpdateUser(ctx, created)
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.FirstName != "Grace" {
		t.Fatalf("update not applied")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at must not change on update")
	}

	if err := store.DeleteUser(ctx, created.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := store.GetUser(ctx, created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// email freed for reuse after delete
	if _, err := store.CreateUser(ctx, user.User{Email: "ada@example.com"}); err != nil {
		t.Fatalf("recreate user with freed email: %v", err)
	}
}

func TestNotFoundWrapping(t *testing.T) {
	ctx := context.Background()
	store := New()

	if _, err := store.GetPlace(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("place: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetAmenity(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("amenity: expected ErrNotFound, got %v", err)
	}
	if _, err := store.GetReview(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("review: expected ErrNotFound, got %v", err)
	}
	if err := store.DeletePlace(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete place: expected ErrNotFound, got %v", err)
	}
}

func TestPlaceCloneIsolation(t *testing.T) {
	ctx := context.Background()
	store := New()

	created, err := store.CreatePlace(ctx, place.Place{
		Title:      "Loft",
		OwnerID:    "u1",
		AmenityIDs: []string{"a1", "a2"},
	})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}

	// mutating the returned slice must not touch the stored copy
	created.AmenityIDs[0] = "mutated"

	got, err := store.GetPlace(ctx, created.ID)
	if err != nil {
		t.Fatalf("get place: %v", err)
	}
	if got.AmenityIDs[0] != "a1" {
		t.Fatalf("stored place mutated through returned slice")
	}
}

func TestUnlinkAmenity(t *testing.T) {
	ctx := context.Background()
	store := New()

	p1, _ := store.CreatePlace(ctx, place.Place{Title: "A", OwnerID: "u1", AmenityIDs: []string{"wifi", "pool"}})
	p2, _ := store.CreatePlace(ctx, place.Place{Title: "B", OwnerID: "u1", AmenityIDs: []string{"wifi"}})

	if err := store.UnlinkAmenity(ctx, "wifi"); err != nil {
		t.Fatalf("unlink: %v", err)
	}

	got1, _ := store.GetPlace(ctx, p1.ID)
	if len(got1.AmenityIDs) != 1 || got1.AmenityIDs[0] != "pool" {
		t.Fatalf("expected only pool left, got %v", got1.AmenityIDs)
	}
	got2, _ := store.GetPlace(ctx, p2.ID)
	if len(got2.AmenityIDs) != 0 {
		t.Fatalf("expected no amenities left, got %v", got2.AmenityIDs)
	}
}

func TestReviewBulkDeletes(t *testing.T) {
	ctx := context.Background()
	store := New()

	mk := func(userID, placeID string) review.Review {
		r, err := store.CreateReview(ctx, review.Review{Text: "ok", Rating: 4, UserID: userID, PlaceID: placeID})
		if err != nil {
			t.Fatalf("create review: %v", err)
		}
		return r
	}
	mk("u1", "p1")
	mk("u1", "p2")
	kept := mk("u2", "p2")

	if err := store.DeleteReviewsByPlace(ctx, "p1"); err != nil {
		t.Fatalf("delete by place: %v", err)
	}
	if err := store.DeleteReviewsByUser(ctx, "u1"); err != nil {
		t.Fatalf("delete by user: %v", err)
	}

	all, err := store.ListReviews(ctx)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(all) != 1 || all[0].ID != kept.ID {
		t.Fatalf("expected only %s left, got %v", kept.ID, all)
	}
}

func TestGetAmenityByNameCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store := New()

	created, err := store.CreateAmenity(ctx, amenity.Amenity{Name: "Wi-Fi"})
	if err != nil {
		t.Fatalf("create amenity: %v", err)
	}

	got, err := store.GetAmenityByName(ctx, "wi-fi")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, got.ID)
	}
}

func TestListPlacesByOwner(t *testing.T) {
	ctx := context.Background()
	store := New()

	store.CreatePlace(ctx, place.Place{Title: "A", OwnerID: "u1"})
	store.CreatePlace(ctx, place.Place{Title: "B", OwnerID: "u2"})
	store.CreatePlace(ctx, place.Place{Title: "C", OwnerID: "u1"})

	owned, err := store.ListPlacesByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(owned) != 2 {
		t.Fatalf("expected 2 places, got %d", len(owned))
	}
}
