//go:build integration && postgres

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/hbnb-project/hbnb/internal/app/domain/amenity"
	"github.com/hbnb-project/hbnb/internal/app/domain/place"
	"github.com/hbnb-project/hbnb/internal/app/domain/review"
	"github.com/hbnb-project/hbnb/internal/app/domain/user"
	"github.com/hbnb-project/hbnb/internal/app/storage"
	"github.com/hbnb-project/hbnb/internal/platform/migrations"
)

// Integration test against Postgres to ensure migrations plus the core store
// flows work with real persistence.
func TestIntegrationPostgres(t *testing.T) {
	_ = godotenv.Load() // allow .env for local runs
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping Postgres integration")
	}

	ctx := context.Background()
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := New(db)

	owner, err := store.CreateUser(ctx, user.User{
		FirstName:    "Integration",
		Email:        "pg-integration@example.com",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { _ = store.DeleteUser(ctx, owner.ID) })

	wifi, err := store.CreateAmenity(ctx, amenity.Amenity{Name: "pg-integration-wifi"})
	if err != nil {
		t.Fatalf("create amenity: %v", err)
	}
	t.Cleanup(func() { _ = store.DeleteAmenity(ctx, wifi.ID) })

	p, err := store.CreatePlace(ctx, place.Place{
		Title:      "Integration Loft",
		Price:      80,
		OwnerID:    owner.ID,
		Photos:     []string{"a.jpg"},
		AmenityIDs: []string{wifi.ID},
	})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}

	got, err := store.GetPlace(ctx, p.ID)
	if err != nil {
		t.Fatalf("get place: %v", err)
	}
	if len(got.AmenityIDs) != 1 || got.AmenityIDs[0] != wifi.ID {
		t.Fatalf("amenity link not persisted: %v", got.AmenityIDs)
	}
	if len(got.Photos) != 1 || got.Photos[0] != "a.jpg" {
		t.Fatalf("photos not round-tripped: %v", got.Photos)
	}

	rv, err := store.CreateReview(ctx, review.Review{Text: "ok", Rating: 4, UserID: owner.ID, PlaceID: p.ID})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	// deleting the place cascades the review and the amenity link in-schema
	if err := store.DeletePlace(ctx, p.ID); err != nil {
		t.Fatalf("delete place: %v", err)
	}
	if _, err := store.GetReview(ctx, rv.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected review cascaded, got %v", err)
	}
}
