package places

import (
	"context"
	"strings"
	"testing"

	"github.com/hbnb-project/hbnb/internal/app/domain/amenity"
	"github.com/hbnb-project/hbnb/internal/app/domain/user"
	"github.com/hbnb-project/hbnb/internal/app/services/reviews"
	"github.com/hbnb-project/hbnb/internal/app/storage/memory"
	apperrors "github.com/hbnb-project/hbnb/internal/errors"
	"github.com/hbnb-project/hbnb/internal/logging"
)

func amenityFixture(name string) amenity.Amenity {
	return amenity.Amenity{Name: name}
}

func setup(t *testing.T) (*Service, *memory.Store, string) {
	t.Helper()
	store := memory.New()
	owner, err := store.CreateUser(context.Background(), user.User{Email: "owner@example.com"})
	if err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return New(store, store, store, store, logging.NewNop()), store, owner.ID
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, ownerID := setup(t)

	valid := func() CreateInput {
		return CreateInput{Title: "Loft", Price: 50, Latitude: 48.85, Longitude: 2.35, OwnerID: ownerID}
	}

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"empty title", func(in *CreateInput) { in.Title = "  " }},
		{"title too long", func(in *CreateInput) { in.Title = strings.Repeat("x", 101) }},
		{"negative price", func(in *CreateInput) { in.Price = -1 }},
		{"latitude too low", func(in *CreateInput) { in.Latitude = -90.01 }},
		{"latitude too high", func(in *CreateInput) { in.Latitude = 90.01 }},
		{"longitude too low", func(in *CreateInput) { in.Longitude = -180.01 }},
		{"longitude too high", func(in *CreateInput) { in.Longitude = 180.01 }},
		{"negative rooms", func(in *CreateInput) { in.Rooms = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid()
			tc.mutate(&in)
			if _, err := svc.Create(ctx, in); !apperrors.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateBoundaryValues(t *testing.T) {
	ctx := context.Background()
	svc, _, ownerID := setup(t)

	created, err := svc.Create(ctx, CreateInput{
		Title:     strings.Repeat("x", 100),
		Price:     0,
		Latitude:  -90,
		Longitude: 180,
		OwnerID:   ownerID,
	})
	if err != nil {
		t.Fatalf("boundary values should be accepted: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id")
	}
}

func TestTitleLengthCountsCharacters(t *testing.T) {
	ctx := context.Background()
	svc, _, ownerID := setup(t)

	// 100 two-byte runes: within the limit even though it is 200 bytes.
	if _, err := svc.Create(ctx, CreateInput{Title: strings.Repeat("é", 100), OwnerID: ownerID}); err != nil {
		t.Fatalf("100-character title should be accepted: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Title: strings.Repeat("é", 101), OwnerID: ownerID}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error for 101 characters, got %v", err)
	}
}

func TestCreateUnknownOwner(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	_, err := svc.Create(ctx, CreateInput{Title: "Loft", OwnerID: "missing"})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateResolvesAmenities(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	owner, _ := store.CreateUser(ctx, user.User{Email: "o@example.com"})
	wifi, _ := store.CreateAmenity(ctx, amenityFixture("Wi-Fi"))
	pool, _ := store.CreateAmenity(ctx, amenityFixture("Pool"))
	svc := New(store, store, store, store, logging.NewNop())

	created, err := svc.Create(ctx, CreateInput{
		Title:      "Loft",
		OwnerID:    owner.ID,
		AmenityIDs: []string{wifi.ID, "unknown", wifi.ID, pool.ID},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.AmenityIDs) != 2 || created.AmenityIDs[0] != wifi.ID || created.AmenityIDs[1] != pool.ID {
		t.Fatalf("expected deduped resolved amenities, got %v", created.AmenityIDs)
	}
}

func TestUpdatePartialAndAmenityReplace(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	owner, _ := store.CreateUser(ctx, user.User{Email: "o@example.com"})
	wifi, _ := store.CreateAmenity(ctx, amenityFixture("Wi-Fi"))
	svc := New(store, store, store, store, logging.NewNop())

	created, err := svc.Create(ctx, CreateInput{Title: "Loft", Price: 50, OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	price := 75.0
	updated, err := svc.Update(ctx, created.ID, UpdateInput{Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Loft" || updated.Price != 75 {
		t.Fatalf("unexpected result: %+v", updated)
	}

	// rejected value leaves the stored place untouched
	bad := -5.0
	if _, err := svc.Update(ctx, created.ID, UpdateInput{Price: &bad}); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got, _ := svc.Get(ctx, created.ID)
	if got.Price != 75 {
		t.Fatalf("price changed despite rejected update: %v", got.Price)
	}

	// amenities list replaces the set
	amenities := []string{wifi.ID, "unknown"}
	updated, err = svc.Update(ctx, created.ID, UpdateInput{AmenityIDs: &amenities})
	if err != nil {
		t.Fatalf("update amenities: %v", err)
	}
	if len(updated.AmenityIDs) != 1 || updated.AmenityIDs[0] != wifi.ID {
		t.Fatalf("expected [%s], got %v", wifi.ID, updated.AmenityIDs)
	}

	empty := []string{}
	updated, err = svc.Update(ctx, created.ID, UpdateInput{AmenityIDs: &empty})
	if err != nil {
		t.Fatalf("clear amenities: %v", err)
	}
	if len(updated.AmenityIDs) != 0 {
		t.Fatalf("expected cleared amenity set, got %v", updated.AmenityIDs)
	}
}

func TestDeleteCascadesReviews(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	owner, _ := store.CreateUser(ctx, user.User{Email: "o@example.com"})
	guest, _ := store.CreateUser(ctx, user.User{Email: "g@example.com"})
	svc := New(store, store, store, store, logging.NewNop())
	reviewSvc := reviews.New(store, store, store, logging.NewNop())

	p, err := svc.Create(ctx, CreateInput{Title: "Loft", OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("create place: %v", err)
	}
	if _, err := reviewSvc.Create(ctx, reviews.CreateInput{Text: "nice", Rating: 4, UserID: guest.ID, PlaceID: p.ID}); err != nil {
		t.Fatalf("create review: %v", err)
	}

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete place: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !apperrors.IsNotFound(err) {
		t.Fatalf("expected place gone, got %v", err)
	}
	left, _ := reviewSvc.List(ctx)
	if len(left) != 0 {
		t.Fatalf("expected reviews removed with place, got %d", len(left))
	}
}

func TestDeleteUnknownPlace(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setup(t)

	if err := svc.Delete(ctx, "missing"); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
