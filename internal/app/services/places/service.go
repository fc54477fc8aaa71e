// Package places manages listings: attribute validation, the owner
// referential check, best-effort amenity resolution, and the review cascade
// on delete.
package places

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hbnb-project/hbnb/internal/app/domain/place"
	"github.com/hbnb-project/hbnb/internal/app/storage"
	apperrors "github.com/hbnb-project/hbnb/internal/errors"
	"github.com/hbnb-project/hbnb/internal/logging"
)

const maxTitleLength = 100

// Service manages place records.
type Service struct {
	store     storage.PlaceStore
	users     storage.UserStore
	amenities storage.AmenityStore
	reviews   storage.ReviewStore
	log       *logging.Logger
}

// New constructs a place service.
func New(store storage.PlaceStore, users storage.UserStore, amenities storage.AmenityStore, reviews storage.ReviewStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("places")
	}
	return &Service{store: store, users: users, amenities: amenities, reviews: reviews, log: log}
}

// CreateInput carries the fields accepted when registering a place.
type CreateInput struct {
	Title       string
	Description string
	Price       float64
	Latitude    float64
	Longitude   float64
	OwnerID     string
	Rooms       int
	Capacity    int
	Surface     float64
	Photos      []string
	AmenityIDs  []string
}

// UpdateInput carries a partial update; nil fields are left untouched. A
// non-nil AmenityIDs replaces the place's current amenity set.
type UpdateInput struct {
	Title       *string
	Description *string
	Price       *float64
	Latitude    *float64
	Longitude   *float64
	Rooms       *int
	Capacity    *int
	Surface     *float64
	Photos      *[]string
	AmenityIDs  *[]string
}

// Create validates the listing, checks the owner exists, and resolves amenity
// ids best-effort: unknown ids are dropped, not errors.
func (s *Service) Create(ctx context.Context, in CreateInput) (place.Place, error) {
	p := place.Place{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Price:       in.Price,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		OwnerID:     strings.TrimSpace(in.OwnerID),
		Rooms:       in.Rooms,
		Capacity:    in.Capacity,
		Surface:     in.Surface,
		Photos:      in.Photos,
	}

	if err := validatePlace(p); err != nil {
		return place.Place{}, err
	}
	if p.OwnerID == "" {
		return place.Place{}, apperrors.Validation("owner_id is required")
	}
	if _, err := s.users.GetUser(ctx, p.OwnerID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return place.Place{}, apperrors.NotFound("owner")
		}
		return place.Place{}, fmt.Errorf("owner validation failed: %w", err)
	}

	p.AmenityIDs = s.resolveAmenities(ctx, in.AmenityIDs)

	created, err := s.store.CreatePlace(ctx, p)
	if err != nil {
		return place.Place{}, err
	}
	s.log.WithField("place_id", created.ID).
		WithField("owner_id", created.OwnerID).
		Info("place created")
	return created, nil
}

// Get returns a place by id.
func (s *Service) Get(ctx context.Context, id string) (place.Place, error) {
	p, err := s.store.GetPlace(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return place.Place{}, apperrors.NotFound("place")
		}
		return place.Place{}, err
	}
	return p, nil
}

// List returns all places.
func (s *Service) List(ctx context.Context) ([]place.Place, error) {
	return s.store.ListPlaces(ctx)
}

// Update applies a partial update. Fields are validated against a scratch
// copy, so a rejected value leaves the stored place untouched. A supplied
// amenities list replaces the current set; unresolved ids are dropped.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (place.Place, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return place.Place{}, err
	}

	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Latitude != nil {
		p.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		p.Longitude = *in.Longitude
	}
	if in.Rooms != nil {
		p.Rooms = *in.Rooms
	}
	if in.Capacity != nil {
		p.Capacity = *in.Capacity
	}
	if in.Surface != nil {
		p.Surface = *in.Surface
	}
	if in.Photos != nil {
		p.Photos = append([]string(nil), (*in.Photos)...)
	}
	if in.AmenityIDs != nil {
		p.AmenityIDs = s.resolveAmenities(ctx, *in.AmenityIDs)
	}

	if err := validatePlace(p); err != nil {
		return place.Place{}, err
	}

	updated, err := s.store.UpdatePlace(ctx, p)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return place.Place{}, apperrors.NotFound("place")
		}
		return place.Place{}, err
	}
	s.log.WithField("place_id", id).Info("place updated")
	return updated, nil
}

// Delete removes a place and all reviews that reference it.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.reviews.DeleteReviewsByPlace(ctx, id); err != nil {
		return fmt.Errorf("delete reviews: %w", err)
	}
	if err := s.store.DeletePlace(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("place")
		}
		return err
	}
	s.log.WithField("place_id", id).Info("place deleted")
	return nil
}

// resolveAmenities keeps the ids that resolve to existing amenities, dropping
// duplicates and unknowns. Order of first occurrence is preserved.
func (s *Service) resolveAmenities(ctx context.Context, ids []string) []string {
	resolved := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		if _, err := s.amenities.GetAmenity(ctx, id); err != nil {
			s.log.WithField("amenity_id", id).Debug("dropping unresolved amenity")
			continue
		}
		seen[id] = true
		resolved = append(resolved, id)
	}
	return resolved
}

func validatePlace(p place.Place) error {
	if p.Title == "" || utf8.RuneCountInString(p.Title) > maxTitleLength {
		return apperrors.Validationf("title is required and must be at most %d characters", maxTitleLength)
	}
	if p.Price < 0 {
		return apperrors.Validation("price must not be negative")
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return apperrors.Validation("latitude must be between -90 and 90")
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return apperrors.Validation("longitude must be between -180 and 180")
	}
	if p.Rooms < 0 {
		return apperrors.Validation("rooms must not be negative")
	}
	if p.Capacity < 0 {
		return apperrors.Validation("capacity must not be negative")
	}
	if p.Surface < 0 {
		return apperrors.Validation("surface must not be negative")
	}
	return nil
}
