// Package amenities manages the amenity catalog. Names are unique by
// convention: the create path rejects duplicates, other paths do not enforce
// it.
package amenities

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hbnb-project/hbnb/internal/app/domain/amenity"
	"github.com/hbnb-project/hbnb/internal/app/storage"
	apperrors "github.com/hbnb-project/hbnb/internal/errors"
	"github.com/hbnb-project/hbnb/internal/logging"
)

// Service manages amenity records.
type Service struct {
	store  storage.AmenityStore
	places storage.PlaceStore
	log    *logging.Logger
}

// New constructs an amenity service.
func New(store storage.AmenityStore, places storage.PlaceStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("amenities")
	}
	return &Service{store: store, places: places, log: log}
}

// Create registers an amenity, rejecting duplicate names.
func (s *Service) Create(ctx context.Context, name string) (amenity.Amenity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return amenity.Amenity{}, apperrors.Validation("name is required")
	}

	if _, err := s.store.GetAmenityByName(ctx, name); err == nil {
		return amenity.Amenity{}, apperrors.Conflict("amenity already exists")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return amenity.Amenity{}, fmt.Errorf("check amenity name: %w", err)
	}

	created, err := s.store.CreateAmenity(ctx, amenity.Amenity{Name: name})
	if err != nil {
		return amenity.Amenity{}, err
	}
	s.log.WithField("amenity_id", created.ID).Info("amenity created")
	return created, nil
}

// Get returns an amenity by id.
func (s *Service) Get(ctx context.Context, id string) (amenity.Amenity, error) {
	a, err := s.store.GetAmenity(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return amenity.Amenity{}, apperrors.NotFound("amenity")
		}
		return amenity.Amenity{}, err
	}
	return a, nil
}

// GetByName returns an amenity by name.
func (s *Service) GetByName(ctx context.Context, name string) (amenity.Amenity, error) {
	a, err := s.store.GetAmenityByName(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return amenity.Amenity{}, apperrors.NotFound("amenity")
		}
		return amenity.Amenity{}, err
	}
	return a, nil
}

// List returns all amenities.
func (s *Service) List(ctx context.Context) ([]amenity.Amenity, error) {
	return s.store.ListAmenities(ctx)
}

// Update renames an amenity.
func (s *Service) Update(ctx context.Context, id, name string) (amenity.Amenity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return amenity.Amenity{}, apperrors.Validation("name is required")
	}

	a, err := s.Get(ctx, id)
	if err != nil {
		return amenity.Amenity{}, err
	}
	a.Name = name

	updated, err := s.store.UpdateAmenity(ctx, a)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return amenity.Amenity{}, apperrors.NotFound("amenity")
		}
		return amenity.Amenity{}, err
	}
	s.log.WithField("amenity_id", id).Info("amenity updated")
	return updated, nil
}

// Delete removes an amenity and unlinks it from every place.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.places.UnlinkAmenity(ctx, id); err != nil {
		return fmt.Errorf("unlink amenity: %w", err)
	}
	if err := s.store.DeleteAmenity(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("amenity")
		}
		return err
	}
	s.log.WithField("amenity_id", id).Info("amenity deleted")
	return nil
}
