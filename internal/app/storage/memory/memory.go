package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hbnb-project/hbnb/internal/app/domain/amenity"
	"github.com/hbnb-project/hbnb/internal/app/domain/place"
	"github.com/hbnb-project/hbnb/internal/app/domain/review"
	"github.com/hbnb-project/hbnb/internal/app/domain/user"
	"github.com/hbnb-project/hbnb/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu           sync.RWMutex
	nextID       int64
	users        map[string]user.User
	usersByEmail map[string]string
	places       map[string]place.Place
	amenities    map[string]amenity.Amenity
	reviews      map[string]review.Review
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PlaceStore = (*Store)(nil)
var _ storage.AmenityStore = (*Store)(nil)
var _ storage.ReviewStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:       1,
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		places:       make(map[string]place.Place),
		amenities:    make(map[string]amenity.Amenity),
		reviews:      make(map[string]review.Review),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user %s already exists", u.ID)
	}
	if _, exists := s.usersByEmail[emailKey(u.Email)]; exists {
		return user.User{}, fmt.Errorf("email %s already registered", u.Email)
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	s.usersByEmail[emailKey(u.Email)] = u.ID
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, notFound("user", u.ID)
	}
	if key := emailKey(u.Email); key != emailKey(original.Email) {
		if _, exists := s.usersByEmail[key]; exists {
			return user.User{}, fmt.Errorf("email %s already registered", u.Email)
		}
		delete(s.usersByEmail, emailKey(original.Email))
		s.usersByEmail[key] = u.ID
	}

	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, notFound("user", id)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[emailKey(email)]
	if !ok {
		return user.User{}, notFound("user", email)
	}
	return s.users[id], nil
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool {
		return byCreation(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return notFound("user", id)
	}
	delete(s.usersByEmail, emailKey(u.Email))
	delete(s.users, id)
	return nil
}

// PlaceStore implementation ---------------------------------------------------

func (s *Store) CreatePlace(_ context.Context, p place.Place) (place.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	} else if _, exists := s.places[p.ID]; exists {
		return place.Place{}, fmt.Errorf("place %s already exists", p.ID)
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Photos = append([]string(nil), p.Photos...)
	p.AmenityIDs = append([]string(nil), p.AmenityIDs...)

	s.places[p.ID] = p
	return clonePlace(p), nil
}

func (s *Store) UpdatePlace(_ context.Context, p place.Place) (place.Place, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.places[p.ID]
	if !ok {
		return place.Place{}, notFound("place", p.ID)
	}

	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	p.Photos = append([]string(nil), p.Photos...)
	p.AmenityIDs = append([]string(nil), p.AmenityIDs...)

	s.places[p.ID] = p
	return clonePlace(p), nil
}

func (s *Store) GetPlace(_ context.Context, id string) (place.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.places[id]
	if !ok {
		return place.Place{}, notFound("place", id)
	}
	return clonePlace(p), nil
}

func (s *Store) ListPlaces(_ context.Context) ([]place.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]place.Place, 0, len(s.places))
	for _, p := range s.places {
		result = append(result, clonePlace(p))
	}
	sort.Slice(result, func(i, j int) bool {
		return byCreation(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) ListPlacesByOwner(_ context.Context, ownerID string) ([]place.Place, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]place.Place, 0)
	for _, p := range s.places {
		if p.OwnerID == ownerID {
			result = append(result, clonePlace(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return byCreation(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) DeletePlace(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.places[id]; !ok {
		return notFound("place", id)
	}
	delete(s.places, id)
	return nil
}

func (s *Store) UnlinkAmenity(_ context.Context, amenityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.places {
		kept := make([]string, 0, len(p.AmenityIDs))
		for _, aid := range p.AmenityIDs {
			if aid != amenityID {
				kept = append(kept, aid)
			}
		}
		if len(kept) != len(p.AmenityIDs) {
			p.AmenityIDs = kept
			s.places[id] = p
		}
	}
	return nil
}

// AmenityStore implementation -------------------------------------------------

func (s *Store) CreateAmenity(_ context.Context, a amenity.Amenity) (amenity.Amenity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = s.nextIDLocked()
	} else if _, exists := s.amenities[a.ID]; exists {
		return amenity.Amenity{}, fmt.Errorf("amenity %s already exists", a.ID)
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	s.amenities[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAmenity(_ context.Context, a amenity.Amenity) (amenity.Amenity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.amenities[a.ID]
	if !ok {
		return amenity.Amenity{}, notFound("amenity", a.ID)
	}

	a.CreatedAt = original.CreatedAt
	a.UpdatedAt = time.Now().UTC()

	s.amenities[a.ID] = a
	return a, nil
}

func (s *Store) GetAmenity(_ context.Context, id string) (amenity.Amenity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.amenities[id]
	if !ok {
		return amenity.Amenity{}, notFound("amenity", id)
	}
	return a, nil
}

func (s *Store) GetAmenityByName(_ context.Context, name string) (amenity.Amenity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.amenities {
		if strings.EqualFold(a.Name, name) {
			return a, nil
		}
	}
	return amenity.Amenity{}, notFound("amenity", name)
}

func (s *Store) ListAmenities(_ context.Context) ([]amenity.Amenity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]amenity.Amenity, 0, len(s.amenities))
	for _, a := range s.amenities {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		return byCreation(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) DeleteAmenity(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.amenities[id]; !ok {
		return notFound("amenity", id)
	}
	delete(s.amenities, id)
	return nil
}

// ReviewStore implementation --------------------------------------------------

func (s *Store) CreateReview(_ context.Context, r review.Review) (review.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = s.nextIDLocked()
	} else if _, exists := s.reviews[r.ID]; exists {
		return review.Review{}, fmt.Errorf("review %s already exists", r.ID)
	}

	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	s.reviews[r.ID] = r
	return r, nil
}

func (s *Store) UpdateReview(_ context.Context, r review.Review) (review.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.reviews[r.ID]
	if !ok {
		return review.Review{}, notFound("review", r.ID)
	}

	r.CreatedAt = original.CreatedAt
	r.UpdatedAt = time.Now().UTC()

	s.reviews[r.ID] = r
	return r, nil
}

func (s *Store) GetReview(_ context.Context, id string) (review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return review.Review{}, notFound("review", id)
	}
	return r, nil
}

func (s *Store) ListReviews(_ context.Context) ([]review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]review.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return byCreation(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) ListReviewsByPlace(_ context.Context, placeID string) ([]review.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]review.Review, 0)
	for _, r := range s.reviews {
		if r.PlaceID == placeID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return byCreation(result[i].CreatedAt, result[j].CreatedAt, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (s *Store) DeleteReview(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[id]; !ok {
		return notFound("review", id)
	}
	delete(s.reviews, id)
	return nil
}

func (s *Store) DeleteReviewsByPlace(_ context.Context, placeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.reviews {
		if r.PlaceID == placeID {
			delete(s.reviews, id)
		}
	}
	return nil
}

func (s *Store) DeleteReviewsByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, r := range s.reviews {
		if r.UserID == userID {
			delete(s.reviews, id)
		}
	}
	return nil
}

// helpers ---------------------------------------------------------------------

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func clonePlace(p place.Place) place.Place {
	p.Photos = append([]string(nil), p.Photos...)
	p.AmenityIDs = append([]string(nil), p.AmenityIDs...)
	return p
}

func byCreation(a, b time.Time, aID, bID string) bool {
	if a.Equal(b) {
		return aID < bID
	}
	return a.Before(b)
}
