package storage

import (
	"context"
	"errors"

	"github.com/hbnb-project/hbnb/internal/app/domain/amenity"
	"github.com/hbnb-project/hbnb/internal/app/domain/place"
	"github.com/hbnb-project/hbnb/internal/app/domain/review"
	"github.com/hbnb-project/hbnb/internal/app/domain/user"
)

// ErrNotFound is returned by every store when the requested id does not
// resolve. Implementations wrap it so callers can use errors.Is.
var ErrNotFound = errors.New("not found")

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// PlaceStore persists place records and their amenity associations.
type PlaceStore interface {
	CreatePlace(ctx context.Context, p place.Place) (place.Place, error)
	UpdatePlace(ctx context.Context, p place.Place) (place.Place, error)
	GetPlace(ctx context.Context, id string) (place.Place, error)
	ListPlaces(ctx context.Context) ([]place.Place, error)
	ListPlacesByOwner(ctx context.Context, ownerID string) ([]place.Place, error)
	DeletePlace(ctx context.Context, id string) error
	// UnlinkAmenity removes the amenity from every place that references it.
	UnlinkAmenity(ctx context.Context, amenityID string) error
}

// AmenityStore persists amenity records.
type AmenityStore interface {
	CreateAmenity(ctx context.Context, a amenity.Amenity) (amenity.Amenity, error)
	UpdateAmenity(ctx context.Context, a amenity.Amenity) (amenity.Amenity, error)
	GetAmenity(ctx context.Context, id string) (amenity.Amenity, error)
	GetAmenityByName(ctx context.Context, name string) (amenity.Amenity, error)
	ListAmenities(ctx context.Context) ([]amenity.Amenity, error)
	DeleteAmenity(ctx context.Context, id string) error
}

// ReviewStore persists review records.
type ReviewStore interface {
	CreateReview(ctx context.Context, r review.Review) (review.Review, error)
	UpdateReview(ctx context.Context, r review.Review) (review.Review, error)
	GetReview(ctx context.Context, id string) (review.Review, error)
	ListReviews(ctx context.Context) ([]review.Review, error)
	ListReviewsByPlace(ctx context.Context, placeID string) ([]review.Review, error)
	DeleteReview(ctx context.Context, id string) error
	DeleteReviewsByPlace(ctx context.Context, placeID string) error
	DeleteReviewsByUser(ctx context.Context, userID string) error
}
