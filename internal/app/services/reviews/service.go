// Package reviews manages place reviews. A review is only accepted when both
// its author and its place resolve to existing records.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hbnb-project/hbnb/internal/app/domain/review"
	"github.com/hbnb-project/hbnb/internal/app/storage"
	apperrors "github.com/hbnb-project/hbnb/internal/errors"
	"github.com/hbnb-project/hbnb/internal/logging"
)

// Service manages review records.
type Service struct {
	store  storage.ReviewStore
	users  storage.UserStore
	places storage.PlaceStore
	log    *logging.Logger
}

// New constructs a review service.
func New(store storage.ReviewStore, users storage.UserStore, places storage.PlaceStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("reviews")
	}
	return &Service{store: store, users: users, places: places, log: log}
}

// CreateInput carries the fields accepted when posting a review.
type CreateInput struct {
	Text    string
	Rating  int
	UserID  string
	PlaceID string
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Text   *string
	Rating *int
}

// Create validates the rating and checks both references before persisting.
func (s *Service) Create(ctx context.Context, in CreateInput) (review.Review, error) {
	if err := validateRating(in.Rating); err != nil {
		return review.Review{}, err
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return review.Review{}, apperrors.Validation("text is required")
	}

	userID := strings.TrimSpace(in.UserID)
	placeID := strings.TrimSpace(in.PlaceID)
	if userID == "" || placeID == "" {
		return review.Review{}, apperrors.Validation("user_id and place_id are required")
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return review.Review{}, apperrors.NotFound("user")
		}
		return review.Review{}, fmt.Errorf("user validation failed: %w", err)
	}
	if _, err := s.places.GetPlace(ctx, placeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return review.Review{}, apperrors.NotFound("place")
		}
		return review.Review{}, fmt.Errorf("place validation failed: %w", err)
	}

	created, err := s.store.CreateReview(ctx, review.Review{
		Text:    text,
		Rating:  in.Rating,
		UserID:  userID,
		PlaceID: placeID,
	})
	if err != nil {
		return review.Review{}, err
	}
	s.log.WithField("review_id", created.ID).
		WithField("place_id", created.PlaceID).
		Info("review created")
	return created, nil
}

// Get returns a review by id.
func (s *Service) Get(ctx context.Context, id string) (review.Review, error) {
	r, err := s.store.GetReview(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return review.Review{}, apperrors.NotFound("review")
		}
		return review.Review{}, err
	}
	return r, nil
}

// List returns all reviews.
func (s *Service) List(ctx context.Context) ([]review.Review, error) {
	return s.store.ListReviews(ctx)
}

// ListByPlace returns the reviews for an existing place, ordered by creation
// time.
func (s *Service) ListByPlace(ctx context.Context, placeID string) ([]review.Review, error) {
	if _, err := s.places.GetPlace(ctx, placeID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("place")
		}
		return nil, err
	}
	return s.store.ListReviewsByPlace(ctx, placeID)
}

// Update applies a partial update and always persists the result. A rejected
// rating leaves the stored review untouched.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (review.Review, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return review.Review{}, err
	}

	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" {
			return review.Review{}, apperrors.Validation("text is required")
		}
		r.Text = text
	}
	if in.Rating != nil {
		if err := validateRating(*in.Rating); err != nil {
			return review.Review{}, err
		}
		r.Rating = *in.Rating
	}

	updated, err := s.store.UpdateReview(ctx, r)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return review.Review{}, apperrors.NotFound("review")
		}
		return review.Review{}, err
	}
	s.log.WithField("review_id", id).Info("review updated")
	return updated, nil
}

// Delete removes a review.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteReview(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("review")
		}
		return err
	}
	s.log.WithField("review_id", id).Info("review deleted")
	return nil
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.Validation("rating must be an integer between 1 and 5")
	}
	return nil
}
