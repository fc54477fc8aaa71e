// Package users manages user accounts: registration, credential checks, and
// the cascade that removes a user's places and reviews along with the user.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hbnb-project/hbnb/internal/app/domain/user"
	"github.com/hbnb-project/hbnb/internal/app/storage"
	apperrors "github.com/hbnb-project/hbnb/internal/errors"
	"github.com/hbnb-project/hbnb/internal/logging"
)

// Service manages user records.
type Service struct {
	store   storage.UserStore
	places  storage.PlaceStore
	reviews storage.ReviewStore
	log     *logging.Logger
}

// New constructs a user service.
func New(store storage.UserStore, places storage.PlaceStore, reviews storage.ReviewStore, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("users")
	}
	return &Service{store: store, places: places, reviews: reviews, log: log}
}

// CreateInput carries the fields accepted at registration.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	IsAdmin   bool
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	IsAdmin   *bool
}

// Create registers a user with a hashed password.
func (s *Service) Create(ctx context.Context, in CreateInput) (user.User, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return user.User{}, err
	}
	if strings.TrimSpace(in.Password) == "" {
		return user.User{}, apperrors.Validation("password is required")
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return user.User{}, apperrors.Conflict("email already registered")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return user.User{}, fmt.Errorf("check email: %w", err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.store.CreateUser(ctx, user.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
	})
	if err != nil {
		return user.User{}, err
	}

	s.log.WithField("user_id", created.ID).Info("user created")
	return created, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, apperrors.NotFound("user")
		}
		return user.User{}, err
	}
	return u, nil
}

// GetByEmail returns a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, apperrors.NotFound("user")
		}
		return user.User{}, err
	}
	return u, nil
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}

// Update applies a partial update. Every set field is re-validated before the
// store write so a rejected field never half-applies.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (user.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return user.User{}, err
		}
		if existing, err := s.store.GetUserByEmail(ctx, email); err == nil && existing.ID != id {
			return user.User{}, apperrors.Conflict("email already registered")
		}
		u.Email = email
	}
	if in.Password != nil {
		if strings.TrimSpace(*in.Password) == "" {
			return user.User{}, apperrors.Validation("password must not be empty")
		}
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return user.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	if in.IsAdmin != nil {
		u.IsAdmin = *in.IsAdmin
	}

	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, apperrors.NotFound("user")
		}
		return user.User{}, err
	}
	s.log.WithField("user_id", id).Info("user updated")
	return updated, nil
}

// Delete removes a user, the places they own, and every review they authored
// or that targets one of their places.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	owned, err := s.places.ListPlacesByOwner(ctx, id)
	if err != nil {
		return fmt.Errorf("list owned places: %w", err)
	}
	for _, p := range owned {
		if err := s.reviews.DeleteReviewsByPlace(ctx, p.ID); err != nil {
			return fmt.Errorf("delete reviews for place %s: %w", p.ID, err)
		}
		if err := s.places.DeletePlace(ctx, p.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("delete place %s: %w", p.ID, err)
		}
	}
	if err := s.reviews.DeleteReviewsByUser(ctx, id); err != nil {
		return fmt.Errorf("delete authored reviews: %w", err)
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.NotFound("user")
		}
		return err
	}

	s.log.WithField("user_id", id).
		WithField("places_removed", len(owned)).
		Info("user deleted")
	return nil
}

// VerifyPassword checks a candidate password against the stored hash.
func (s *Service) VerifyPassword(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, apperrors.Unauthorized("invalid credentials")
		}
		return user.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return user.User{}, apperrors.Unauthorized("invalid credentials")
	}
	return u, nil
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperrors.Validation("email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return "", apperrors.Validationf("invalid email %q", email)
	}
	return email, nil
}
