package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hbnb-project/hbnb/internal/app/domain/amenity"
	"github.com/hbnb-project/hbnb/internal/app/domain/place"
	"github.com/hbnb-project/hbnb/internal/app/domain/review"
	"github.com/hbnb-project/hbnb/internal/app/domain/user"
	"github.com/hbnb-project/hbnb/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL. Place↔amenity
// associations live in an explicit join table with cascade-delete rules, so
// removing a place or amenity never leaves dangling links.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.PlaceStore = (*Store)(nil)
var _ storage.AmenityStore = (*Store)(nil)
var _ storage.ReviewStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, first_name, last_name, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	existing, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, password_hash = $5, is_admin = $6, updated_at = $7
		WHERE id = $1
	`, u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.IsAdmin, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, is_admin, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, is_admin, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, mapNoRows(err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, password_hash, is_admin, created_at, updated_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- PlaceStore -------------------------------------------------------------

func (s *Store) CreatePlace(ctx context.Context, p place.Place) (place.Place, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	photosJSON, err := json.Marshal(p.Photos)
	if err != nil {
		return place.Place{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return place.Place{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO places (id, title, description, price, latitude, longitude, owner_id, rooms, capacity, surface, photos, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, p.ID, p.Title, p.Description, p.Price, p.Latitude, p.Longitude, p.OwnerID, p.Rooms, p.Capacity, p.Surface, photosJSON, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return place.Place{}, err
	}

	if err := replaceAmenityLinks(ctx, tx, p.ID, p.AmenityIDs); err != nil {
		return place.Place{}, err
	}

	if err := tx.Commit(); err != nil {
		return place.Place{}, err
	}
	return p, nil
}

func (s *Store) UpdatePlace(ctx context.Context, p place.Place) (place.Place, error) {
	existing, err := s.GetPlace(ctx, p.ID)
	if err != nil {
		return place.Place{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	photosJSON, err := json.Marshal(p.Photos)
	if err != nil {
		return place.Place{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return place.Place{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE places
		SET title = $2, description = $3, price = $4, latitude = $5, longitude = $6, owner_id = $7, rooms = $8, capacity = $9, surface = $10, photos = $11, updated_at = $12
		WHERE id = $1
	`, p.ID, p.Title, p.Description, p.Price, p.Latitude, p.Longitude, p.OwnerID, p.Rooms, p.Capacity, p.Surface, photosJSON, p.UpdatedAt)
	if err != nil {
		return place.Place{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return place.Place{}, storage.ErrNotFound
	}

	if err := replaceAmenityLinks(ctx, tx, p.ID, p.AmenityIDs); err != nil {
		return place.Place{}, err
	}

	if err := tx.Commit(); err != nil {
		return place.Place{}, err
	}
	return p, nil
}

func (s *Store) GetPlace(ctx context.Context, id string) (place.Place, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, price, latitude, longitude, owner_id, rooms, capacity, surface, photos, created_at, updated_at
		FROM places
		WHERE id = $1
	`, id)

	p, err := scanPlace(row)
	if err != nil {
		return place.Place{}, err
	}

	p.AmenityIDs, err = s.placeAmenityIDs(ctx, p.ID)
	if err != nil {
		return place.Place{}, err
	}
	return p, nil
}

func (s *Store) ListPlaces(ctx context.Context) ([]place.Place, error) {
	return s.listPlaces(ctx, `
		SELECT id, title, description, price, latitude, longitude, owner_id, rooms, capacity, surface, photos, created_at, updated_at
		FROM places
		ORDER BY created_at
	`)
}

func (s *Store) ListPlacesByOwner(ctx context.Context, ownerID string) ([]place.Place, error) {
	return s.listPlaces(ctx, `
		SELECT id, title, description, price, latitude, longitude, owner_id, rooms, capacity, surface, photos, created_at, updated_at
		FROM places
		WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
}

func (s *Store) listPlaces(ctx context.Context, query string, args ...interface{}) ([]place.Place, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []place.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		result[i].AmenityIDs, err = s.placeAmenityIDs(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (s *Store) DeletePlace(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) UnlinkAmenity(ctx context.Context, amenityID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM place_amenities WHERE amenity_id = $1`, amenityID)
	return err
}

func (s *Store) placeAmenityIDs(ctx context.Context, placeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT amenity_id FROM place_amenities WHERE place_id = $1 ORDER BY amenity_id
	`, placeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func replaceAmenityLinks(ctx context.Context, tx *sql.Tx, placeID string, amenityIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM place_amenities WHERE place_id = $1`, placeID); err != nil {
		return err
	}
	for _, aid := range amenityIDs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO place_amenities (place_id, amenity_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, placeID, aid); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlace(row rowScanner) (place.Place, error) {
	var (
		p         place.Place
		photosRaw []byte
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Latitude, &p.Longitude, &p.OwnerID, &p.Rooms, &p.Capacity, &p.Surface, &photosRaw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return place.Place{}, mapNoRows(err)
	}
	if len(photosRaw) > 0 {
		_ = json.Unmarshal(photosRaw, &p.Photos)
	}
	return p, nil
}

// --- AmenityStore -----------------------------------------------------------

func (s *Store) CreateAmenity(ctx context.Context, a amenity.Amenity) (amenity.Amenity, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO amenities (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, a.ID, a.Name, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return amenity.Amenity{}, err
	}
	return a, nil
}

func (s *Store) UpdateAmenity(ctx context.Context, a amenity.Amenity) (amenity.Amenity, error) {
	existing, err := s.GetAmenity(ctx, a.ID)
	if err != nil {
		return amenity.Amenity{}, err
	}

	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE amenities SET name = $2, updated_at = $3 WHERE id = $1
	`, a.ID, a.Name, a.UpdatedAt)
	if err != nil {
		return amenity.Amenity{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return amenity.Amenity{}, storage.ErrNotFound
	}
	return a, nil
}

func (s *Store) GetAmenity(ctx context.Context, id string) (amenity.Amenity, error) {
	return scanAmenity(s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM amenities WHERE id = $1
	`, id))
}

func (s *Store) GetAmenityByName(ctx context.Context, name string) (amenity.Amenity, error) {
	return scanAmenity(s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at FROM amenities WHERE lower(name) = lower($1)
	`, name))
}

func scanAmenity(row *sql.Row) (amenity.Amenity, error) {
	var a amenity.Amenity
	if err := row.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return amenity.Amenity{}, mapNoRows(err)
	}
	return a, nil
}

func (s *Store) ListAmenities(ctx context.Context) ([]amenity.Amenity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at FROM amenities ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []amenity.Amenity
	for rows.Next() {
		var a amenity.Amenity
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) DeleteAmenity(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM amenities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// --- ReviewStore ------------------------------------------------------------

func (s *Store) CreateReview(ctx context.Context, r review.Review) (review.Review, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, text, rating, user_id, place_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, r.ID, r.Text, r.Rating, r.UserID, r.PlaceID, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return review.Review{}, err
	}
	return r, nil
}

func (s *Store) UpdateReview(ctx context.Context, r review.Review) (review.Review, error) {
	existing, err := s.GetReview(ctx, r.ID)
	if err != nil {
		return review.Review{}, err
	}

	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET text = $2, rating = $3, updated_at = $4 WHERE id = $1
	`, r.ID, r.Text, r.Rating, r.UpdatedAt)
	if err != nil {
		return review.Review{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return review.Review{}, storage.ErrNotFound
	}
	return r, nil
}

func (s *Store) GetReview(ctx context.Context, id string) (review.Review, error) {
	var r review.Review
	row := s.db.QueryRowContext(ctx, `
		SELECT id, text, rating, user_id, place_id, created_at, updated_at
		FROM reviews
		WHERE id = $1
	`, id)
	if err := row.Scan(&r.ID, &r.Text, &r.Rating, &r.UserID, &r.PlaceID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return review.Review{}, mapNoRows(err)
	}
	return r, nil
}

func (s *Store) ListReviews(ctx context.Context) ([]review.Review, error) {
	return s.listReviews(ctx, `
		SELECT id, text, rating, user_id, place_id, created_at, updated_at
		FROM reviews
		ORDER BY created_at
	`)
}

func (s *Store) ListReviewsByPlace(ctx context.Context, placeID string) ([]review.Review, error) {
	return s.listReviews(ctx, `
		SELECT id, text, rating, user_id, place_id, created_at, updated_at
		FROM reviews
		WHERE place_id = $1
		ORDER BY created_at
	`, placeID)
}

func (s *Store) listReviews(ctx context.Context, query string, args ...interface{}) ([]review.Review, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []review.Review
	for rows.Next() {
		var r review.Review
		if err := rows.Scan(&r.ID, &r.Text, &r.Rating, &r.UserID, &r.PlaceID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteReviewsByPlace(ctx context.Context, placeID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE place_id = $1`, placeID)
	return err
}

func (s *Store) DeleteReviewsByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE user_id = $1`, userID)
	return err
}
