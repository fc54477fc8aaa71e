package place

import "time"

// Place represents a rental listing owned by exactly one user. AmenityIDs
// holds the resolved amenity set without duplicates.
type Place struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	OwnerID     string    `json:"owner_id"`
	Rooms       int       `json:"rooms"`
	Capacity    int       `json:"capacity"`
	Surface     float64   `json:"surface"`
	Photos      []string  `json:"photos"`
	AmenityIDs  []string  `json:"amenities"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
