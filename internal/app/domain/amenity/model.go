package amenity

import "time"

// Amenity represents a feature a place can offer. Names are unique by
// convention; the create path checks, other paths do not enforce it.
type Amenity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
