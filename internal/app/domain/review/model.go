package review

import "time"

// Review is a rated comment a user leaves on a place. It is meaningless
// without both a valid user and a valid place.
type Review struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	UserID    string    `json:"user_id"`
	PlaceID   string    `json:"place_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
