// Package app wires the domain services to their stores and exposes them as a
// single facade for the HTTP layer and tests.
package app

import (
	amenitysvc "github.com/hbnb-project/hbnb/internal/app/services/amenities"
	placesvc "github.com/hbnb-project/hbnb/internal/app/services/places"
	reviewsvc "github.com/hbnb-project/hbnb/internal/app/services/reviews"
	usersvc "github.com/hbnb-project/hbnb/internal/app/services/users"
	"github.com/hbnb-project/hbnb/internal/app/storage"
	"github.com/hbnb-project/hbnb/internal/app/storage/memory"
	"github.com/hbnb-project/hbnb/internal/logging"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users     storage.UserStore
	Places    storage.PlaceStore
	Amenities storage.AmenityStore
	Reviews   storage.ReviewStore
}

// Application ties the domain services together.
type Application struct {
	log *logging.Logger

	Users     *usersvc.Service
	Places    *placesvc.Service
	Amenities *amenitysvc.Service
	Reviews   *reviewsvc.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logging.Logger) *Application {
	if log == nil {
		log = logging.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Places == nil {
		stores.Places = mem
	}
	if stores.Amenities == nil {
		stores.Amenities = mem
	}
	if stores.Reviews == nil {
		stores.Reviews = mem
	}

	return &Application{
		log:       log,
		Users:     usersvc.New(stores.Users, stores.Places, stores.Reviews, log),
		Places:    placesvc.New(stores.Places, stores.Users, stores.Amenities, stores.Reviews, log),
		Amenities: amenitysvc.New(stores.Amenities, stores.Places, log),
		Reviews:   reviewsvc.New(stores.Reviews, stores.Users, stores.Places, log),
	}
}
