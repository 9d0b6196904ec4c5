package repository

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrAlreadyExists is returned when inserting an entity whose ID is taken.
	ErrAlreadyExists = errors.New("repository: already exists")
	// ErrInvalidID is returned when an entity without an ID is stored.
	ErrInvalidID = errors.New("repository: invalid id")
)

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Movies *MoviesRepository
}

// New constructs an empty in-memory Repository.
func New() *Repository {
	return &Repository{
		Movies: NewMoviesRepository(),
	}
}
