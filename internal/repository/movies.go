package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/Clark-Hu/movies-api/internal/domain"
)

// MoviesRepository keeps movies in memory, in insertion order. Each method is
// atomic on its own; callers get copies and never share state with the store.
type MoviesRepository struct {
	mu     sync.RWMutex
	movies []domain.Movie
}

// NewMoviesRepository returns an empty repository.
func NewMoviesRepository() *MoviesRepository {
	return &MoviesRepository{movies: make([]domain.Movie, 0)}
}

// List returns every stored movie.
func (r *MoviesRepository) List(_ context.Context) []domain.Movie {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		out = append(out, m.Clone())
	}
	return out
}

// ListByGenre returns the movies having genre among their genres, compared
// case-insensitively. An empty genre yields the full list.
func (r *MoviesRepository) ListByGenre(ctx context.Context, genre string) []domain.Movie {
	if genre == "" {
		return r.List(ctx)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Movie, 0)
	for _, m := range r.movies {
		if m.HasGenre(genre) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// GetByID fetches a movie by its identifier.
func (r *MoviesRepository) GetByID(_ context.Context, id string) (domain.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return domain.Movie{}, ErrNotFound
	}
	return r.movies[idx].Clone(), nil
}

// Insert appends a movie. The movie must carry an ID not already stored.
func (r *MoviesRepository) Insert(_ context.Context, movie domain.Movie) (domain.Movie, error) {
	if strings.TrimSpace(movie.ID) == "" {
		return domain.Movie{}, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(movie.ID) >= 0 {
		return domain.Movie{}, ErrAlreadyExists
	}
	stored := movie.Clone()
	r.movies = append(r.movies, stored)
	return stored.Clone(), nil
}

// Replace swaps the stored movie with the given one, keeping the stored ID.
func (r *MoviesRepository) Replace(_ context.Context, id string, movie domain.Movie) (domain.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return domain.Movie{}, ErrNotFound
	}
	stored := movie.Clone()
	stored.ID = r.movies[idx].ID
	r.movies[idx] = stored
	return stored.Clone(), nil
}

// Update merges patch into the stored movie under a single lock. An empty
// patch only reads.
func (r *MoviesRepository) Update(ctx context.Context, id string, patch domain.MoviePatch) (domain.Movie, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return domain.Movie{}, ErrNotFound
	}
	updated := patch.Apply(r.movies[idx])
	r.movies[idx] = updated
	return updated.Clone(), nil
}

// Remove deletes a movie, preserving the order of the rest.
func (r *MoviesRepository) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	r.movies = append(r.movies[:idx], r.movies[idx+1:]...)
	return nil
}

// Len reports how many movies are stored.
func (r *MoviesRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.movies)
}

func (r *MoviesRepository) indexOf(id string) int {
	for i := range r.movies {
		if r.movies[i].ID == id {
			return i
		}
	}
	return -1
}
