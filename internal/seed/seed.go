// Package seed loads the initial movie collection into the in-memory store.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Clark-Hu/movies-api/internal/domain"
	"github.com/Clark-Hu/movies-api/internal/repository"
	"github.com/Clark-Hu/movies-api/internal/validation"
)

// ErrDuplicateID is returned when two seed records share an identifier.
var ErrDuplicateID = errors.New("seed: duplicate id")

// ErrMissingID is returned for a seed record without an identifier.
var ErrMissingID = errors.New("seed: missing id")

// Source produces the movies the server starts with.
type Source interface {
	Load(ctx context.Context) ([]domain.Movie, error)
}

// RecordError points at the seed record that failed to load.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("seed record %d (%s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("seed record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// record is the seed wire format shared by the file and database sources.
type record struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Director string   `json:"director"`
	Duration int      `json:"duration"`
	Rate     float64  `json:"rate"`
	Poster   string   `json:"poster"`
	Genre    []string `json:"genre"`
}

func toRecord(m domain.Movie) record {
	genres := make([]string, len(m.Genre))
	for i, g := range m.Genre {
		genres[i] = string(g)
	}
	return record{
		ID:       m.ID,
		Title:    m.Title,
		Year:     m.Year,
		Director: m.Director,
		Duration: m.Duration,
		Rate:     m.Rate,
		Poster:   m.Poster,
		Genre:    genres,
	}
}

// FileSource reads a JSON array of movies from disk.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(_ context.Context) ([]domain.Movie, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	movies, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", s.Path, err)
	}
	return movies, nil
}

// Parse decodes a JSON array of movies. Every record needs a unique id and
// must satisfy the full movie schema; a missing rate defaults like on create.
func Parse(data []byte) ([]domain.Movie, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &raws); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	movies := make([]domain.Movie, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for i, raw := range raws {
		movie, err := parseRecord(raw)
		if err != nil {
			return nil, &RecordError{Index: i, ID: movie.ID, Err: err}
		}
		if _, dup := seen[movie.ID]; dup {
			return nil, &RecordError{Index: i, ID: movie.ID, Err: ErrDuplicateID}
		}
		seen[movie.ID] = struct{}{}
		movies = append(movies, movie)
	}
	return movies, nil
}

func parseRecord(raw json.RawMessage) (domain.Movie, error) {
	var head struct {
		ID string `json:"id"`
	}
	// Non-object records are reported by the validator below.
	_ = json.Unmarshal(raw, &head)
	id := strings.TrimSpace(head.ID)

	movie, err := validation.ValidateMovie(raw)
	if err != nil {
		return domain.Movie{ID: id}, err
	}
	if id == "" {
		return domain.Movie{}, ErrMissingID
	}
	movie.ID = id
	return movie, nil
}

// Populate inserts movies into the repository in order.
func Populate(ctx context.Context, repo *repository.MoviesRepository, movies []domain.Movie) (int, error) {
	for i, m := range movies {
		if _, err := repo.Insert(ctx, m); err != nil {
			return i, &RecordError{Index: i, ID: m.ID, Err: err}
		}
	}
	return len(movies), nil
}
