package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movies-api/internal/domain"
	"github.com/Clark-Hu/movies-api/internal/repository"
	"github.com/Clark-Hu/movies-api/internal/validation"
)

const maxRequestBody = 1 << 20 // 1 MiB

const (
	msgMovieNotFound = "Movie not found"
	msgMovieDeleted  = "Movie deleted"
	msgOriginDenied  = "Not allowed by CORS"
	msgInternalError = "Internal server error"
)

var errTrailingData = errors.New("body must contain a single JSON value")

type messageResponse struct {
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Error validation.Errors `json:"error"`
}

type movieResponse struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Year     int      `json:"year"`
	Director string   `json:"director"`
	Duration int      `json:"duration"`
	Rate     float64  `json:"rate"`
	Poster   string   `json:"poster"`
	Genre    []string `json:"genre"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	var movies []domain.Movie
	if genre := r.URL.Query().Get("genre"); genre != "" {
		movies = s.repo.Movies.ListByGenre(r.Context(), genre)
	} else {
		movies = s.repo.Movies.List(r.Context())
	}

	items := make([]movieResponse, 0, len(movies))
	for _, m := range movies {
		items = append(items, toMovieResponse(m))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.repo.Movies.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondRepoError(w, "get movie", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toMovieResponse(movie))
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := decodeJSONBody(w, r, &body); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	movie, err := validation.ValidateMovie(body)
	if err != nil {
		s.respondValidationError(w, err)
		return
	}
	movie.ID = uuid.NewString()

	created, err := s.repo.Movies.Insert(r.Context(), movie)
	if err != nil {
		s.respondRepoError(w, "create movie", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%s", url.PathEscape(created.ID)))
	s.respondJSON(w, http.StatusCreated, toMovieResponse(created))
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body json.RawMessage
	if err := decodeJSONBody(w, r, &body); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	patch, err := validation.ValidatePartialMovie(body)
	if err != nil {
		s.respondValidationError(w, err)
		return
	}

	updated, err := s.repo.Movies.Update(r.Context(), id, patch)
	if err != nil {
		s.respondRepoError(w, "update movie", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, toMovieResponse(updated))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Movies.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondRepoError(w, "delete movie", err)
		return
	}
	s.respondMessage(w, http.StatusOK, msgMovieDeleted)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Error("failed to encode response", zap.Error(err))
		}
	}
}

func (s *Server) respondMessage(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, messageResponse{Message: message})
}

func (s *Server) respondOriginDenied(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("origin denied", zap.String("origin", r.Header.Get("Origin")))
	s.respondMessage(w, http.StatusForbidden, msgOriginDenied)
}

func (s *Server) respondValidationError(w http.ResponseWriter, err error) {
	var errs validation.Errors
	if !errors.As(err, &errs) {
		s.logger.Error("unexpected validation failure", zap.Error(err))
		s.respondMessage(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	s.respondJSON(w, http.StatusBadRequest, validationErrorResponse{Error: errs})
}

func (s *Server) respondRepoError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		s.respondMessage(w, http.StatusNotFound, msgMovieNotFound)
		return
	}
	s.logger.Error(op+" failed", zap.Error(err))
	s.respondMessage(w, http.StatusInternalServerError, msgInternalError)
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		s.respondMessage(w, http.StatusBadRequest, fmt.Sprintf("Malformed JSON payload at offset %d", syntaxError.Offset))
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.respondMessage(w, http.StatusBadRequest, "Malformed JSON payload")
	case errors.Is(err, io.EOF):
		s.respondMessage(w, http.StatusBadRequest, "Request body cannot be empty")
	case errors.As(err, &maxBytesError):
		s.respondMessage(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body must not exceed %d bytes", maxBytesError.Limit))
	case errors.Is(err, errTrailingData):
		s.respondMessage(w, http.StatusBadRequest, "Request body must contain a single JSON value")
	default:
		s.respondMessage(w, http.StatusBadRequest, "Unable to parse request body")
	}
}

func toMovieResponse(movie domain.Movie) movieResponse {
	genres := make([]string, len(movie.Genre))
	for i, g := range movie.Genre {
		genres[i] = string(g)
	}
	return movieResponse{
		ID:       movie.ID,
		Title:    movie.Title,
		Year:     movie.Year,
		Director: movie.Director,
		Duration: movie.Duration,
		Rate:     movie.Rate,
		Poster:   movie.Poster,
		Genre:    genres,
	}
}
