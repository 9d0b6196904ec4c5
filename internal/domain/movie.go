package domain

import "strings"

// Genre is one of the fixed movie genres.
type Genre string

const (
	GenreAction    Genre = "Action"
	GenreAdventure Genre = "Adventure"
	GenreComedy    Genre = "Comedy"
	GenreCrime     Genre = "Crime"
	GenreDrama     Genre = "Drama"
	GenreFantasy   Genre = "Fantasy"
	GenreHorror    Genre = "Horror"
	GenreThriller  Genre = "Thriller"
	GenreSciFi     Genre = "Sci-Fi"
)

// Genres lists the accepted genres in schema order.
var Genres = []Genre{
	GenreAction,
	GenreAdventure,
	GenreComedy,
	GenreCrime,
	GenreDrama,
	GenreFantasy,
	GenreHorror,
	GenreThriller,
	GenreSciFi,
}

// ParseGenre matches value against the known genres exactly (case-sensitive).
func ParseGenre(value string) (Genre, bool) {
	for _, g := range Genres {
		if string(g) == value {
			return g, true
		}
	}
	return "", false
}

// Schema limits shared by validation and the seed loaders.
const (
	MinYear     = 1900
	MaxYear     = 2024
	MinRate     = 0
	MaxRate     = 10
	DefaultRate = 5
)

// Movie represents the canonical movie entity held by the service.
type Movie struct {
	ID       string
	Title    string
	Year     int
	Director string
	Duration int
	Rate     float64
	Poster   string
	Genre    []Genre
}

// Clone returns a copy that does not share the genre slice.
func (m Movie) Clone() Movie {
	if m.Genre != nil {
		genres := make([]Genre, len(m.Genre))
		copy(genres, m.Genre)
		m.Genre = genres
	}
	return m
}

// HasGenre reports whether any of the movie's genres equals name, ignoring case.
func (m Movie) HasGenre(name string) bool {
	for _, g := range m.Genre {
		if strings.EqualFold(string(g), name) {
			return true
		}
	}
	return false
}

// MoviePatch carries the fields of a partial update. Nil fields are left untouched.
type MoviePatch struct {
	Title    *string
	Year     *int
	Director *string
	Duration *int
	Rate     *float64
	Poster   *string
	Genre    []Genre
	// GenreSet distinguishes an explicit empty genre list from an absent one.
	GenreSet bool
}

// Apply merges the patch into m. The identifier is never changed.
func (p MoviePatch) Apply(m Movie) Movie {
	out := m.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Year != nil {
		out.Year = *p.Year
	}
	if p.Director != nil {
		out.Director = *p.Director
	}
	if p.Duration != nil {
		out.Duration = *p.Duration
	}
	if p.Rate != nil {
		out.Rate = *p.Rate
	}
	if p.Poster != nil {
		out.Poster = *p.Poster
	}
	if p.GenreSet {
		genres := make([]Genre, len(p.Genre))
		copy(genres, p.Genre)
		out.Genre = genres
	}
	return out
}

// Empty reports whether the patch would leave a movie unchanged.
func (p MoviePatch) Empty() bool {
	return p.Title == nil && p.Year == nil && p.Director == nil && p.Duration == nil &&
		p.Rate == nil && p.Poster == nil && !p.GenreSet
}
