package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Clark-Hu/movies-api/internal/domain"
	"github.com/Clark-Hu/movies-api/internal/repository"
	"github.com/Clark-Hu/movies-api/internal/validation"
)

func projectFile(t testing.TB, parts ...string) string {
	t.Helper()
	_, currentFile, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")
	return filepath.Join(append([]string{projectRoot}, parts...)...)
}

func TestFileSource_LoadsBundledSeed(t *testing.T) {
	movies, err := FileSource{Path: projectFile(t, "data", "movies.json")}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(movies) == 0 {
		t.Fatalf("bundled seed is empty")
	}
	for _, m := range movies {
		if m.ID == "" || m.Title == "" {
			t.Fatalf("incomplete seed movie: %+v", m)
		}
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}.Load(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load() error = %v, want ErrNotExist", err)
	}
}

func TestParse_DefaultsRate(t *testing.T) {
	movies, err := Parse([]byte(`[{"id":"a","title":"Up","year":2009,"director":"Pete Docter","duration":96,
		"poster":"https://img.example/up.jpg","genre":["Adventure","Comedy"]}]`))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != "a" || movies[0].Rate != domain.DefaultRate {
		t.Fatalf("Parse() = %+v", movies)
	}
}

func TestParse_Errors(t *testing.T) {
	valid := `{"id":"a","title":"Up","year":2009,"director":"Pete Docter","duration":96,"poster":"https://img.example/up.jpg","genre":[]}`
	tests := []struct {
		name    string
		payload string
		check   func(error) bool
	}{
		{
			name:    "not an array",
			payload: `{"id":"a"}`,
			check:   func(err error) bool { return err != nil },
		},
		{
			name:    "duplicate id",
			payload: "[" + valid + "," + valid + "]",
			check:   func(err error) bool { return errors.Is(err, ErrDuplicateID) },
		},
		{
			name:    "missing id",
			payload: `[{"title":"Up","year":2009,"director":"Pete Docter","duration":96,"poster":"https://img.example/up.jpg","genre":[]}]`,
			check:   func(err error) bool { return errors.Is(err, ErrMissingID) },
		},
		{
			name:    "schema violation",
			payload: `[{"id":"a","title":"Up","year":1850,"director":"Pete Docter","duration":96,"poster":"https://img.example/up.jpg","genre":[]}]`,
			check: func(err error) bool {
				var errs validation.Errors
				return errors.As(err, &errs) && errs.Has("year")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.payload))
			if !tt.check(err) {
				t.Fatalf("Parse() error = %v", err)
			}
		})
	}
}

func TestParse_RecordErrorCarriesIndex(t *testing.T) {
	valid := `{"id":"a","title":"Up","year":2009,"director":"Pete Docter","duration":96,"poster":"https://img.example/up.jpg","genre":[]}`
	_, err := Parse([]byte("[" + valid + `,{"id":"b","title":""}]`))
	var recErr *RecordError
	if !errors.As(err, &recErr) {
		t.Fatalf("Parse() error = %v, want *RecordError", err)
	}
	if recErr.Index != 1 || recErr.ID != "b" {
		t.Fatalf("RecordError = %+v, want index 1 id b", recErr)
	}
}

func TestPopulate(t *testing.T) {
	repo := repository.NewMoviesRepository()
	movies, err := Parse([]byte(`[
		{"id":"a","title":"Up","year":2009,"director":"Pete Docter","duration":96,"poster":"https://img.example/up.jpg","genre":["Comedy"]},
		{"id":"b","title":"Coco","year":2017,"director":"Lee Unkrich","duration":105,"poster":"https://img.example/coco.jpg","genre":["Fantasy"]}
	]`))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	n, err := Populate(context.Background(), repo, movies)
	if err != nil || n != 2 {
		t.Fatalf("Populate() = %d, %v", n, err)
	}
	if _, err := Populate(context.Background(), repo, movies[:1]); !errors.Is(err, repository.ErrAlreadyExists) {
		t.Fatalf("second Populate() error = %v, want ErrAlreadyExists", err)
	}
	if repo.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", repo.Len())
	}
}
