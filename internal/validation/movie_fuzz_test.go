package validation

import (
	"encoding/json"
	"testing"

	"github.com/Clark-Hu/movies-api/internal/domain"
)

func FuzzValidatePartialMovie(f *testing.F) {
	seeds := []string{
		dunePayload,
		`{"rate":9}`,
		`{"year":1899}`,
		`{"genre":["Action", 3]}`,
		`[]`,
		`{}`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		if !json.Valid([]byte(raw)) {
			return
		}
		patch, err := ValidatePartialMovie(json.RawMessage(raw))
		if err != nil {
			if _, ok := err.(Errors); !ok {
				t.Fatalf("error type = %T, want Errors", err)
			}
			return
		}
		if patch.Year != nil && (*patch.Year < domain.MinYear || *patch.Year > domain.MaxYear) {
			t.Fatalf("accepted year %d", *patch.Year)
		}
		if patch.Rate != nil && (*patch.Rate < domain.MinRate || *patch.Rate > domain.MaxRate) {
			t.Fatalf("accepted rate %v", *patch.Rate)
		}
		if patch.Duration != nil && *patch.Duration <= 0 {
			t.Fatalf("accepted duration %d", *patch.Duration)
		}
	})
}
