package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Clark-Hu/movies-api/internal/domain"
)

// Issue codes reported in FieldError.Code.
const (
	CodeInvalidType   = "invalid_type"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeInvalidString = "invalid_string"
	CodeInvalidEnum   = "invalid_enum_value"
)

// MaxInteger bounds integer fields without a domain range (duration).
const MaxInteger = 1<<53 - 1

// FieldError describes a single rejected field. Path is empty for errors on
// the payload itself and holds an index as second element for list items.
type FieldError struct {
	Code    string        `json:"code"`
	Path    []interface{} `json:"path"`
	Message string        `json:"message"`
}

// Errors aggregates every field error found in one payload.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		if len(fe.Path) == 0 {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%v: %s", fe.Path[0], fe.Message))
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Has reports whether an error was recorded for field.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if len(fe.Path) > 0 && fe.Path[0] == field {
			return true
		}
	}
	return false
}

// movieInput holds the fields that decoded with the right JSON type. Numbers
// stay float64 so out-of-range integers reach the range rules.
type movieInput struct {
	Title    *string  `json:"title" validate:"omitempty,min=1"`
	Year     *float64 `json:"year" validate:"omitempty,gte=1900,lte=2024"`
	Director *string  `json:"director"`
	Duration *float64 `json:"duration" validate:"omitempty,gt=0,lte=9007199254740991"`
	Rate     *float64 `json:"rate" validate:"omitempty,gte=0,lte=10"`
	Poster   *string  `json:"poster" validate:"omitempty,url"`
	Genre    []string `json:"genre" validate:"omitempty,dive,genre"`
}

var fieldOrder = []string{"title", "year", "director", "duration", "rate", "poster", "genre"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseGenre(fl.Field().String())
		return ok
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateMovie checks a complete movie payload. Every field except rate is
// required; an absent rate becomes domain.DefaultRate. The returned movie has
// no ID. A non-nil error is always of type Errors.
func ValidateMovie(raw json.RawMessage) (domain.Movie, error) {
	in, err := check(raw, false)
	if err != nil {
		return domain.Movie{}, err
	}

	movie := domain.Movie{
		Title:    *in.Title,
		Year:     int(*in.Year),
		Director: *in.Director,
		Duration: int(*in.Duration),
		Rate:     domain.DefaultRate,
		Poster:   *in.Poster,
		Genre:    toGenres(in.Genre),
	}
	if in.Rate != nil {
		movie.Rate = *in.Rate
	}
	return movie, nil
}

// ValidatePartialMovie applies the per-field rules of ValidateMovie to the
// fields present in raw only. No defaults are injected.
func ValidatePartialMovie(raw json.RawMessage) (domain.MoviePatch, error) {
	in, err := check(raw, true)
	if err != nil {
		return domain.MoviePatch{}, err
	}

	patch := domain.MoviePatch{
		Title:    in.Title,
		Director: in.Director,
		Rate:     in.Rate,
		Poster:   in.Poster,
		Year:     toInt(in.Year),
		Duration: toInt(in.Duration),
	}
	if in.Genre != nil {
		patch.Genre, patch.GenreSet = toGenres(in.Genre), true
	}
	return patch, nil
}

// check decodes raw field by field, reporting missing and mistyped values,
// then runs the value rules on whatever decoded.
func check(raw json.RawMessage, partial bool) (movieInput, error) {
	c, err := newChecker(raw, partial)
	if err != nil {
		return movieInput{}, err
	}

	in := movieInput{
		Title:    c.str("title", "Movie title must be a string", "Movie title is required"),
		Year:     c.integer("year"),
		Director: c.str("director", "", ""),
		Duration: c.integer("duration"),
		Poster:   c.str("poster", "", ""),
	}
	if _, ok := c.fields["rate"]; ok {
		in.Rate = c.number("rate")
	}
	var genreTypeErr *FieldError
	in.Genre, genreTypeErr = c.genre()

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return movieInput{}, Errors{{Code: CodeInvalidType, Path: []interface{}{}, Message: err.Error()}}
		}
		for _, fe := range verrs {
			c.add(translate(fe))
		}
	}

	// Only the first offending genre element is reported.
	if genreTypeErr != nil {
		c.add(*genreTypeErr)
	}
	if gerrs := c.byField["genre"]; len(gerrs) > 1 {
		first := gerrs[0]
		for _, fe := range gerrs[1:] {
			if index(fe) < index(first) {
				first = fe
			}
		}
		c.byField["genre"] = []FieldError{first}
	}

	var errs Errors
	for _, field := range fieldOrder {
		errs = append(errs, c.byField[field]...)
	}
	if len(errs) > 0 {
		return movieInput{}, errs
	}
	return in, nil
}

func translate(fe validator.FieldError) FieldError {
	field := fe.Field()
	path := []interface{}{field}
	if name, rest, ok := strings.Cut(field, "["); ok {
		i, _ := strconv.Atoi(strings.TrimSuffix(rest, "]"))
		path = []interface{}{name, i}
	}

	switch fe.Tag() {
	case "min":
		return FieldError{Code: CodeTooSmall, Path: path, Message: "Movie title cannot be empty"}
	case "gte":
		return FieldError{Code: CodeTooSmall, Path: path, Message: "Number must be greater than or equal to " + fe.Param()}
	case "gt":
		return FieldError{Code: CodeTooSmall, Path: path, Message: "Number must be greater than " + fe.Param()}
	case "lte":
		return FieldError{Code: CodeTooBig, Path: path, Message: "Number must be less than or equal to " + fe.Param()}
	case "url":
		return FieldError{Code: CodeInvalidString, Path: path, Message: "Poster must be a valid URL"}
	case "genre":
		return FieldError{
			Code:    CodeInvalidEnum,
			Path:    path,
			Message: fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", enumList(), fe.Value()),
		}
	default:
		return FieldError{Code: CodeInvalidType, Path: path, Message: fe.Error()}
	}
}

func index(fe FieldError) int {
	if len(fe.Path) < 2 {
		return -1
	}
	i, _ := fe.Path[1].(int)
	return i
}

type checker struct {
	fields  map[string]json.RawMessage
	partial bool
	byField map[string][]FieldError
}

func newChecker(raw json.RawMessage, partial bool) (*checker, error) {
	trimmed := bytes.TrimSpace(raw)
	if kind := jsonKind(trimmed); kind != "object" {
		return nil, Errors{{
			Code:    CodeInvalidType,
			Path:    []interface{}{},
			Message: fmt.Sprintf("Expected object, received %s", kind),
		}}
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, Errors{{
			Code:    CodeInvalidType,
			Path:    []interface{}{},
			Message: "Expected object, received invalid JSON",
		}}
	}
	return &checker{fields: fields, partial: partial, byField: make(map[string][]FieldError)}, nil
}

func (c *checker) add(fe FieldError) {
	field, _ := fe.Path[0].(string)
	c.byField[field] = append(c.byField[field], fe)
}

func (c *checker) fail(code, message string, path ...interface{}) {
	c.add(FieldError{Code: code, Path: path, Message: message})
}

// lookup returns the raw value of field. Absent fields are reported as
// required unless the checker is partial.
func (c *checker) lookup(field, requiredMsg string) (json.RawMessage, bool) {
	raw, ok := c.fields[field]
	if !ok {
		if !c.partial {
			if requiredMsg == "" {
				requiredMsg = "Required"
			}
			c.fail(CodeInvalidType, requiredMsg, field)
		}
		return nil, false
	}
	return bytes.TrimSpace(raw), true
}

func (c *checker) str(field, typeMsg, requiredMsg string) *string {
	raw, ok := c.lookup(field, requiredMsg)
	if !ok {
		return nil
	}
	var s string
	if kind := jsonKind(raw); kind != "string" || json.Unmarshal(raw, &s) != nil {
		if typeMsg == "" {
			typeMsg = fmt.Sprintf("Expected string, received %s", kind)
		}
		c.fail(CodeInvalidType, typeMsg, field)
		return nil
	}
	return &s
}

// number decodes a JSON number. Literals beyond float64 range become ±Inf and
// are left to the range rules.
func (c *checker) number(field string) *float64 {
	raw, ok := c.lookup(field, "")
	if !ok {
		return nil
	}
	if kind := jsonKind(raw); kind != "number" {
		c.fail(CodeInvalidType, fmt.Sprintf("Expected number, received %s", kind), field)
		return nil
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		c.fail(CodeInvalidType, "Expected number, received invalid number", field)
		return nil
	}
	return &f
}

func (c *checker) integer(field string) *float64 {
	f := c.number(field)
	if f == nil {
		return nil
	}
	if !math.IsInf(*f, 0) && math.Trunc(*f) != *f {
		c.fail(CodeInvalidType, "Expected integer, received float", field)
		return nil
	}
	return f
}

// genre decodes the list up to its first non-string element. That element is
// returned as a type error for check to weigh against enum failures.
func (c *checker) genre() ([]string, *FieldError) {
	raw, ok := c.lookup("genre", "")
	if !ok {
		return nil, nil
	}
	var items []json.RawMessage
	if kind := jsonKind(raw); kind != "array" || json.Unmarshal(raw, &items) != nil {
		c.fail(CodeInvalidType, fmt.Sprintf("Expected array, received %s", kind), "genre")
		return nil, nil
	}

	genres := make([]string, 0, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		var s string
		if kind := jsonKind(item); kind != "string" || json.Unmarshal(item, &s) != nil {
			return genres, &FieldError{
				Code:    CodeInvalidType,
				Path:    []interface{}{"genre", i},
				Message: fmt.Sprintf("Expected %s, received %s", enumList(), kind),
			}
		}
		genres = append(genres, s)
	}
	return genres, nil
}

func toInt(f *float64) *int {
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

func toGenres(names []string) []domain.Genre {
	genres := make([]domain.Genre, 0, len(names))
	for _, name := range names {
		g, _ := domain.ParseGenre(name)
		genres = append(genres, g)
	}
	return genres
}

func enumList() string {
	quoted := make([]string, len(domain.Genres))
	for i, g := range domain.Genres {
		quoted[i] = "'" + string(g) + "'"
	}
	return strings.Join(quoted, " | ")
}

// jsonKind names the JSON type of an already trimmed value by its first byte.
func jsonKind(raw []byte) string {
	if len(raw) == 0 {
		return "undefined"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
