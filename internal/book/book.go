package book

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no book matches the given id.
	ErrNotFound = errors.New("book not found")
	// ErrInvalidID is returned when an id is not a well-formed book id.
	ErrInvalidID = errors.New("invalid book id")
	// ErrMissingFields is returned when title, author or publicationYear is absent or empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrFutureYear is returned when publicationYear is after the current year.
	ErrFutureYear = errors.New("publication year is in the future")
	// ErrInvalidYear is returned when publicationYear cannot be stored as a whole year.
	ErrInvalidYear = errors.New("publication year cannot be stored")
	// ErrMissingQuery is returned when a search is issued without a query.
	ErrMissingQuery = errors.New("missing search query")
)

// Book represents a book record.
type Book struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	PublicationYear int    `json:"publicationYear"`
}

// Input carries the client supplied fields for create and update.
// Zero values count as missing.
type Input struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	PublicationYear Year   `json:"publicationYear" validate:"required"`
}

// Year is a publication year as sent by the client. It decodes from any JSON
// number or from a string. A string that is not numeric becomes NaN, which
// counts as present but compares false against every year.
type Year float64

func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = 0
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("publicationYear: %w", err)
		}
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*y = 0
			return nil
		}
		f, err := parseYear(raw)
		if err != nil {
			*y = Year(math.NaN())
			return nil
		}
		*y = Year(f)
		return nil
	}

	f, err := parseYear(raw)
	if err != nil {
		return fmt.Errorf("publicationYear: %s is not a number", raw)
	}
	*y = Year(f)
	return nil
}

// parseYear accepts out-of-range numbers as ±Inf.
func parseYear(raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return f, nil
}

// Int returns y as a whole year, dropping any fraction. It reports false when
// y is NaN or does not fit a 32-bit year column.
func (y Year) Int() (int, bool) {
	f := float64(y)
	if math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// Page is the page pointer rendered as next/previous in list responses.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ListResult is one page of books.
type ListResult struct {
	Next     *Page  `json:"next,omitempty"`
	Previous *Page  `json:"previous,omitempty"`
	Count    int    `json:"count"`
	Data     []Book `json:"data"`
}

// Stats summarises the whole collection.
type Stats struct {
	Total  int `json:"Total Number of Books"`
	Oldest int `json:"Oldest Published Book"`
	Newest int `json:"Newest Published Book"`
}

// NewID returns a fresh book id.
func NewID() string {
	return uuid.NewString()
}

// ParseID checks that id is a well-formed book id and returns its canonical form.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	return parsed.String(), nil
}

// matches reports whether the lower-cased needle occurs in title or author, ignoring case.
func (b Book) matches(needle string) bool {
	return strings.Contains(strings.ToLower(b.Title), needle) ||
		strings.Contains(strings.ToLower(b.Author), needle)
}
