package book

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10

	// newestSeed is where the newest-year scan starts, so an empty collection reports 1.
	newestSeed = 1
)

var quoteStripper = strings.NewReplacer(`'`, "", `"`, "")

// Observer is notified about successful writes.
type Observer interface {
	BookCreated()
	BookUpdated()
	BookDeleted()
}

type nopObserver struct{}

func (nopObserver) BookCreated() {}
func (nopObserver) BookUpdated() {}
func (nopObserver) BookDeleted() {}

// Service provides book-related business logic.
type Service struct {
	repo     Repository
	now      func() time.Time
	observer Observer
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for the current year.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver registers an observer for write operations.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewService creates a new book service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, observer: nopObserver{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the requested page together with next/previous pointers.
// Non-positive page or limit fall back to the defaults.
func (s *Service) List(ctx context.Context, page, limit int) (ListResult, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if page > math.MaxInt/limit {
		return pastEnd(page, limit), nil
	}
	startIndex := (page - 1) * limit
	endIndex := page * limit

	books, err := s.repo.List(ctx, startIndex, limit)
	if err != nil {
		return ListResult{}, fmt.Errorf("list books: %w", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return ListResult{}, fmt.Errorf("count books: %w", err)
	}

	res := ListResult{Count: len(books), Data: nonNil(books)}
	if endIndex < total {
		res.Next = &Page{Page: page + 1, Limit: limit}
	}
	if startIndex > 0 {
		res.Previous = &Page{Page: page - 1, Limit: limit}
	}
	return res, nil
}

// pastEnd is the page for a window whose end index does not fit in an int;
// no store can hold that many books, so it is empty.
func pastEnd(page, limit int) ListResult {
	res := ListResult{Data: []Book{}}
	if page > 1 {
		res.Previous = &Page{Page: page - 1, Limit: limit}
	}
	return res
}

// Create validates in and stores it as a new book.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	if err := in.Validate(); err != nil {
		return Book{}, err
	}
	if float64(in.PublicationYear) > float64(s.now().Year()) {
		return Book{}, ErrFutureYear
	}
	if err := checkStorableYear(in.PublicationYear); err != nil {
		return Book{}, err
	}
	b, err := s.repo.Insert(ctx, in)
	if err != nil {
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	s.observer.BookCreated()
	return b, nil
}

// Search returns every book whose title or author contains q, ignoring case.
// Quote characters are removed from q before matching.
func (s *Service) Search(ctx context.Context, q string) ([]Book, error) {
	if q == "" {
		return nil, ErrMissingQuery
	}
	books, err := s.repo.Search(ctx, SanitizeQuery(q))
	if err != nil {
		return nil, err
	}
	return nonNil(books), nil
}

// SanitizeQuery strips single and double quotes.
func SanitizeQuery(q string) string {
	return quoteStripper.Replace(q)
}

// Stats folds the whole collection into total, oldest and newest year.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	books, err := s.repo.All(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load books: %w", err)
	}
	return foldStats(books, s.now().Year()), nil
}

// foldStats seeds oldest with currentYear and newest with 1; an empty
// collection reports exactly those seeds.
func foldStats(books []Book, currentYear int) Stats {
	st := Stats{Oldest: currentYear, Newest: newestSeed}
	for _, b := range books {
		st.Total++
		if b.PublicationYear > st.Newest {
			st.Newest = b.PublicationYear
		}
		if b.PublicationYear < st.Oldest {
			st.Oldest = b.PublicationYear
		}
	}
	return st
}

// Get returns the book with id, or nil when there is none.
func (s *Service) Get(ctx context.Context, id string) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// Update replaces title, author and publicationYear of the book with id.
func (s *Service) Update(ctx context.Context, id string, in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := checkStorableYear(in.PublicationYear); err != nil {
		return err
	}
	found, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	s.observer.BookUpdated()
	return nil
}

// Delete removes the book with id.
func (s *Service) Delete(ctx context.Context, id string) error {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if !found {
		return ErrNotFound
	}
	s.observer.BookDeleted()
	return nil
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// checkStorableYear rejects years the store cannot hold, such as NaN from a
// non-numeric string or values beyond the 32-bit range.
func checkStorableYear(y Year) error {
	if _, ok := y.Int(); !ok {
		return fmt.Errorf("%w: %v", ErrInvalidYear, float64(y))
	}
	return nil
}

func nonNil(books []Book) []Book {
	if books == nil {
		return []Book{}
	}
	return books
}
