package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the contract for book data storage.
// Methods taking an id return an error wrapping ErrInvalidID when the id is malformed.
type Repository interface {
	// Insert stores a new book and returns it with its assigned id.
	Insert(ctx context.Context, in Input) (Book, error)
	// FindByID returns nil, nil when no book has the id.
	FindByID(ctx context.Context, id string) (*Book, error)
	// List returns at most limit books after skipping offset, in insertion order.
	List(ctx context.Context, offset, limit int) ([]Book, error)
	Count(ctx context.Context) (int, error)
	// Search matches term case-insensitively as a substring of title or author.
	Search(ctx context.Context, term string) ([]Book, error)
	All(ctx context.Context) ([]Book, error)
	// Update replaces the fields of an existing book and reports whether it existed.
	Update(ctx context.Context, id string, in Input) (bool, error)
	// Delete removes a book and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)
	Ping(ctx context.Context) error
}
