package book

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// MemoryRepo is an in-process Repository that keeps books in insertion order.
type MemoryRepo struct {
	mu    sync.RWMutex
	order []string
	books map[string]Book
}

// NewMemoryRepo constructs a MemoryRepo seeded with the provided books.
// Seed books without an id get one assigned.
func NewMemoryRepo(seed ...Book) *MemoryRepo {
	r := &MemoryRepo{books: make(map[string]Book, len(seed))}
	for _, b := range seed {
		if b.ID == "" {
			b.ID = NewID()
		}
		r.order = append(r.order, b.ID)
		r.books[b.ID] = b
	}
	return r
}

func (r *MemoryRepo) Insert(_ context.Context, in Input) (Book, error) {
	b := Book{
		ID:              NewID(),
		Title:           in.Title,
		Author:          in.Author,
		PublicationYear: int(in.PublicationYear),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, b.ID)
	r.books[b.ID] = b
	return b, nil
}

func (r *MemoryRepo) FindByID(_ context.Context, id string) (*Book, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *MemoryRepo) List(_ context.Context, offset, limit int) ([]Book, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid page window offset=%d limit=%d", offset, limit)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset >= len(r.order) {
		return []Book{}, nil
	}
	end := len(r.order)
	if limit < end-offset {
		end = offset + limit
	}
	out := make([]Book, 0, end-offset)
	for _, id := range r.order[offset:end] {
		out = append(out, r.books[id])
	}
	return out, nil
}

func (r *MemoryRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}

func (r *MemoryRepo) Search(_ context.Context, term string) ([]Book, error) {
	needle := strings.ToLower(term)

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Book{}
	for _, id := range r.order {
		b := r.books[id]
		if b.matches(needle) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryRepo) All(_ context.Context) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Book, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.books[id])
	}
	return out, nil
}

func (r *MemoryRepo) Update(_ context.Context, id string, in Input) (bool, error) {
	id, err := ParseID(id)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return false, nil
	}
	r.books[id] = Book{
		ID:              id,
		Title:           in.Title,
		Author:          in.Author,
		PublicationYear: int(in.PublicationYear),
	}
	return true, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) (bool, error) {
	id, err := ParseID(id)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return false, nil
	}
	delete(r.books, id)
	r.order = slices.DeleteFunc(r.order, func(v string) bool { return v == id })
	return true, nil
}

func (r *MemoryRepo) Ping(context.Context) error {
	return nil
}
