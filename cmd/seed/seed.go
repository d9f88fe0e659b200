package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"bookstore/internal/book"
	"bookstore/internal/platform/openlibrary"

	"go.uber.org/zap"
)

var (
	adjectives = []string{"Silent", "Crimson", "Hidden", "Last", "Broken", "Golden", "Distant", "Forgotten", "Iron", "Wandering"}
	nouns      = []string{"River", "Empire", "Garden", "Voyage", "Archive", "Harbor", "Kingdom", "Lantern", "Orchard", "Signal"}
	givenNames = []string{"Ada", "Chinua", "Elena", "Haruki", "Isabel", "Jorge", "Kazuo", "Mary", "Toni", "Wole"}
	surnames   = []string{"Achebe", "Allende", "Borges", "Ferrante", "Ishiguro", "Morrison", "Murakami", "Shelley", "Soyinka", "Lovelace"}
)

const firstSampleYear = 1850

// sampleInputs generates count synthetic books published between 1850 and maxYear.
func sampleInputs(rng *rand.Rand, count, maxYear int) []book.Input {
	inputs := make([]book.Input, 0, count)
	for i := 0; i < count; i++ {
		inputs = append(inputs, book.Input{
			Title: fmt.Sprintf("The %s %s", adjectives[rng.Intn(len(adjectives))], nouns[rng.Intn(len(nouns))]),
			Author: fmt.Sprintf("%s %s",
				givenNames[rng.Intn(len(givenNames))], surnames[rng.Intn(len(surnames))]),
			PublicationYear: book.Year(firstSampleYear + rng.Intn(maxYear-firstSampleYear+1)),
		})
	}
	return inputs
}

type searcher interface {
	SearchBooks(ctx context.Context, subject string, limit int) (*openlibrary.SearchResponse, error)
}

// openLibraryInputs maps search hits to inputs, skipping works without a title,
// an author or a first publication year.
func openLibraryInputs(ctx context.Context, client searcher, subject string, limit int) ([]book.Input, error) {
	res, err := client.SearchBooks(ctx, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("open library search %q: %w", subject, err)
	}

	inputs := make([]book.Input, 0, len(res.Docs))
	for _, doc := range res.Docs {
		if doc.Title == "" || len(doc.AuthorNames) == 0 || doc.FirstPublishYear == 0 {
			continue
		}
		inputs = append(inputs, book.Input{
			Title:           doc.Title,
			Author:          doc.AuthorNames[0],
			PublicationYear: book.Year(doc.FirstPublishYear),
		})
	}
	return inputs, nil
}

// seed creates every input through the service, so the same validation as
// POST /books applies. Rejected inputs are logged and skipped; store errors abort.
func seed(ctx context.Context, svc *book.Service, inputs []book.Input, logger *zap.Logger) (int, error) {
	created := 0
	for i, in := range inputs {
		if _, err := svc.Create(ctx, in); err != nil {
			if errors.Is(err, book.ErrMissingFields) || errors.Is(err, book.ErrFutureYear) || errors.Is(err, book.ErrInvalidYear) {
				logger.Warn("skipping invalid book", zap.Int("index", i), zap.String("title", in.Title), zap.Error(err))
				continue
			}
			return created, err
		}
		created++
		if created%1000 == 0 {
			logger.Info("seeding", zap.Int("created", created), zap.Int("total", len(inputs)))
		}
	}
	return created, nil
}
