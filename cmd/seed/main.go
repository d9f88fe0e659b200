package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/logging"
	"bookstore/internal/platform/openlibrary"
	"bookstore/internal/storage"

	"go.uber.org/zap"
)

func main() {
	source := flag.String("source", "sample", "where books come from: sample or openlibrary")
	count := flag.Int("count", 100, "number of sample books to generate")
	subject := flag.String("subject", "fiction", "Open Library subject to import")
	limit := flag.Int("limit", 50, "maximum number of Open Library works to import")
	flag.Parse()

	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		_, _ = os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("cannot open store", zap.Error(err))
	}
	defer closeRepo()

	var inputs []book.Input
	switch *source {
	case "sample":
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		inputs = sampleInputs(rng, *count, time.Now().Year())
	case "openlibrary":
		client := openlibrary.NewClient("bookstore-seed/1.0", 1, 3)
		inputs, err = openLibraryInputs(ctx, client, *subject, *limit)
		if err != nil {
			logger.Fatal("import failed", zap.Error(err))
		}
	default:
		logger.Fatal("unknown source", zap.String("source", *source))
	}

	logger.Info("seeding books", zap.String("source", *source), zap.Int("books", len(inputs)), zap.String("store", cfg.StoreDriver))

	created, err := seed(ctx, book.NewService(repo), inputs, logger)
	if err != nil {
		logger.Fatal("seeding failed", zap.Int("created", created), zap.Error(err))
	}

	total, err := repo.Count(ctx)
	if err != nil {
		logger.Warn("cannot count books", zap.Error(err))
	}
	logger.Info("seeding finished", zap.Int("created", created), zap.Int("total", total))
}
