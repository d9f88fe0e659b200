package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"bookstore/db"
	"bookstore/internal/config"
	"bookstore/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

type gooseLogger struct {
	*zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.Infof(format, v...)
}

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	config.LoadEnvFiles()

	logger, err := logging.New(os.Getenv("LOG_LEVEL"), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()
	goose.SetLogger(gooseLogger{sugar})

	dir, err := configureSource(migrationsDir())
	if err != nil {
		sugar.Fatalf("Failed to configure migrations: %v", err)
	}

	if *command == "create" {
		if *name == "" {
			sugar.Fatal("Name is required for 'create' command")
		}
		if migrationsDir() == "" {
			sugar.Fatal("MIGRATIONS_DIR must point at db/migrations for 'create'")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			sugar.Fatalf("Failed to create migration: %v", err)
		}
		sugar.Infof("Migration created: %s", *name)
		return
	}

	dsn := databaseDSN()
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		sugar.Fatalf("Failed to connect to database (%s): %v", config.RedactDSN(dsn), err)
	}
	defer pool.Close()

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	if err := run(sqlDB, *command, dir); err != nil {
		sugar.Fatalf("%v", err)
	}
}

// configureSource points goose at dir on disk, or at the embedded migrations when dir is empty.
func configureSource(dir string) (string, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return "", err
	}
	if dir != "" {
		goose.SetBaseFS(nil)
		return dir, nil
	}
	if _, err := fs.Stat(db.Migrations, db.MigrationsDir); err != nil {
		return "", err
	}
	goose.SetBaseFS(db.Migrations)
	return db.MigrationsDir, nil
}
