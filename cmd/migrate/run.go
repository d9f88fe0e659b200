package main

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func run(sqlDB *sql.DB, command, dir string) error {
	switch command {
	case "up":
		if err := goose.Up(sqlDB, dir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	case "down":
		if err := goose.Down(sqlDB, dir); err != nil {
			return fmt.Errorf("failed to rollback migrations: %w", err)
		}
	case "status":
		if err := goose.Status(sqlDB, dir); err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
	default:
		return fmt.Errorf("unknown command: %s. Use: up, down, status, create", command)
	}
	return nil
}
