// Package migrations embeds the goose migrations of the ClickHouse document backend.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
)

// FS holds the SQL migration files
//
//go:embed *.sql
var FS embed.FS

// Dir is the migrations directory inside FS
const Dir = "."

// SourceDir is where `create` writes new migration files, relative to the repository root
const SourceDir = "./migrations"

// commands lists what Run understands
var commands = []string{"up", "down", "status", "version", "create"}

var errMissingName = errors.New("usage: migrate create <migration_name>")

// Setup points goose at the embedded files and the ClickHouse dialect
func Setup() error {
	goose.SetBaseFS(FS)
	if err := goose.SetDialect("clickhouse"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// Up applies every pending migration
func Up(db *sql.DB) error {
	return Run(db, "up")
}

// Run executes one goose command against db
func Run(db *sql.DB, command string, args ...string) error {
	if err := checkCommand(command, args); err != nil {
		return err
	}
	if err := Setup(); err != nil {
		return err
	}

	switch command {
	case "up":
		if err := goose.Up(db, Dir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	case "down":
		if err := goose.Down(db, Dir); err != nil {
			return fmt.Errorf("failed to rollback migration: %w", err)
		}
	case "status":
		if err := goose.Status(db, Dir); err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
	case "version":
		if err := goose.Version(db, Dir); err != nil {
			return fmt.Errorf("failed to get version: %w", err)
		}
	case "create":
		// New files go to the source tree, not the embedded FS
		goose.SetBaseFS(nil)
		defer goose.SetBaseFS(FS)
		if err := goose.Create(db, SourceDir, args[0], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
	}
	return nil
}

func checkCommand(command string, args []string) error {
	switch command {
	case "up", "down", "status", "version":
		return nil
	case "create":
		if len(args) == 0 || args[0] == "" {
			return errMissingName
		}
		return nil
	}
	return fmt.Errorf("unknown command: %s. Available commands: %s", command, strings.Join(commands, ", "))
}
