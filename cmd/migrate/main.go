package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"    // PostgreSQL driver
	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
	"github.com/pressly/goose/v3"

	"github.com/delordemm1/go-sprints-api/migrations"
)

const usage = "go run ./cmd/migrate [up|up-by-one|down|redo|reset|status|version|create NAME sql]"

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("❌ Missing goose command. Usage: %s", usage)
	}
	command := os.Args[1]
	args := os.Args[2:]

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("❌ DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("❌ Failed to open database connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("❌ Failed to ping database: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("❌ Failed to set goose dialect: %v", err)
	}

	// New files have to land on disk, everything else runs from the embedded set.
	dir := "."
	if command == "create" {
		dir = "migrations"
		goose.SetBaseFS(nil)
	} else {
		goose.SetBaseFS(migrations.FS)
	}

	log.Printf("Running goose command: %s %s", command, strings.Join(args, " "))
	if err := goose.RunContext(context.Background(), command, db, dir, args...); err != nil {
		log.Fatalf("❌ Goose command '%s' failed: %v", command, err)
	}
	log.Printf("✅ goose %s finished", command)
}
