// Package main applies the embedded bootstrap schema to the database.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"invoicing/internal/infrastructure/storage/postgres"
	"invoicing/migrations"
	"invoicing/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		log.Fatalw("failed to list schema files", "error", err)
	}
	sort.Strings(names)

	for _, name := range names {
		contents, err := migrations.FS.ReadFile(name)
		if err != nil {
			log.Fatalw("failed to read schema file", "file", name, "error", err)
		}

		if _, err := pool.Exec(ctx, string(contents)); err != nil {
			log.Fatalw("failed to apply schema file", "file", name, "error", err)
		}

		log.Infow("schema file applied", "file", name)
	}

	log.Info("schema bootstrap complete")
}
