// Command migrate applies or rolls back the database schema outside the
// service process. Usage: migrate [up|down|seed].
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"event-ticketing/internal/config"
	"event-ticketing/internal/database/migrations"
	"event-ticketing/internal/logger"
)

func main() {
	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	runner := migrations.NewRunner(bunDB, migrations.Options{
		MigrationsDir: cfg.Migrations.Dir,
		AutoMigrate:   true,
		SeedData:      command == "seed",
	}, log)
	defer runner.Close()

	switch command {
	case "up", "seed":
		err = runner.Run()
	case "down":
		err = runner.Down()
	default:
		log.Fatal("CONFIG", fmt.Sprintf("Unknown command %q (want up, down or seed)", command))
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migration %s failed: %v", command, err))
	}
	log.Info("DATABASE", fmt.Sprintf("Migration %s complete", command))
}
