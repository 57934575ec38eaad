package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-minutes/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-minutes/pkg/config"
)

// migrate applies or rolls back the embedded schema migrations:
//
//	migrate [-steps n] up|down|status
func main() {
	steps := flag.Int("steps", 0, "maximum number of migrations to apply, 0 for all")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		logger.Fatal("database.connect.failed", zap.Error(err))
	}
	defer database.CloseDB(db)

	// Get the underlying SQL database connection from GORM
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("database.connection.failed", zap.Error(err))
	}

	source := database.MigrationSource()
	switch command {
	case "up", "down":
		direction := migrate.Up
		if command == "down" {
			direction = migrate.Down
		}
		n, err := migrate.ExecMax(sqlDB, "postgres", source, direction, *steps)
		if err != nil {
			logger.Fatal("database.migrate.failed", zap.String("direction", command), zap.Error(err))
		}
		logger.Info("database.migrated", zap.String("direction", command), zap.Int("applied", n))
	case "status":
		records, err := migrate.GetMigrationRecords(sqlDB, "postgres")
		if err != nil {
			logger.Fatal("database.migrate.status_failed", zap.Error(err))
		}
		for _, r := range records {
			fmt.Printf("%s\t%s\n", r.AppliedAt.Format("2006-01-02 15:04:05"), r.Id)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q, want up, down or status\n", command)
		os.Exit(2)
	}
}
