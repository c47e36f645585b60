package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jmcallister-dev/league-scheduler/internal/models"
	"github.com/jmcallister-dev/league-scheduler/internal/services"
	"github.com/jmcallister-dev/league-scheduler/pkg/config"
	"github.com/jmcallister-dev/league-scheduler/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := services.NewScheduleStore(db)

	switch os.Args[1] {
	case "up":
		if err := store.Migrate(); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := db.Migrator().DropTable(&services.GameRecord{}, &services.ScheduleRecord{}); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(store); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", os.Args[1])
	}
}

// seedData stores a small demo schedule for local development.
func seedData(store *services.ScheduleStore) error {
	if err := store.Migrate(); err != nil {
		return err
	}

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	schedule := &models.Schedule{
		ID:     "demo-2025-26",
		Season: "2025-26",
		Sport:  "basketball",
		Games: []models.Game{
			{ID: "g1", HomeTeamID: "eagles", AwayTeamID: "hawks", VenueID: "eagles-arena", Date: date(2025, time.November, 7), IsConference: true},
			{ID: "g2", HomeTeamID: "wolves", AwayTeamID: "bears", VenueID: "wolves-arena", Date: date(2025, time.November, 8), IsConference: true},
			{ID: "g3", HomeTeamID: "hawks", AwayTeamID: "wolves", VenueID: "hawks-arena", Date: date(2025, time.November, 14), IsConference: true},
			{ID: "g4", HomeTeamID: "bears", AwayTeamID: "eagles", VenueID: "bears-arena", Date: date(2025, time.November, 15), IsConference: true},
			{ID: "g5", HomeTeamID: "eagles", AwayTeamID: "wolves", VenueID: "eagles-arena", Date: date(2025, time.November, 21), IsConference: true},
			{ID: "g6", HomeTeamID: "hawks", AwayTeamID: "bears", VenueID: "hawks-arena", Date: date(2025, time.November, 22), IsConference: true},
		},
	}
	return store.Save(context.Background(), schedule)
}
