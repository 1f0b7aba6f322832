// Command seed populates the database with sample users and crosshairs.
package main

import (
	"flag"
	"log"

	"reticle/internal/config"
	"reticle/internal/database"
	"reticle/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	users := flag.Int("users", 10, "number of users to create")
	crosshairs := flag.Int("crosshairs", 50, "number of crosshairs to create")
	clean := flag.Bool("clean", false, "truncate existing data before seeding")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumUsers:      *users,
		NumCrosshairs: *crosshairs,
		ShouldClean:   *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
