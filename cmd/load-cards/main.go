package main

import (
	"flag"
	"log"

	"wavelength/internal/config"
	"wavelength/internal/db"
)

func main() {
	filePath := flag.String("file", "cards.csv", "path to cards csv (left,right,tags)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	conn, err := db.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	inserted, err := db.LoadCardLibrary(conn, *filePath)
	if err != nil {
		log.Fatalf("failed to load cards: %v", err)
	}
	log.Printf("loaded %d cards", inserted)
}
