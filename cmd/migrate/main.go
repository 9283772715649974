package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"wavelength/internal/config"
)

const migrationsDir = "db/migrations"

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	create := flag.String("create", "", "create an empty migration pair with this name")
	flag.Parse()

	if *create != "" {
		up, dn, err := createMigration(migrationsDir, *create, time.Now().UTC())
		if err != nil {
			log.Fatalf("create migration: %v", err)
		}
		log.Printf("created %s and %s", up, dn)
		return
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	m, err := migrate.New("file://"+migrationsDir, dsn)
	if err != nil {
		log.Fatalf("migration setup failed: %v", err)
	}
	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database migrations applied")
}

func createMigration(dir, name string, now time.Time) (string, string, error) {
	if strings.ContainsAny(name, " /") {
		return "", "", fmt.Errorf("migration name must not contain spaces or slashes: %q", name)
	}
	base := fmt.Sprintf("%s_%s", now.Format("20060102150405"), name)
	upPath := filepath.Join(dir, base+".up.sql")
	downPath := filepath.Join(dir, base+".down.sql")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	if err := writeNew(upPath, "-- up migration\n"); err != nil {
		return "", "", err
	}
	if err := writeNew(downPath, "-- down migration\n"); err != nil {
		return "", "", err
	}
	return upPath, downPath, nil
}

func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
