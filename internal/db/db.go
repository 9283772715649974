package db

import (
	"errors"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var ErrNoDatabaseURL = errors.New("DATABASE_URL is not set")

// Open connects to Postgres and applies the pool limits.
func Open(dsn string, maxOpen, maxIdle int) (*gorm.DB, error) {
	if dsn == "" {
		return nil, ErrNoDatabaseURL
	}
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	return conn, nil
}

// Migrate runs GORM auto-migrations for the card tables.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.AutoMigrate(&CardLibrary{}); err != nil {
		return err
	}
	log.Println("database migration complete")
	return nil
}
