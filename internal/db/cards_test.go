package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestReadCards(t *testing.T) {
	input := strings.Join([]string{
		"left,right,tags",
		"Hot,Cold,temperature; Basics",
		"  Soft , Hard",
		"Missing,",
		"Lonely",
		"Cheap,Expensive,",
	}, "\n")

	records, err := readCards(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0].Card.Left != "Hot" || records[0].Card.Right != "Cold" {
		t.Fatalf("first card = %+v", records[0].Card)
	}
	if len(records[0].Tags) != 2 || records[0].Tags[1] != "basics" {
		t.Fatalf("tags = %v", records[0].Tags)
	}
	if records[1].Card.Left != "Soft" || len(records[1].Tags) != 0 {
		t.Fatalf("second record = %+v", records[1])
	}
}

func TestOpenRequiresURL(t *testing.T) {
	if _, err := Open("", 0, 0); !errors.Is(err, ErrNoDatabaseURL) {
		t.Fatalf("err = %v, want ErrNoDatabaseURL", err)
	}
}

func TestCardSourceRequiresConnection(t *testing.T) {
	if _, err := (CardSource{}).Cards(context.Background()); err == nil {
		t.Fatalf("expected error without connection")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if isUniqueViolation(nil) {
		t.Fatalf("expected nil error to not be unique violation")
	}
	wrapped := fmt.Errorf("insert card: %w", &pgconn.PgError{Code: "23505"})
	if !isUniqueViolation(wrapped) {
		t.Fatalf("expected wrapped unique violation to be recognized")
	}
	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("expected foreign key violation to not be unique violation")
	}
	if isUniqueViolation(errors.New("boom")) {
		t.Fatalf("expected plain error to not be unique violation")
	}
}
