package db

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"wavelength/internal/cards"
)

// CardSource serves the enabled library cards, optionally filtered by tag.
type CardSource struct {
	Conn *gorm.DB
	Tag  string
}

func (s CardSource) Cards(ctx context.Context) ([]cards.Card, error) {
	if s.Conn == nil {
		return nil, errors.New("db connection is nil")
	}
	query := s.Conn.WithContext(ctx).Where("enabled = ?", true)
	if s.Tag != "" {
		query = query.Where(datatypes.JSONArrayQuery("tags").Contains(s.Tag))
	}
	var rows []CardLibrary
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	pool := make([]cards.Card, 0, len(rows))
	for _, row := range rows {
		pool = append(pool, cards.Card{Left: row.LeftPole, Right: row.RightPole})
	}
	return pool, nil
}

type cardRecord struct {
	Card cards.Card
	Tags []string
}

// LoadCardLibrary reads cards from a CSV (left,right[,tags]) and upserts
// them into the card_library table. Tags are separated by semicolons.
func LoadCardLibrary(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	records, err := readCards(file)
	if err != nil {
		return 0, err
	}
	loaded := 0
	for _, record := range records {
		tags, err := json.Marshal(record.Tags)
		if err != nil {
			return loaded, err
		}
		err = upsertCard(conn, record.Card, tags)
		if isUniqueViolation(err) {
			// Another loader inserted the same poles between lookup and insert.
			err = upsertCard(conn, record.Card, tags)
		}
		if err != nil {
			return loaded, err
		}
		loaded++
	}
	return loaded, nil
}

func upsertCard(conn *gorm.DB, card cards.Card, tags []byte) error {
	entry := CardLibrary{LeftPole: card.Left, RightPole: card.Right}
	return conn.Where(CardLibrary{LeftPole: card.Left, RightPole: card.Right}).
		Assign(CardLibrary{Tags: datatypes.JSON(tags), Enabled: true}).
		FirstOrCreate(&entry).Error
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func readCards(r io.Reader) ([]cardRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []cardRecord
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		left := strings.TrimSpace(row[0])
		right := strings.TrimSpace(row[1])
		if left == "" || right == "" {
			continue
		}
		record := cardRecord{Card: cards.Card{Left: left, Right: right}, Tags: []string{}}
		if len(row) >= 3 {
			for _, tag := range strings.Split(row[2], ";") {
				if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
					record.Tags = append(record.Tags, tag)
				}
			}
		}
		records = append(records, record)
	}
	return records, nil
}
