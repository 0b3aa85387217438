package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/esbot/internal/mastery"
	"github.com/example/esbot/pkg/models"
)

type masteryRow struct {
	Category       string         `db:"category"`
	Word           string         `db:"word"`
	CorrectCount   int            `db:"correct_count"`
	IncorrectCount int            `db:"incorrect_count"`
	MasteryLevel   int            `db:"mastery_level"`
	LastPracticed  sql.NullString `db:"last_practiced"`
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// MasteryRepository handles database operations for mastery records
type MasteryRepository struct {
	db *sqlx.DB
}

// NewMasteryRepository creates a new repository instance
func NewMasteryRepository(db *sqlx.DB) *MasteryRepository {
	return &MasteryRepository{db: db}
}

// GetByProfile returns every mastery record of a profile.
// Unparseable last_practiced values are returned as never practiced.
func (r *MasteryRepository) GetByProfile(ctx context.Context, profileID string) (mastery.Records, error) {
	return loadMastery(ctx, r.db, profileID)
}

func loadMastery(ctx context.Context, q queryer, profileID string) (mastery.Records, error) {
	var rows []masteryRow
	query := q.Rebind(`
		SELECT category, word, correct_count, incorrect_count, mastery_level, last_practiced
		FROM mastery_records
		WHERE profile_id = ?
		ORDER BY category, word
	`)
	if err := sqlx.SelectContext(ctx, q, &rows, query, profileID); err != nil {
		return nil, fmt.Errorf("failed to get mastery records: %w", err)
	}

	records := make(mastery.Records)
	for _, row := range rows {
		words, ok := records[row.Category]
		if !ok {
			words = make(map[string]models.MasteryRecord)
			records[row.Category] = words
		}
		rec := models.MasteryRecord{
			CorrectCount:   row.CorrectCount,
			IncorrectCount: row.IncorrectCount,
			MasteryLevel:   models.ClampLevel(row.MasteryLevel),
		}
		if row.LastPracticed.Valid {
			rec.LastPracticed = models.ParseTimestamp(row.LastPracticed.String)
		}
		words[row.Word] = rec
	}
	return records, nil
}

func upsertMastery(ctx context.Context, tx *sqlx.Tx, profileID string, records mastery.Records) error {
	query := tx.Rebind(`
		INSERT INTO mastery_records (
			profile_id, category, word, correct_count, incorrect_count, mastery_level, last_practiced
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile_id, category, word) DO UPDATE SET
			correct_count = excluded.correct_count,
			incorrect_count = excluded.incorrect_count,
			mastery_level = excluded.mastery_level,
			last_practiced = excluded.last_practiced
	`)

	for category, words := range records {
		for word, rec := range words {
			var lastPracticed sql.NullString
			if rec.LastPracticed != nil {
				lastPracticed = sql.NullString{String: models.FormatTimestamp(*rec.LastPracticed), Valid: true}
			}
			if _, err := tx.ExecContext(ctx, query,
				profileID,
				category,
				word,
				rec.CorrectCount,
				rec.IncorrectCount,
				models.ClampLevel(rec.MasteryLevel),
				lastPracticed,
			); err != nil {
				return fmt.Errorf("failed to save mastery record %s/%s: %w", category, word, err)
			}
		}
	}
	return nil
}
