package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/esbot/pkg/models"
)

type customWordRow struct {
	Category           string `db:"category"`
	Spanish            string `db:"spanish"`
	English            string `db:"english"`
	Example            string `db:"example"`
	ExampleTranslation string `db:"example_translation"`
	Difficulty         string `db:"difficulty"`
	PronunciationTip   string `db:"pronunciation_tip"`
	AddedOn            string `db:"added_on"`
}

type wordOfDayRow struct {
	ShownOn            string `db:"shown_on"`
	Category           string `db:"category"`
	CategoryDisplay    string `db:"category_display"`
	Spanish            string `db:"spanish"`
	English            string `db:"english"`
	Example            string `db:"example"`
	ExampleTranslation string `db:"example_translation"`
	Difficulty         string `db:"difficulty"`
	PronunciationTip   string `db:"pronunciation_tip"`
}

func loadCustomWords(ctx context.Context, q queryer, profileID string) ([]models.CustomWord, error) {
	var rows []customWordRow
	query := q.Rebind(`
		SELECT category, spanish, english, example, example_translation, difficulty, pronunciation_tip, added_on
		FROM custom_words
		WHERE profile_id = ?
		ORDER BY id
	`)
	if err := sqlx.SelectContext(ctx, q, &rows, query, profileID); err != nil {
		return nil, fmt.Errorf("failed to get custom words: %w", err)
	}

	words := make([]models.CustomWord, 0, len(rows))
	for _, row := range rows {
		cw := models.CustomWord{
			Word: models.Word{
				Spanish:            row.Spanish,
				English:            row.English,
				Example:            row.Example,
				ExampleTranslation: row.ExampleTranslation,
				Difficulty:         models.Difficulty(row.Difficulty),
				PronunciationTip:   row.PronunciationTip,
			},
			Category: row.Category,
		}
		if t := models.ParseTimestamp(row.AddedOn); t != nil {
			cw.AddedOn = *t
		}
		words = append(words, cw)
	}
	return words, nil
}

func replaceCustomWords(ctx context.Context, tx *sqlx.Tx, profileID string, words []models.CustomWord) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM custom_words WHERE profile_id = ?`), profileID); err != nil {
		return fmt.Errorf("failed to clear custom words: %w", err)
	}

	insert := tx.Rebind(`
		INSERT INTO custom_words (
			profile_id, category, spanish, english, example, example_translation,
			difficulty, pronunciation_tip, added_on
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, w := range words {
		if _, err := tx.ExecContext(ctx, insert,
			profileID,
			w.Category,
			w.Spanish,
			w.English,
			w.Example,
			w.ExampleTranslation,
			string(w.Difficulty),
			w.PronunciationTip,
			models.FormatTimestamp(w.AddedOn),
		); err != nil {
			return fmt.Errorf("failed to save custom word %s: %w", w.Spanish, err)
		}
	}
	return nil
}

func loadWordOfDayHistory(ctx context.Context, q queryer, profileID string) ([]models.WordOfDayEntry, error) {
	var rows []wordOfDayRow
	query := q.Rebind(`
		SELECT shown_on, category, category_display, spanish, english, example,
		       example_translation, difficulty, pronunciation_tip
		FROM word_of_day_history
		WHERE profile_id = ?
		ORDER BY id
	`)
	if err := sqlx.SelectContext(ctx, q, &rows, query, profileID); err != nil {
		return nil, fmt.Errorf("failed to get word of the day history: %w", err)
	}

	history := make([]models.WordOfDayEntry, 0, len(rows))
	for _, row := range rows {
		history = append(history, models.WordOfDayEntry{
			Word: models.Word{
				Spanish:            row.Spanish,
				English:            row.English,
				Example:            row.Example,
				ExampleTranslation: row.ExampleTranslation,
				Difficulty:         models.Difficulty(row.Difficulty),
				PronunciationTip:   row.PronunciationTip,
			},
			Category:        row.Category,
			CategoryDisplay: row.CategoryDisplay,
			Date:            row.ShownOn,
		})
	}
	return history, nil
}

func replaceWordOfDayHistory(ctx context.Context, tx *sqlx.Tx, profileID string, history []models.WordOfDayEntry) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM word_of_day_history WHERE profile_id = ?`), profileID); err != nil {
		return fmt.Errorf("failed to clear word of the day history: %w", err)
	}

	insert := tx.Rebind(`
		INSERT INTO word_of_day_history (
			profile_id, shown_on, category, category_display, spanish, english,
			example, example_translation, difficulty, pronunciation_tip
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	for _, e := range history {
		if _, err := tx.ExecContext(ctx, insert,
			profileID,
			e.Date,
			e.Category,
			e.CategoryDisplay,
			e.Spanish,
			e.English,
			e.Example,
			e.ExampleTranslation,
			string(e.Difficulty),
			e.PronunciationTip,
		); err != nil {
			return fmt.Errorf("failed to save word of the day %s: %w", e.Spanish, err)
		}
	}
	return nil
}
