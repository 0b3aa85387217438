package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/esbot/pkg/models"
)

type quizResultRow struct {
	TakenAt    string  `db:"taken_at"`
	Category   string  `db:"category"`
	Score      int     `db:"score"`
	MaxScore   int     `db:"max_score"`
	Percentage float64 `db:"percentage"`
}

func loadQuizHistory(ctx context.Context, q queryer, profileID string) ([]models.QuizResult, error) {
	var rows []quizResultRow
	query := q.Rebind(`
		SELECT taken_at, category, score, max_score, percentage
		FROM quiz_results
		WHERE profile_id = ?
		ORDER BY id
	`)
	if err := sqlx.SelectContext(ctx, q, &rows, query, profileID); err != nil {
		return nil, fmt.Errorf("failed to get quiz history: %w", err)
	}

	history := make([]models.QuizResult, 0, len(rows))
	for _, row := range rows {
		result := models.QuizResult{
			Category:   row.Category,
			Score:      row.Score,
			MaxScore:   row.MaxScore,
			Percentage: row.Percentage,
		}
		if t := models.ParseTimestamp(row.TakenAt); t != nil {
			result.Date = *t
		}
		history = append(history, result)
	}
	return history, nil
}

// replaceQuizHistory stores the quiz history of a profile, inserting only the
// results beyond those already stored
func replaceQuizHistory(ctx context.Context, tx *sqlx.Tx, profileID string, history []models.QuizResult) error {
	var stored int
	if err := tx.GetContext(ctx, &stored, tx.Rebind(`SELECT COUNT(*) FROM quiz_results WHERE profile_id = ?`), profileID); err != nil {
		return fmt.Errorf("failed to count quiz results: %w", err)
	}

	if stored > len(history) {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM quiz_results WHERE profile_id = ?`), profileID); err != nil {
			return fmt.Errorf("failed to clear quiz results: %w", err)
		}
		stored = 0
	}

	insert := tx.Rebind(`
		INSERT INTO quiz_results (profile_id, taken_at, category, score, max_score, percentage)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	for _, result := range history[stored:] {
		if _, err := tx.ExecContext(ctx, insert,
			profileID,
			models.FormatTimestamp(result.Date),
			result.Category,
			result.Score,
			result.MaxScore,
			result.Percentage,
		); err != nil {
			return fmt.Errorf("failed to save quiz result: %w", err)
		}
	}
	return nil
}
