package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/esbot/internal/profile"
	"github.com/example/esbot/pkg/models"
)

type profileRow struct {
	ID                     string         `db:"id"`
	Name                   string         `db:"name"`
	CreatedAt              string         `db:"created_at"`
	LastLogin              string         `db:"last_login"`
	QuizzesTaken           int            `db:"quizzes_taken"`
	FlashcardsPracticed    int            `db:"flashcards_practiced"`
	ConversationsPracticed int            `db:"conversations_practiced"`
	TotalScore             int            `db:"total_score"`
	LastWordOfDay          sql.NullString `db:"last_word_of_day"`
}

var _ profile.Repository = (*ProfileRepository)(nil)

// ProfileRepository stores learner profiles in SQL tables
type ProfileRepository struct {
	db      *sqlx.DB
	mastery *MasteryRepository
	now     func() time.Time
	logger  *slog.Logger
}

// NewProfileRepository creates a new repository instance
func NewProfileRepository(db *sqlx.DB, logger *slog.Logger) *ProfileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileRepository{db: db, mastery: NewMasteryRepository(db), now: time.Now, logger: logger}
}

// WithClock replaces the time source used for created_at and last_login
func (r *ProfileRepository) WithClock(now func() time.Time) *ProfileRepository {
	r.now = now
	return r
}

// Create inserts a fresh profile
func (r *ProfileRepository) Create(ctx context.Context, name string) (*models.Profile, error) {
	id := profile.IDFromName(name)
	if id == "" {
		return nil, fmt.Errorf("profile name must not be empty")
	}

	var exists int
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT COUNT(*) FROM profiles WHERE id = ?`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to check profile: %w", err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("%w: %s", profile.ErrProfileExists, id)
	}

	p := models.NewProfile(id, strings.TrimSpace(name), r.now())
	if err := r.Save(ctx, p); err != nil {
		return nil, err
	}

	r.logger.Info("Profile created", "profile", id)
	return p, nil
}

// Load reads a profile with all its records and updates last_login
func (r *ProfileRepository) Load(ctx context.Context, name string) (*models.Profile, error) {
	p, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	p.LastLogin = r.now()
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`UPDATE profiles SET last_login = ? WHERE id = ?`),
		models.FormatTimestamp(p.LastLogin), p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	return p, nil
}

// Get reads a profile with all its records without touching last_login
func (r *ProfileRepository) Get(ctx context.Context, name string) (*models.Profile, error) {
	id := profile.IDFromName(name)

	var row profileRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, name, created_at, last_login, quizzes_taken, flashcards_practiced,
		       conversations_practiced, total_score, last_word_of_day
		FROM profiles
		WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", profile.ErrProfileNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	p := &models.Profile{
		ID:   row.ID,
		Name: row.Name,
		Statistics: models.Statistics{
			QuizzesTaken:           row.QuizzesTaken,
			FlashcardsPracticed:    row.FlashcardsPracticed,
			ConversationsPracticed: row.ConversationsPracticed,
			TotalScore:             row.TotalScore,
		},
	}
	if t := models.ParseTimestamp(row.CreatedAt); t != nil {
		p.CreatedAt = *t
	}
	if t := models.ParseTimestamp(row.LastLogin); t != nil {
		p.LastLogin = *t
	}
	if row.LastWordOfDay.Valid {
		day := row.LastWordOfDay.String
		p.LastWordOfDay = &day
	}

	if p.MasteredWords, err = r.mastery.GetByProfile(ctx, id); err != nil {
		return nil, err
	}
	if p.Statistics.QuizHistory, err = loadQuizHistory(ctx, r.db, id); err != nil {
		return nil, err
	}
	if p.CustomVocabulary, err = loadCustomWords(ctx, r.db, id); err != nil {
		return nil, err
	}
	if p.WordOfDayHistory, err = loadWordOfDayHistory(ctx, r.db, id); err != nil {
		return nil, err
	}
	profile.Normalize(p)
	return p, nil
}

// List returns every profile sorted by id
func (r *ProfileRepository) List(ctx context.Context) ([]profile.Info, error) {
	infos := []profile.Info{}
	if err := r.db.SelectContext(ctx, &infos, `SELECT id, name FROM profiles ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return infos, nil
}

// Save writes the profile and all its records in one transaction
func (r *ProfileRepository) Save(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = profile.IDFromName(p.Name)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var lastWordOfDay sql.NullString
	if p.LastWordOfDay != nil {
		lastWordOfDay = sql.NullString{String: *p.LastWordOfDay, Valid: true}
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO profiles (
			id, name, created_at, last_login, quizzes_taken, flashcards_practiced,
			conversations_practiced, total_score, last_word_of_day
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			last_login = excluded.last_login,
			quizzes_taken = excluded.quizzes_taken,
			flashcards_practiced = excluded.flashcards_practiced,
			conversations_practiced = excluded.conversations_practiced,
			total_score = excluded.total_score,
			last_word_of_day = excluded.last_word_of_day
	`),
		p.ID,
		p.Name,
		models.FormatTimestamp(p.CreatedAt),
		models.FormatTimestamp(p.LastLogin),
		p.Statistics.QuizzesTaken,
		p.Statistics.FlashcardsPracticed,
		p.Statistics.ConversationsPracticed,
		p.Statistics.TotalScore,
		lastWordOfDay,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile %s: %w", p.ID, err)
	}

	if err := upsertMastery(ctx, tx, p.ID, p.MasteredWords); err != nil {
		return err
	}
	if err := replaceQuizHistory(ctx, tx, p.ID, p.Statistics.QuizHistory); err != nil {
		return err
	}
	if err := replaceCustomWords(ctx, tx, p.ID, p.CustomVocabulary); err != nil {
		return err
	}
	if err := replaceWordOfDayHistory(ctx, tx, p.ID, p.WordOfDayHistory); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile %s: %w", p.ID, err)
	}
	return nil
}
