package profile

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/example/esbot/internal/catalog"
	"github.com/example/esbot/internal/mastery"
	"github.com/example/esbot/pkg/models"
)

const dateLayout = "2006-01-02"

// WordSource picks a random vocabulary word for the word of the day
type WordSource interface {
	RandomWord(rng *rand.Rand) (catalog.Entry, bool)
}

var _ mastery.Persister = (*Service)(nil)

// Service operates on the currently loaded profile
type Service struct {
	repo    Repository
	profile *models.Profile
	now     func() time.Time
	rng     *rand.Rand
	logger  *slog.Logger
}

// NewService wraps a loaded profile
func NewService(repo Repository, p *models.Profile, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	Normalize(p)
	return &Service{
		repo:    repo,
		profile: p,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger.With("profile", p.ID),
	}
}

// WithClock replaces the time source
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithRand replaces the random source used for the word of the day
func (s *Service) WithRand(rng *rand.Rand) *Service {
	s.rng = rng
	return s
}

// Profile returns the wrapped profile
func (s *Service) Profile() *models.Profile {
	return s.profile
}

// MasteryRecords returns the persisted mastery mapping
func (s *Service) MasteryRecords() mastery.Records {
	return mastery.Records(s.profile.MasteredWords).Clone()
}

// NewMasteryStore creates a mastery store seeded from the profile that writes
// every change back through this service
func (s *Service) NewMasteryStore() *mastery.Store {
	return mastery.NewStore(s.MasteryRecords(), s,
		mastery.WithClock(s.now),
		mastery.WithLogger(s.logger))
}

// SaveMastery replaces the profile's mastery mapping and saves the profile
func (s *Service) SaveMastery(ctx context.Context, records mastery.Records) error {
	s.profile.MasteredWords = records
	return s.save(ctx)
}

func (s *Service) save(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// RecordQuiz adds a finished quiz to the statistics
func (s *Service) RecordQuiz(ctx context.Context, category string, score, maxScore int) (models.QuizResult, error) {
	result := models.QuizResult{
		Date:       s.now(),
		Category:   category,
		Score:      score,
		MaxScore:   maxScore,
		Percentage: Percentage(score, maxScore),
	}

	stats := &s.profile.Statistics
	stats.QuizzesTaken++
	stats.TotalScore += score
	stats.QuizHistory = append(stats.QuizHistory, result)

	return result, s.save(ctx)
}

// Percentage returns score/max as a percentage rounded to one decimal
func Percentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return math.Round(float64(score)/float64(maxScore)*1000) / 10
}

// AddFlashcardPractice adds n reviewed flashcards to the statistics
func (s *Service) AddFlashcardPractice(ctx context.Context, n int) error {
	s.profile.Statistics.FlashcardsPracticed += n
	return s.save(ctx)
}

// AddCustomWord stores a learner-defined word in the profile
func (s *Service) AddCustomWord(ctx context.Context, category string, word models.Word) (models.CustomWord, error) {
	if strings.TrimSpace(word.Spanish) == "" || strings.TrimSpace(word.English) == "" {
		return models.CustomWord{}, fmt.Errorf("spanish and english are required")
	}
	if category == "" {
		category = string(models.DifficultyCustom)
	}
	word.Difficulty = models.DifficultyCustom

	custom := models.CustomWord{Word: word, Category: category, AddedOn: s.now()}
	s.profile.CustomVocabulary = append(s.profile.CustomVocabulary, custom)
	return custom, s.save(ctx)
}

// CustomWords returns the words the learner added
func (s *Service) CustomWords() []models.CustomWord {
	return s.profile.CustomVocabulary
}

// Statistics returns the practice counters
func (s *Service) Statistics() models.Statistics {
	return s.profile.Statistics
}

// TodaysWord returns today's word of the day if one was already picked
func (s *Service) TodaysWord() (models.WordOfDayEntry, bool) {
	today := s.now().Format(dateLayout)
	if s.profile.LastWordOfDay == nil || *s.profile.LastWordOfDay != today {
		return models.WordOfDayEntry{}, false
	}
	history := s.profile.WordOfDayHistory
	if len(history) == 0 {
		return models.WordOfDayEntry{}, false
	}
	return history[len(history)-1], true
}

// SetWordOfDay records entry as today's word. It returns false when a word
// was already set today.
func (s *Service) SetWordOfDay(ctx context.Context, entry catalog.Entry) (bool, error) {
	today := s.now().Format(dateLayout)
	if s.profile.LastWordOfDay != nil && *s.profile.LastWordOfDay == today {
		return false, nil
	}

	s.profile.LastWordOfDay = &today
	s.profile.WordOfDayHistory = append(s.profile.WordOfDayHistory, models.WordOfDayEntry{
		Word:            entry.Word,
		Category:        entry.Category,
		CategoryDisplay: entry.CategoryDisplay,
		Date:            today,
	})
	return true, s.save(ctx)
}

// WordOfDay returns today's word, picking and saving a new one from source
// when none was chosen yet. ok is false when the vocabulary is empty.
func (s *Service) WordOfDay(ctx context.Context, source WordSource) (models.WordOfDayEntry, bool, error) {
	if entry, ok := s.TodaysWord(); ok {
		return entry, true, nil
	}

	picked, ok := source.RandomWord(s.rng)
	if !ok {
		return models.WordOfDayEntry{}, false, nil
	}
	if _, err := s.SetWordOfDay(ctx, picked); err != nil {
		s.logger.Warn("Failed to save word of the day", "error", err)
		entry, _ := s.TodaysWord()
		return entry, true, err
	}
	entry, _ := s.TodaysWord()
	return entry, true, nil
}
