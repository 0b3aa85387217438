package mastery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/esbot/pkg/models"
)

// ErrNotPersisted is wrapped by ApplyOutcome when the in-memory change could not be saved
var ErrNotPersisted = errors.New("mastery change not persisted")

// Records is the full mastery mapping: category -> word -> record
type Records map[string]map[string]models.MasteryRecord

// Clone returns a deep copy of the mapping
func (r Records) Clone() Records {
	out := make(Records, len(r))
	for category, words := range r {
		copied := make(map[string]models.MasteryRecord, len(words))
		for word, rec := range words {
			if rec.LastPracticed != nil {
				t := *rec.LastPracticed
				rec.LastPracticed = &t
			}
			copied[word] = rec
		}
		out[category] = copied
	}
	return out
}

// Count returns the number of records
func (r Records) Count() int {
	n := 0
	for _, words := range r {
		n += len(words)
	}
	return n
}

// Persister durably stores the whole mastery mapping of a profile
type Persister interface {
	SaveMastery(ctx context.Context, records Records) error
}

// Store owns the mastery records of one learner profile and is the only
// component allowed to change them.
type Store struct {
	records   Records
	persister Persister
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source used for last_practiced
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used to report persistence failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store seeded with previously persisted records.
// A nil persister keeps changes in memory only.
func NewStore(initial Records, persister Persister, opts ...Option) *Store {
	s := &Store{
		records:   initial.Clone(),
		persister: persister,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyOutcome records one practice attempt for (category, word).
// A correct answer raises the mastery level by one, an incorrect answer lowers it
// by one, both clamped to [0,5]. Calling it twice applies the change twice.
//
// The returned record always reflects the in-memory change. A non-nil error
// wraps ErrNotPersisted and means the change may be lost when the process exits.
func (s *Store) ApplyOutcome(ctx context.Context, category, word string, correct bool) (models.MasteryRecord, error) {
	rec := s.fetchOrCreate(category, word)

	if correct {
		rec.CorrectCount++
		rec.MasteryLevel = models.ClampLevel(rec.MasteryLevel + 1)
	} else {
		rec.IncorrectCount++
		rec.MasteryLevel = models.ClampLevel(rec.MasteryLevel - 1)
	}
	now := s.now()
	rec.LastPracticed = &now

	s.records[category][word] = rec

	if s.persister == nil {
		return rec, nil
	}
	if err := s.persister.SaveMastery(ctx, s.records.Clone()); err != nil {
		s.logger.Warn("Failed to persist mastery change",
			"category", category, "word", word, "error", err)
		return rec, fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return rec, nil
}

// fetchOrCreate returns the record for (category, word), creating a fresh
// level-0 record when the pair has never been attempted.
func (s *Store) fetchOrCreate(category, word string) models.MasteryRecord {
	words, ok := s.records[category]
	if !ok {
		words = make(map[string]models.MasteryRecord)
		s.records[category] = words
	}
	rec, ok := words[word]
	if !ok {
		rec = models.MasteryRecord{}
		words[word] = rec
	}
	return rec
}

// MasteryOf returns the mastery level of (category, word), or 0 if it was never attempted
func (s *Store) MasteryOf(category, word string) int {
	rec, ok := s.Record(category, word)
	if !ok {
		return models.MinMasteryLevel
	}
	return rec.MasteryLevel
}

// Record looks up a single record without creating it
func (s *Store) Record(category, word string) (models.MasteryRecord, bool) {
	words, ok := s.records[category]
	if !ok {
		return models.MasteryRecord{}, false
	}
	rec, ok := words[word]
	return rec, ok
}

// Records returns a read-only snapshot of every record
func (s *Store) Records() Records {
	return s.records.Clone()
}

// LevelCounts returns how many attempted words sit at each mastery level
func (s *Store) LevelCounts() [models.MaxMasteryLevel + 1]int {
	var counts [models.MaxMasteryLevel + 1]int
	for _, words := range s.records {
		for _, rec := range words {
			counts[models.ClampLevel(rec.MasteryLevel)]++
		}
	}
	return counts
}
