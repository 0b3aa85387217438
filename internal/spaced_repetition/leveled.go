package spaced_repetition

import (
	"math/rand"
	"time"

	"github.com/example/esbot/internal/mastery"
	"github.com/example/esbot/pkg/models"
)

// DefaultSessionSize is the number of cards a review session aims for
const DefaultSessionSize = 10

// DefaultIntervals maps a mastery level to the days until the next review
var DefaultIntervals = [models.MaxMasteryLevel + 1]int{1, 2, 4, 7, 14, 30}

// Catalog is the read-only content the scheduler draws words from
type Catalog interface {
	Categories() []models.Category
}

// MasteryReader gives read access to a learner's mastery records
type MasteryReader interface {
	Records() mastery.Records
}

// Leveled implements a fixed-table leveled interval schedule
type Leveled struct {
	// Days until the next review per mastery level
	Intervals [models.MaxMasteryLevel + 1]int
	// Number of cards a session is filled up to
	SessionSize int

	now func() time.Time
	rnd *rand.Rand
}

// NewLeveled creates a scheduler with the default interval table
func NewLeveled() *Leveled {
	return &Leveled{
		Intervals:   DefaultIntervals,
		SessionSize: DefaultSessionSize,
		now:         time.Now,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithClock replaces the time source; it returns the scheduler for chaining
func (l *Leveled) WithClock(now func() time.Time) *Leveled {
	l.now = now
	return l
}

// WithRand replaces the random source used to shuffle sessions
func (l *Leveled) WithRand(rnd *rand.Rand) *Leveled {
	l.rnd = rnd
	return l
}

// Today returns midnight of the current local day
func (l *Leveled) Today() time.Time {
	return dateOf(l.now(), time.Local)
}

// Interval returns the review interval in days for a mastery level
func (l *Leveled) Interval(level int) int {
	return l.Intervals[models.ClampLevel(level)]
}

// NextDueDate computes when a word should be reviewed next.
// Words never practiced and words last answered incorrectly are due today.
// Otherwise the word is due interval(level) days after the day it was last
// practiced, but never earlier than today.
func (l *Leveled) NextDueDate(level int, lastPracticed *time.Time, lastCorrect bool, today time.Time) time.Time {
	today = dateOf(today, today.Location())
	if lastPracticed == nil || !lastCorrect {
		return today
	}

	next := dateOf(*lastPracticed, today.Location()).AddDate(0, 0, l.Interval(level))
	if next.Before(today) {
		return today
	}
	return next
}

// IsDue reports whether a record should be reviewed on the given day
func (l *Leveled) IsDue(rec models.MasteryRecord, today time.Time) bool {
	due := l.NextDueDate(rec.MasteryLevel, rec.LastPracticed, true, today)
	return !due.After(dateOf(today, today.Location()))
}

// BuildSession assembles a review session of at most SessionSize cards.
// Due words come first in selection, new words top the session up, and the
// final order is random.
func (l *Leveled) BuildSession(catalog Catalog, store MasteryReader) []models.ReviewItem {
	return l.BuildSessionOfSize(catalog, store, l.SessionSize)
}

// BuildSessionOfSize is BuildSession with an explicit target size
func (l *Leveled) BuildSessionOfSize(catalog Catalog, store MasteryReader, size int) []models.ReviewItem {
	if size <= 0 || catalog == nil {
		return []models.ReviewItem{}
	}

	var records mastery.Records
	if store != nil {
		records = store.Records()
	}

	due := l.DueItems(catalog, records)
	l.shuffle(due)
	if len(due) > size {
		due = due[:size]
	}

	session := due
	if len(session) < size {
		fresh := NewItems(catalog, records)
		l.shuffle(fresh)
		need := size - len(session)
		if need > len(fresh) {
			need = len(fresh)
		}
		session = append(session, fresh[:need]...)
	}

	l.shuffle(session)
	return session
}

// DueItems lists every attempted word that is due today. Records whose
// category or word is no longer in the catalog are skipped.
func (l *Leveled) DueItems(catalog Catalog, records mastery.Records) []models.ReviewItem {
	today := l.Today()
	items := make([]models.ReviewItem, 0)
	seen := make(map[models.WordKey]bool)

	for _, category := range catalog.Categories() {
		words, ok := records[category.Name]
		if !ok {
			continue
		}
		for _, word := range category.Words {
			rec, ok := words[word.Spanish]
			if !ok {
				continue
			}
			item := models.ReviewItem{
				Word:            word,
				Category:        category.Name,
				CategoryDisplay: category.DisplayName,
				MasteryLevel:    models.ClampLevel(rec.MasteryLevel),
				Provenance:      models.ProvenanceDue,
			}
			if seen[item.Key()] {
				continue
			}
			seen[item.Key()] = true
			if !l.IsDue(rec, today) {
				continue
			}
			items = append(items, item)
		}
	}

	return items
}

// NewItems lists every catalog word that has no mastery record yet
func NewItems(catalog Catalog, records mastery.Records) []models.ReviewItem {
	items := make([]models.ReviewItem, 0)
	seen := make(map[models.WordKey]bool)

	for _, category := range catalog.Categories() {
		attempted := records[category.Name]
		for _, word := range category.Words {
			if _, ok := attempted[word.Spanish]; ok {
				continue
			}
			item := models.ReviewItem{
				Word:            word,
				Category:        category.Name,
				CategoryDisplay: category.DisplayName,
				MasteryLevel:    models.MinMasteryLevel,
				Provenance:      models.ProvenanceNew,
			}
			if seen[item.Key()] {
				continue
			}
			seen[item.Key()] = true
			items = append(items, item)
		}
	}

	return items
}

func (l *Leveled) shuffle(items []models.ReviewItem) {
	l.rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
