package spaced_repetition

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/esbot/internal/mastery"
	"github.com/example/esbot/pkg/models"
)

type fakeCatalog struct {
	categories []models.Category
}

func (c fakeCatalog) Categories() []models.Category {
	return c.categories
}

type fakeRecords mastery.Records

func (r fakeRecords) Records() mastery.Records {
	return mastery.Records(r).Clone()
}

var today = time.Date(2024, 5, 20, 15, 0, 0, 0, time.Local)

func newTestLeveled() *Leveled {
	return NewLeveled().
		WithClock(func() time.Time { return today }).
		WithRand(rand.New(rand.NewSource(42)))
}

func daysAgo(n int) *time.Time {
	t := today.AddDate(0, 0, -n)
	return &t
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func catalogOf(category string, n int) models.Category {
	words := make([]models.Word, n)
	for i := range words {
		words[i] = models.Word{
			Spanish: fmt.Sprintf("%s-%d", category, i),
			English: fmt.Sprintf("word %d", i),
		}
	}
	return models.Category{Name: category, DisplayName: category, Words: words}
}

func TestNextDueDate(t *testing.T) {
	l := newTestLeveled()
	day := midnight(today)

	tests := []struct {
		name          string
		level         int
		lastPracticed *time.Time
		lastCorrect   bool
		want          time.Time
	}{
		{"never practiced", 3, nil, true, day},
		{"last answer incorrect", 5, daysAgo(0), false, day},
		{"level 0 yesterday", 0, daysAgo(1), true, day},
		{"level 3 ten days ago is clamped to today", 3, daysAgo(10), true, day},
		{"level 2 today", 2, daysAgo(0), true, day.AddDate(0, 0, 4)},
		{"level 5 three days ago", 5, daysAgo(3), true, day.AddDate(0, 0, 27)},
		{"level above range uses level 5", 9, daysAgo(0), true, day.AddDate(0, 0, 30)},
		{"level below range uses level 0", -2, daysAgo(0), true, day.AddDate(0, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := l.NextDueDate(tt.level, tt.lastPracticed, tt.lastCorrect, today)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.False(t, got.Before(day))
		})
	}
}

func TestNextDueDate_IntervalTable(t *testing.T) {
	l := newTestLeveled()
	for level, days := range []int{1, 2, 4, 7, 14, 30} {
		assert.Equal(t, days, l.Interval(level))
	}
}

func TestBuildSession_OnlyNewWords(t *testing.T) {
	l := newTestLeveled()
	cat := fakeCatalog{categories: []models.Category{catalogOf("food", 8), catalogOf("animals", 8)}}

	items := l.BuildSession(cat, fakeRecords{})

	require.Len(t, items, 10)
	seen := map[models.WordKey]bool{}
	for _, item := range items {
		assert.Equal(t, models.ProvenanceNew, item.Provenance)
		assert.Equal(t, 0, item.MasteryLevel)
		assert.False(t, seen[item.Key()], "duplicate %v", item.Key())
		seen[item.Key()] = true
	}
}

func TestBuildSession_DueFirstThenTopUp(t *testing.T) {
	l := newTestLeveled()
	food := catalogOf("food", 23)
	cat := fakeCatalog{categories: []models.Category{food}}

	records := fakeRecords{"food": {
		food.Words[0].Spanish: {MasteryLevel: 3, LastPracticed: daysAgo(10)},
		food.Words[1].Spanish: {MasteryLevel: 0, LastPracticed: daysAgo(1)},
		food.Words[2].Spanish: {MasteryLevel: 1, LastPracticed: daysAgo(2)},
	}}

	items := l.BuildSession(cat, records)

	require.Len(t, items, 10)
	var due, fresh int
	for _, item := range items {
		switch item.Provenance {
		case models.ProvenanceDue:
			due++
		case models.ProvenanceNew:
			fresh++
			_, attempted := records["food"][item.Word.Spanish]
			assert.False(t, attempted)
		}
	}
	assert.Equal(t, 3, due)
	assert.Equal(t, 7, fresh)
}

func TestBuildSession_NotYetDueExcluded(t *testing.T) {
	l := newTestLeveled()
	food := catalogOf("food", 2)
	cat := fakeCatalog{categories: []models.Category{food}}

	records := fakeRecords{"food": {
		food.Words[0].Spanish: {MasteryLevel: 5, LastPracticed: daysAgo(1)},
	}}

	items := l.BuildSession(cat, records)

	require.Len(t, items, 1)
	assert.Equal(t, food.Words[1].Spanish, items[0].Word.Spanish)
	assert.Equal(t, models.ProvenanceNew, items[0].Provenance)
}

func TestBuildSession_TruncatesDueToTarget(t *testing.T) {
	l := newTestLeveled()
	food := catalogOf("food", 15)
	cat := fakeCatalog{categories: []models.Category{food}}

	words := map[string]models.MasteryRecord{}
	for _, w := range food.Words {
		words[w.Spanish] = models.MasteryRecord{MasteryLevel: 1, LastPracticed: daysAgo(5)}
	}

	items := l.BuildSession(cat, fakeRecords{"food": words})

	require.Len(t, items, 10)
	for _, item := range items {
		assert.Equal(t, models.ProvenanceDue, item.Provenance)
		assert.Equal(t, 1, item.MasteryLevel)
	}
}

func TestBuildSession_SkipsStaleRecords(t *testing.T) {
	l := newTestLeveled()
	cat := fakeCatalog{categories: []models.Category{catalogOf("food", 2)}}

	records := fakeRecords{
		"removed": {"fantasma": {MasteryLevel: 0, LastPracticed: daysAgo(3)}},
		"food":    {"no-longer-here": {MasteryLevel: 0, LastPracticed: daysAgo(3)}},
	}

	items := l.BuildSession(cat, records)

	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "food", item.Category)
		assert.Equal(t, models.ProvenanceNew, item.Provenance)
	}
}

func TestBuildSession_EmptyCatalog(t *testing.T) {
	l := newTestLeveled()

	items := l.BuildSession(fakeCatalog{}, fakeRecords{})

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestBuildSession_DuplicateCatalogWordsAppearOnce(t *testing.T) {
	l := newTestLeveled()
	cat := fakeCatalog{categories: []models.Category{{
		Name: "food",
		Words: []models.Word{
			{Spanish: "pan", English: "bread"},
			{Spanish: "pan", English: "loaf"},
		},
	}}}

	items := l.BuildSession(cat, fakeRecords{})

	require.Len(t, items, 1)
	assert.Equal(t, "bread", items[0].Word.English)
}

func TestDueItems_RepeatedCategoryListedOnce(t *testing.T) {
	l := newTestLeveled()
	food := models.Category{Name: "food", Words: []models.Word{{Spanish: "pan", English: "bread"}}}
	cat := fakeCatalog{categories: []models.Category{food, food}}
	records := mastery.Records{"food": {"pan": {MasteryLevel: 2}}}

	due := l.DueItems(cat, records)
	require.Len(t, due, 1)
	assert.Equal(t, models.WordKey{Category: "food", Spanish: "pan"}, due[0].Key())

	assert.Empty(t, NewItems(cat, records))
	assert.Len(t, NewItems(cat, mastery.Records{}), 1)
}

func TestBuildSessionOfSize_UsesExplicitTarget(t *testing.T) {
	l := newTestLeveled()
	cat := fakeCatalog{categories: []models.Category{catalogOf("food", 12)}}

	assert.Len(t, l.BuildSessionOfSize(cat, fakeRecords{}, 4), 4)
	assert.Empty(t, l.BuildSessionOfSize(cat, fakeRecords{}, 0))
}
