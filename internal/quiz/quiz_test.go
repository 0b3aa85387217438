package quiz

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/esbot/pkg/models"
)

func foodCategory() models.Category {
	return models.Category{
		Name:        "food",
		DisplayName: "Food",
		Words: []models.Word{
			{Spanish: "pan", English: "bread", Example: "El pan está caliente.", ExampleTranslation: "The bread is hot."},
			{Spanish: "agua", English: "water"},
			{Spanish: "queso", English: "cheese"},
			{Spanish: "leche", English: "milk"},
			{Spanish: "arroz", English: "rice"},
		},
	}
}

func newTestGenerator(max int) *Generator {
	return NewGenerator(max).WithRand(rand.New(rand.NewSource(3)))
}

func TestCreate_SamplesWithoutReplacement(t *testing.T) {
	g := newTestGenerator(10)

	questions, err := g.Create(foodCategory(), 5, SpanishToEnglish)
	require.NoError(t, err)
	require.Len(t, questions, 5)

	seen := map[string]bool{}
	for _, q := range questions {
		assert.False(t, seen[q.Word.Spanish])
		seen[q.Word.Spanish] = true

		assert.Equal(t, q.Word.Spanish, q.Prompt)
		require.Len(t, q.Options, OptionCount)
		assert.Equal(t, q.Word.English, q.Answer())
		assert.True(t, q.IsCorrect(q.CorrectIndex))

		distinct := map[string]bool{}
		for _, opt := range q.Options {
			distinct[opt] = true
		}
		assert.Len(t, distinct, OptionCount, "options must be distinct: %v", q.Options)
	}
}

func TestCreate_ClampsCount(t *testing.T) {
	g := newTestGenerator(3)

	questions, err := g.Create(foodCategory(), 50, EnglishToSpanish)
	require.NoError(t, err)
	assert.Len(t, questions, 3)

	questions, err = g.Create(foodCategory(), 0, EnglishToSpanish)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
	assert.Equal(t, questions[0].Word.Spanish, questions[0].Answer())
}

func TestCreate_PlaceholdersForSmallCategory(t *testing.T) {
	g := newTestGenerator(10)
	small := models.Category{Name: "tiny", Words: []models.Word{
		{Spanish: "sí", English: "yes"},
		{Spanish: "no", English: "no"},
	}}

	questions, err := g.Create(small, 2, SpanishToEnglish)
	require.NoError(t, err)
	for _, q := range questions {
		require.Len(t, q.Options, OptionCount)
		assert.Contains(t, q.Options, q.Word.English)
		placeholderCount := 0
		for _, opt := range q.Options {
			for _, p := range placeholders[SpanishToEnglish] {
				if opt == p {
					placeholderCount++
				}
			}
		}
		assert.Equal(t, 2, placeholderCount)
	}
}

func TestCreate_EmptyCategory(t *testing.T) {
	_, err := newTestGenerator(10).Create(models.Category{Name: "empty"}, 5, SpanishToEnglish)
	assert.ErrorIs(t, err, ErrEmptyCategory)
}

func TestCreate_ContextQuestion(t *testing.T) {
	g := newTestGenerator(10)
	cat := models.Category{Name: "food", Words: foodCategory().Words[:1]}

	questions, err := g.Create(cat, 1, Context)
	require.NoError(t, err)
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, Context, q.Direction)
	assert.Equal(t, "El _______ está caliente.", q.ContextSentence)
	assert.Equal(t, "pan", q.Answer())
}

func TestCreate_ContextFallsBackWithoutExample(t *testing.T) {
	g := newTestGenerator(10)
	cat := models.Category{Name: "food", Words: []models.Word{{Spanish: "agua", English: "water"}}}

	questions, err := g.Create(cat, 1, Context)
	require.NoError(t, err)
	assert.Equal(t, EnglishToSpanish, questions[0].Direction)
	assert.Equal(t, "water", questions[0].Prompt)
}

func TestReplaceWordWithBlank(t *testing.T) {
	assert.Equal(t, "_______ es grande.", replaceWordWithBlank("Casa es grande.", "casa"))
	assert.Equal(t, "Hola amigo _______", replaceWordWithBlank("Hola amigo", "perro"))
	assert.Equal(t, "¿Cuánto _______?", replaceWordWithBlank("¿Cuánto cuesta?", "cuesta"))
}

func TestGrade(t *testing.T) {
	tests := []struct {
		score, total int
		want         string
	}{
		{5, 5, "¡Perfecto! You got all questions right!"},
		{4, 5, "¡Muy bien! Great job!"},
		{3, 5, "¡Bien! Good effort!"},
		{2, 5, "Keep practicing! You'll improve with time."},
		{0, 0, "Keep practicing! You'll improve with time."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score, tt.total), "%d/%d", tt.score, tt.total)
	}
}
