package catalog

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/esbot/internal/mastery"
	"github.com/example/esbot/pkg/models"
)

const sampleVocabulary = `{
  "categories": [
    {
      "name": "food",
      "display_name": "Food & Drinks",
      "words": [
        {"spanish": "pan", "english": "bread", "difficulty": "beginner", "pronunciation_tip": "pahn"},
        {"spanish": "agua", "english": "water", "example": "Quiero agua.", "example_translation": "I want water."}
      ]
    },
    {
      "name": "animals",
      "display_name": "Animals",
      "words": [
        {"spanish": "perro", "english": "dog", "difficulty": "beginner"},
        {"spanish": "pan", "english": "panda (slang)", "difficulty": "advanced"}
      ]
    }
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeVocabulary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocabulary.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeVocabulary(t, sampleVocabulary), testLogger())
	require.NoError(t, err)

	require.Len(t, c.Categories(), 2)
	assert.Equal(t, 4, c.WordCount())

	food, ok := c.Category("food")
	require.True(t, ok)
	assert.Equal(t, "Food & Drinks", food.DisplayName)

	w, ok := food.Find("pan")
	require.True(t, ok)
	assert.Equal(t, "bread", w.English)
	assert.Equal(t, "pahn", w.PronunciationTip)

	agua, ok := food.Find("agua")
	require.True(t, ok)
	assert.Empty(t, agua.Difficulty)
	assert.True(t, agua.HasExample())

	// Same Spanish string in another category is a distinct word
	animals, ok := c.CategoryByDisplayName("Animals")
	require.True(t, ok)
	pan, ok := animals.Find("pan")
	require.True(t, ok)
	assert.Equal(t, "panda (slang)", pan.English)
}

func TestLoad_MissingFileCreatesEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "vocabulary.json")

	c, err := Load(path, testLogger())
	require.NoError(t, err)
	assert.Empty(t, c.Categories())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories": []}`, string(data))
}

func TestLoad_InvalidJSON(t *testing.T) {
	_, err := Load(writeVocabulary(t, `{"categories": [`), testLogger())
	require.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	content := `{"categories": [{"name": "food", "display_name": "Food", "words": [
		{"spanish": "pan", "english": ""},
		{"spanish": "sal", "english": "salt", "difficulty": "expert"}
	]}]}`

	_, err := Load(writeVocabulary(t, content), testLogger())
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
	assert.Contains(t, verr.Fields[0].Field, "english")
	assert.Contains(t, verr.Fields[1].Field, "difficulty")
}

func TestAddCategory(t *testing.T) {
	c, err := Load(writeVocabulary(t, sampleVocabulary), testLogger())
	require.NoError(t, err)

	cat, err := c.AddCategory("travel", "")
	require.NoError(t, err)
	assert.Equal(t, "Travel", cat.DisplayName)
	assert.Empty(t, cat.Words)

	_, err = c.AddCategory("food", "Food again")
	assert.ErrorIs(t, err, ErrCategoryExists)

	reloaded, err := Load(c.path, testLogger())
	require.NoError(t, err)
	_, ok := reloaded.Category("travel")
	assert.True(t, ok)
}

func TestAddWord(t *testing.T) {
	c, err := Load(writeVocabulary(t, sampleVocabulary), testLogger())
	require.NoError(t, err)

	require.NoError(t, c.AddWord("colors", models.Word{Spanish: " rojo ", English: "red"}))

	colors, ok := c.Category("colors")
	require.True(t, ok)
	assert.Equal(t, "Colors", colors.DisplayName)
	w, ok := colors.Find("rojo")
	require.True(t, ok)
	assert.Equal(t, models.DifficultyCustom, w.Difficulty)

	require.NoError(t, c.AddWord("", models.Word{Spanish: "hola", English: "hello"}))
	custom, ok := c.Category("custom")
	require.True(t, ok)
	assert.Len(t, custom.Words, 1)

	assert.ErrorIs(t, c.AddWord("food", models.Word{Spanish: "pan", English: "bun"}), ErrDuplicateWord)

	err = c.AddWord("food", models.Word{Spanish: "queso"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestUpdateWord(t *testing.T) {
	c, err := Load(writeVocabulary(t, sampleVocabulary), testLogger())
	require.NoError(t, err)

	english := "loaf of bread"
	difficulty := models.DifficultyIntermediate
	require.NoError(t, c.UpdateWord("food", "pan", WordPatch{English: &english, Difficulty: &difficulty}))

	food, _ := c.Category("food")
	w, ok := food.Find("pan")
	require.True(t, ok)
	assert.Equal(t, "loaf of bread", w.English)
	assert.Equal(t, models.DifficultyIntermediate, w.Difficulty)
	assert.Equal(t, "pahn", w.PronunciationTip)

	assert.ErrorIs(t, c.UpdateWord("food", "queso", WordPatch{}), ErrWordNotFound)
	assert.ErrorIs(t, c.UpdateWord("drinks", "pan", WordPatch{}), ErrCategoryNotFound)
}

func TestUpdateWord_InvalidPatchKeepsWord(t *testing.T) {
	path := writeVocabulary(t, sampleVocabulary)
	c, err := Load(path, testLogger())
	require.NoError(t, err)

	english := "roll"
	bad := models.Difficulty("expert")
	err = c.UpdateWord("food", "pan", WordPatch{English: &english, Difficulty: &bad})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	food, _ := c.Category("food")
	w, ok := food.Find("pan")
	require.True(t, ok)
	assert.Equal(t, "bread", w.English)
	assert.Equal(t, models.DifficultyBeginner, w.Difficulty)

	require.NoError(t, c.AddWord("food", models.Word{Spanish: "queso", English: "cheese"}))
	reloaded, err := Load(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.WordCount())
}

func TestWordsByDifficulty(t *testing.T) {
	c, err := Load(writeVocabulary(t, sampleVocabulary), testLogger())
	require.NoError(t, err)

	beginner := c.WordsByDifficulty(models.DifficultyBeginner)
	require.Len(t, beginner, 2)
	assert.Equal(t, "pan", beginner[0].Spanish)
	assert.Equal(t, "food", beginner[0].Category)
	assert.Equal(t, "perro", beginner[1].Spanish)
	assert.Equal(t, "Animals", beginner[1].CategoryDisplay)
}

func TestWordsByMastery(t *testing.T) {
	c, err := Load(writeVocabulary(t, sampleVocabulary), testLogger())
	require.NoError(t, err)

	records := mastery.Records{
		"food":    {"pan": {MasteryLevel: 3}, "agua": {MasteryLevel: 1}, "borrado": {MasteryLevel: 3}},
		"animals": {"perro": {MasteryLevel: 3}},
		"removed": {"x": {MasteryLevel: 3}},
	}

	entries := c.WordsByMastery(records, 3)

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Category+"/"+e.Spanish)
	}
	assert.ElementsMatch(t, []string{"food/pan", "animals/perro"}, keys)
}

func TestWordsByMastery_CatalogOrder(t *testing.T) {
	c, err := Load(writeVocabulary(t, sampleVocabulary), testLogger())
	require.NoError(t, err)

	records := mastery.Records{
		"food":    {"agua": {MasteryLevel: 5}, "pan": {MasteryLevel: 5}},
		"animals": {"pan": {MasteryLevel: 5}, "perro": {MasteryLevel: 5}},
	}

	for i := 0; i < 10; i++ {
		entries := c.WordsByMastery(records, 5)
		keys := make([]string, 0, len(entries))
		for _, e := range entries {
			keys = append(keys, e.Category+"/"+e.Spanish)
		}
		assert.Equal(t, []string{"food/pan", "food/agua", "animals/perro", "animals/pan"}, keys)
	}
}

func TestRandomWord(t *testing.T) {
	c, err := Load(writeVocabulary(t, sampleVocabulary), testLogger())
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		e, ok := c.RandomWord(rng)
		require.True(t, ok)
		cat, ok := c.Category(e.Category)
		require.True(t, ok)
		_, ok = cat.Find(e.Spanish)
		assert.True(t, ok)
	}

	empty := New("", models.Vocabulary{}, testLogger())
	_, ok := empty.RandomWord(rng)
	assert.False(t, ok)
}
