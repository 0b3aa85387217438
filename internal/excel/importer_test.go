package excel

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/esbot/internal/catalog"
	"github.com/example/esbot/pkg/models"
)

const sampleCSV = `spanish,english,pronunciation,example,example_translation
Comida,,
pan,bread,[pahn],El pan es bueno.,The bread is good.
agua,water
,missing
Animales,,
perro (perros),dog
gato
pan,bread again
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load(filepath.Join(t.TempDir(), "vocabulary.json"), testLogger())
	require.NoError(t, err)
	return c
}

func TestImportWords_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	c := newTestCatalog(t)
	im := NewImporter(c, testLogger())
	config := DefaultImportConfig()
	config.FilePath = path

	result, err := im.ImportWords(config)
	require.NoError(t, err)
	assert.Equal(t, 6, result.TotalProcessed)
	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.CategoriesCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 5")

	food, ok := c.Category("comida")
	require.True(t, ok)
	assert.Equal(t, "Comida", food.DisplayName)
	pan, ok := food.Find("pan")
	require.True(t, ok)
	assert.Equal(t, "pahn", pan.PronunciationTip)
	assert.Equal(t, "El pan es bueno.", pan.Example)
	assert.Equal(t, models.DifficultyCustom, pan.Difficulty)

	animals, ok := c.Category("animales")
	require.True(t, ok)
	_, ok = animals.Find("perro")
	assert.True(t, ok, "parenthesised details are stripped")
	animalPan, ok := animals.Find("pan")
	require.True(t, ok)
	assert.Equal(t, "bread again", animalPan.English)

	again, err := im.ImportWords(config)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
	assert.Equal(t, 4, again.Updated)
	assert.Equal(t, 0, again.CategoriesCreated)
	assert.Equal(t, 4, c.WordCount())
}

func TestImportWords_Excel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.xlsx")

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Spanish", "English", "Category", "Difficulty", "Pronunciation", "Example", "Translation"},
		{"hola", "hello", "Greetings", "beginner", "OH-lah", "¡Hola, Ana!", "Hi, Ana!"},
		{"adiós", "goodbye", "Greetings", "4"},
		{"", "nothing", "Greetings"},
		{"casa", "house", "", "3"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	c := newTestCatalog(t)
	config := DefaultImportConfig()
	config.FilePath = path

	result, err := NewImporter(c, testLogger()).ImportWords(config)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalProcessed)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 2, result.CategoriesCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Row 4")

	greetings, ok := c.Category("greetings")
	require.True(t, ok)
	assert.Equal(t, "Greetings", greetings.DisplayName)
	hola, ok := greetings.Find("hola")
	require.True(t, ok)
	assert.Equal(t, models.DifficultyBeginner, hola.Difficulty)
	assert.Equal(t, "Hi, Ana!", hola.ExampleTranslation)
	adios, ok := greetings.Find("adiós")
	require.True(t, ok)
	assert.Equal(t, models.DifficultyAdvanced, adios.Difficulty)

	general, ok := c.Category(DefaultCategory)
	require.True(t, ok)
	casa, ok := general.Find("casa")
	require.True(t, ok)
	assert.Equal(t, models.DifficultyIntermediate, casa.Difficulty)
}

func TestImportWords_MissingFile(t *testing.T) {
	config := DefaultImportConfig()
	config.FilePath = filepath.Join(t.TempDir(), "absent.xlsx")
	_, err := NewImporter(newTestCatalog(t), testLogger()).ImportWords(config)
	assert.Error(t, err)
}

func TestParseDifficulty(t *testing.T) {
	assert.Equal(t, models.DifficultyBeginner, parseDifficulty("1"))
	assert.Equal(t, models.DifficultyIntermediate, parseDifficulty("3"))
	assert.Equal(t, models.DifficultyAdvanced, parseDifficulty("5"))
	assert.Equal(t, models.DifficultyAdvanced, parseDifficulty(" Advanced "))
	assert.Equal(t, models.Difficulty(""), parseDifficulty("hard"))
	assert.Equal(t, models.Difficulty(""), parseDifficulty(""))
}

func TestColumnToIndex(t *testing.T) {
	assert.Equal(t, 0, columnToIndex("A"))
	assert.Equal(t, 6, columnToIndex("g"))
	assert.Equal(t, 26, columnToIndex("AA"))
	assert.Equal(t, -1, columnToIndex("1"))
}
