package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/esbot/internal/mastery"
	"github.com/example/esbot/pkg/models"
)

var (
	// ErrCategoryNotFound is returned when a category id is unknown
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryExists is returned when adding a category whose id is taken
	ErrCategoryExists = errors.New("category already exists")
	// ErrWordNotFound is returned when updating a word that does not exist
	ErrWordNotFound = errors.New("word not found")
	// ErrDuplicateWord is returned when a category already holds the Spanish word
	ErrDuplicateWord = errors.New("word already exists in category")
)

// Entry is a word together with the category it belongs to
type Entry struct {
	models.Word
	Category        string `json:"category_name"`
	CategoryDisplay string `json:"category_display"`
}

// WordPatch holds the fields UpdateWord may change. Nil fields are left as is.
type WordPatch struct {
	English            *string
	Example            *string
	ExampleTranslation *string
	Difficulty         *models.Difficulty
	PronunciationTip   *string
}

// Catalog is the vocabulary content backed by a JSON file
type Catalog struct {
	path      string
	vocab     models.Vocabulary
	validator *structValidator
	logger    *slog.Logger
}

// New creates an in-memory catalog that saves to path
func New(path string, vocab models.Vocabulary, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	if vocab.Categories == nil {
		vocab.Categories = []models.Category{}
	}
	return &Catalog{
		path:      path,
		vocab:     vocab,
		validator: newStructValidator(),
		logger:    logger,
	}
}

// Load reads and validates the vocabulary file. A missing file is created
// with an empty category list.
func Load(path string, logger *slog.Logger) (*Catalog, error) {
	c := New(path, models.Vocabulary{}, logger)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		c.logger.Info("Vocabulary file not found, creating an empty one", "path", path)
		if err := c.Save(); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var vocab models.Vocabulary
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file %s: %w", path, err)
	}
	if err := c.validator.check(vocab); err != nil {
		return nil, err
	}
	if vocab.Categories == nil {
		vocab.Categories = []models.Category{}
	}
	c.vocab = vocab

	c.logger.Debug("Vocabulary loaded", "path", path, "categories", len(vocab.Categories))
	return c, nil
}

// Save writes the vocabulary back to its file
func (c *Catalog) Save() error {
	if c.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create vocabulary directory: %w", err)
	}
	data, err := json.MarshalIndent(c.vocab, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write vocabulary file: %w", err)
	}
	return nil
}

// Categories returns every category in file order
func (c *Catalog) Categories() []models.Category {
	return c.vocab.Categories
}

// Category looks a category up by its id
func (c *Catalog) Category(name string) (*models.Category, bool) {
	for i := range c.vocab.Categories {
		if c.vocab.Categories[i].Name == name {
			return &c.vocab.Categories[i], true
		}
	}
	return nil, false
}

// CategoryByDisplayName looks a category up by its display name
func (c *Catalog) CategoryByDisplayName(display string) (*models.Category, bool) {
	for i := range c.vocab.Categories {
		if c.vocab.Categories[i].DisplayName == display {
			return &c.vocab.Categories[i], true
		}
	}
	return nil, false
}

// WordCount returns the number of words across all categories
func (c *Catalog) WordCount() int {
	n := 0
	for _, cat := range c.vocab.Categories {
		n += len(cat.Words)
	}
	return n
}

// AddCategory creates an empty category and saves the catalog.
// An empty display name defaults to the capitalized id.
func (c *Catalog) AddCategory(name, display string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Fields: []FieldError{{Field: "name", Message: "name is a required field"}}}
	}
	if _, ok := c.Category(name); ok {
		return nil, fmt.Errorf("%w: %s", ErrCategoryExists, name)
	}

	c.appendCategory(name, display)
	if err := c.Save(); err != nil {
		return nil, err
	}
	cat, _ := c.Category(name)
	return cat, nil
}

func (c *Catalog) appendCategory(name, display string) {
	if display == "" {
		display = capitalize(name)
	}
	c.vocab.Categories = append(c.vocab.Categories, models.Category{
		Name:        name,
		DisplayName: display,
		Words:       []models.Word{},
	})
}

// AddWord appends a word to a category, creating the category when needed,
// and saves the catalog. An empty difficulty becomes custom.
func (c *Catalog) AddWord(category string, word models.Word) error {
	if category == "" {
		category = string(models.DifficultyCustom)
	}
	if word.Difficulty == "" {
		word.Difficulty = models.DifficultyCustom
	}
	word.Spanish = strings.TrimSpace(word.Spanish)
	word.English = strings.TrimSpace(word.English)
	if err := c.validator.check(word); err != nil {
		return err
	}

	if _, ok := c.Category(category); !ok {
		c.appendCategory(category, "")
		c.logger.Info("Category created", "category", category)
	}
	cat, _ := c.Category(category)
	if _, exists := cat.Find(word.Spanish); exists {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateWord, category, word.Spanish)
	}
	cat.Words = append(cat.Words, word)

	return c.Save()
}

// UpdateWord changes the fields set in patch. The Spanish string is the
// word's identity and never changes.
func (c *Catalog) UpdateWord(category, spanish string, patch WordPatch) error {
	cat, ok := c.Category(category)
	if !ok {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}

	for i := range cat.Words {
		if cat.Words[i].Spanish != spanish {
			continue
		}
		w := cat.Words[i]
		if patch.English != nil {
			w.English = *patch.English
		}
		if patch.Example != nil {
			w.Example = *patch.Example
		}
		if patch.ExampleTranslation != nil {
			w.ExampleTranslation = *patch.ExampleTranslation
		}
		if patch.Difficulty != nil {
			w.Difficulty = *patch.Difficulty
		}
		if patch.PronunciationTip != nil {
			w.PronunciationTip = *patch.PronunciationTip
		}
		// A rejected patch leaves the stored word unchanged
		if err := c.validator.check(w); err != nil {
			return err
		}
		cat.Words[i] = w
		return c.Save()
	}

	return fmt.Errorf("%w: %s/%s", ErrWordNotFound, category, spanish)
}

// WordsByDifficulty returns every word tagged with difficulty d
func (c *Catalog) WordsByDifficulty(d models.Difficulty) []Entry {
	out := make([]Entry, 0)
	for _, cat := range c.vocab.Categories {
		for _, w := range cat.Words {
			if w.Difficulty == d {
				out = append(out, entryOf(cat, w))
			}
		}
	}
	return out
}

// WordsByMastery returns the catalog words whose record sits at level.
// Records for words no longer in the catalog are skipped.
func (c *Catalog) WordsByMastery(records mastery.Records, level int) []Entry {
	out := make([]Entry, 0)
	for _, cat := range c.vocab.Categories {
		words, ok := records[cat.Name]
		if !ok {
			continue
		}
		for _, w := range cat.Words {
			rec, ok := words[w.Spanish]
			if !ok || rec.MasteryLevel != level {
				continue
			}
			out = append(out, entryOf(cat, w))
		}
	}
	return out
}

// RandomWord picks a word uniformly across all categories
func (c *Catalog) RandomWord(rng *rand.Rand) (Entry, bool) {
	total := c.WordCount()
	if total == 0 {
		return Entry{}, false
	}

	n := rng.Intn(total)
	for _, cat := range c.vocab.Categories {
		if n < len(cat.Words) {
			return entryOf(cat, cat.Words[n]), true
		}
		n -= len(cat.Words)
	}
	return Entry{}, false
}

func entryOf(cat models.Category, w models.Word) Entry {
	return Entry{Word: w, Category: cat.Name, CategoryDisplay: cat.DisplayName}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
