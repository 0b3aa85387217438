package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/esbot/internal/catalog"
	"github.com/example/esbot/pkg/models"
)

// DefaultCategory receives rows that appear before any category header
const DefaultCategory = "general"

// errSkipRow marks rows that are silently ignored
var errSkipRow = errors.New("skipping row")

// Target is the vocabulary the importer writes into
type Target interface {
	Category(name string) (*models.Category, bool)
	CategoryByDisplayName(display string) (*models.Category, bool)
	AddCategory(name, display string) (*models.Category, error)
	AddWord(category string, word models.Word) error
	UpdateWord(category, spanish string, patch catalog.WordPatch) error
}

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath                 string // Path to the Excel or CSV file
	SpanishColumn            string // Column with the Spanish word
	EnglishColumn            string // Column with the English translation
	CategoryColumn           string // Column with the category
	DifficultyColumn         string // Column with the difficulty
	PronunciationColumn      string // Column with the pronunciation tip
	ExampleColumn            string // Column with the example sentence
	ExampleTranslationColumn string // Column with the example translation
	SheetName                string // Name of the sheet to import
	StartRow                 int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SpanishColumn:            "A",
		EnglishColumn:            "B",
		CategoryColumn:           "C",
		DifficultyColumn:         "D",
		PronunciationColumn:      "E",
		ExampleColumn:            "F",
		ExampleTranslationColumn: "G",
		SheetName:                "Sheet1",
		StartRow:                 2, // By default, start from the second row (skip header)
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed    int
	CategoriesCreated int
	Created           int
	Updated           int
	Skipped           int
	Errors            []string
}

// Importer loads vocabulary from spreadsheets into a Target
type Importer struct {
	target Target
	logger *slog.Logger
}

// NewImporter creates an importer writing into target
func NewImporter(target Target, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{target: target, logger: logger}
}

// ImportWords imports words from an Excel or CSV file
func (im *Importer) ImportWords(config ImportConfig) (*ImportResult, error) {
	var (
		result *ImportResult
		err    error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		result, err = im.importFromCSV(config)
	} else {
		result, err = im.importFromExcel(config)
	}
	if err != nil {
		return nil, err
	}

	im.logger.Info("Vocabulary import finished",
		"file", config.FilePath,
		"processed", result.TotalProcessed,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"categories_created", result.CategoriesCreated,
		"errors", len(result.Errors))
	return result, nil
}

// importFromExcel imports words from an Excel file
func (im *Importer) importFromExcel(config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		// Skip header rows
		if i < config.StartRow-1 {
			continue
		}
		if isBlank(row) {
			continue
		}

		result.TotalProcessed++
		if err := im.processRow(row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}

	return result, nil
}

// importFromCSV imports words from a CSV file. A row with only its first
// field set (e.g. "Comida,,") starts a new category.
// Data rows are: spanish, english, pronunciation, example, example translation.
func (im *Importer) importFromCSV(config ImportConfig) (*ImportResult, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	result := &ImportResult{Errors: make([]string, 0)}
	rowNum := 0
	currentCategory := DefaultCategory

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}

		rowNum++
		if rowNum < config.StartRow || isBlank(row) {
			continue
		}

		if isCategoryHeader(row) {
			currentCategory = strings.Trim(strings.TrimSpace(row[0]), "\"")
			continue
		}

		result.TotalProcessed++
		if err := im.processCSVRow(row, currentCategory, result); err != nil {
			if errors.Is(err, errSkipRow) {
				result.Skipped++
				continue
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}

	return result, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func isCategoryHeader(row []string) bool {
	if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
		return false
	}
	for _, cell := range row[1:] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// processRow processes a single row from Excel
func (im *Importer) processRow(row []string, config ImportConfig, result *ImportResult) error {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	word := models.Word{
		Spanish:            cell(config.SpanishColumn),
		English:            cell(config.EnglishColumn),
		Example:            cell(config.ExampleColumn),
		ExampleTranslation: cell(config.ExampleTranslationColumn),
		PronunciationTip:   cell(config.PronunciationColumn),
		Difficulty:         parseDifficulty(cell(config.DifficultyColumn)),
	}
	category := cell(config.CategoryColumn)
	if category == "" {
		category = DefaultCategory
	}

	return im.processWordData(word, category, result)
}

// processCSVRow processes a single row from CSV
func (im *Importer) processCSVRow(row []string, category string, result *ImportResult) error {
	if len(row) < 2 {
		return errSkipRow
	}

	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	word := models.Word{
		Spanish:            field(0),
		English:            field(1),
		PronunciationTip:   strings.Trim(field(2), "[]"),
		Example:            field(3),
		ExampleTranslation: field(4),
	}
	return im.processWordData(word, category, result)
}

// cleanWord removes trailing details in parentheses, e.g. "ir (fui, ido)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// resolveCategory finds a category by id or display name, creating it when missing
func (im *Importer) resolveCategory(name string, result *ImportResult) (string, error) {
	if cat, ok := im.target.Category(name); ok {
		return cat.Name, nil
	}
	if cat, ok := im.target.CategoryByDisplayName(name); ok {
		return cat.Name, nil
	}

	id := categoryID(name)
	if cat, ok := im.target.Category(id); ok {
		return cat.Name, nil
	}

	display := name
	if display == id {
		display = ""
	}
	cat, err := im.target.AddCategory(id, display)
	if err != nil {
		return "", fmt.Errorf("failed to create category: %w", err)
	}
	result.CategoriesCreated++
	return cat.Name, nil
}

// processWordData handles the common logic for processing word data from any source
func (im *Importer) processWordData(word models.Word, categoryName string, result *ImportResult) error {
	word.Spanish = cleanWord(word.Spanish)
	word.English = cleanWord(word.English)

	if word.Spanish == "" {
		return fmt.Errorf("spanish word cannot be empty")
	}
	if word.English == "" {
		return fmt.Errorf("english translation cannot be empty")
	}

	category, err := im.resolveCategory(categoryName, result)
	if err != nil {
		return err
	}

	cat, _ := im.target.Category(category)
	if cat != nil {
		if _, exists := cat.Find(word.Spanish); exists {
			patch := catalog.WordPatch{English: &word.English}
			if word.Example != "" {
				patch.Example = &word.Example
				patch.ExampleTranslation = &word.ExampleTranslation
			}
			if word.PronunciationTip != "" {
				patch.PronunciationTip = &word.PronunciationTip
			}
			if word.Difficulty != "" {
				patch.Difficulty = &word.Difficulty
			}
			if err := im.target.UpdateWord(category, word.Spanish, patch); err != nil {
				return fmt.Errorf("failed to update word: %w", err)
			}
			result.Updated++
			return nil
		}
	}

	if err := im.target.AddWord(category, word); err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	result.Created++
	return nil
}

// categoryID derives a category id from a display name
func categoryID(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// parseDifficulty accepts a difficulty name or a 1-5 rating
func parseDifficulty(s string) models.Difficulty {
	s = strings.ToLower(strings.TrimSpace(s))
	switch models.Difficulty(s) {
	case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced, models.DifficultyCustom:
		return models.Difficulty(s)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return ""
	}
	switch {
	case n <= 2:
		return models.DifficultyBeginner
	case n == 3:
		return models.DifficultyIntermediate
	default:
		return models.DifficultyAdvanced
	}
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		if column[i] < 'A' || column[i] > 'Z' {
			return -1
		}
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
