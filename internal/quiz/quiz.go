package quiz

import (
	"errors"
	"math/rand"
	"regexp"
	"time"

	"github.com/example/esbot/pkg/models"
)

// DefaultMaxQuestions caps the length of a quiz
const DefaultMaxQuestions = 10

// OptionCount is the number of answer choices per question
const OptionCount = 4

const blank = "_______"

// ErrEmptyCategory is returned when a quiz is requested for a category without words
var ErrEmptyCategory = errors.New("category has no words")

// Direction represents what the learner is asked to translate
type Direction string

const (
	// SpanishToEnglish shows the Spanish word and asks for the English one
	SpanishToEnglish Direction = "es_en"
	// EnglishToSpanish shows the English word and asks for the Spanish one
	EnglishToSpanish Direction = "en_es"
	// Context shows the example sentence with the Spanish word blanked out
	Context Direction = "context"
)

var placeholders = map[Direction][]string{
	SpanishToEnglish: {"apple", "house", "car", "book", "tree", "dog", "cat"},
	EnglishToSpanish: {"manzana", "casa", "coche", "libro", "árbol", "perro", "gato"},
	Context:          {"manzana", "casa", "coche", "libro", "árbol", "perro", "gato"},
}

// Question represents a single multiple choice question
type Question struct {
	Word            models.Word // The word being tested
	Direction       Direction
	Prompt          string   // Text shown to the learner
	ContextSentence string   // Example with a blank (context questions)
	Options         []string // Possible answers
	CorrectIndex    int      // Index of correct answer in options
}

// Answer returns the correct option
func (q Question) Answer() string {
	return q.Options[q.CorrectIndex]
}

// IsCorrect reports whether the option at index is the right one
func (q Question) IsCorrect(index int) bool {
	return index == q.CorrectIndex
}

// Generator builds quizzes from a category
type Generator struct {
	MaxQuestions int
	rnd          *rand.Rand
}

// NewGenerator creates a new quiz generator
func NewGenerator(maxQuestions int) *Generator {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	return &Generator{
		MaxQuestions: maxQuestions,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the random source
func (g *Generator) WithRand(rnd *rand.Rand) *Generator {
	g.rnd = rnd
	return g
}

// Available returns how many questions a quiz over category can have
func (g *Generator) Available(category models.Category) int {
	if len(category.Words) < g.MaxQuestions {
		return len(category.Words)
	}
	return g.MaxQuestions
}

// Create generates count questions sampled without replacement from the
// category. count is clamped to [1, Available].
func (g *Generator) Create(category models.Category, count int, direction Direction) ([]Question, error) {
	available := g.Available(category)
	if available == 0 {
		return nil, ErrEmptyCategory
	}
	if count < 1 {
		count = 1
	}
	if count > available {
		count = available
	}

	words := make([]models.Word, len(category.Words))
	copy(words, category.Words)
	g.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})
	words = words[:count]

	questions := make([]Question, 0, count)
	for _, word := range words {
		dir := direction
		// Words without an example sentence fall back to plain translation
		if dir == Context && !word.HasExample() {
			dir = EnglishToSpanish
		}

		question := Question{Word: word, Direction: dir}
		correct := answerFor(word, dir)

		switch dir {
		case SpanishToEnglish:
			question.Prompt = word.Spanish
		case EnglishToSpanish:
			question.Prompt = word.English
		case Context:
			question.ContextSentence = replaceWordWithBlank(word.Example, word.Spanish)
			question.Prompt = word.ExampleTranslation
		}

		allOptions := append(g.incorrectOptions(word, category.Words, dir, OptionCount-1), correct)
		correctIndex := len(allOptions) - 1
		g.rnd.Shuffle(len(allOptions), func(i, j int) {
			if i == correctIndex {
				correctIndex = j
			} else if j == correctIndex {
				correctIndex = i
			}
			allOptions[i], allOptions[j] = allOptions[j], allOptions[i]
		})

		question.Options = allOptions
		question.CorrectIndex = correctIndex
		questions = append(questions, question)
	}

	return questions, nil
}

func answerFor(w models.Word, dir Direction) string {
	if dir == SpanishToEnglish {
		return w.English
	}
	return w.Spanish
}

// incorrectOptions picks count distinct wrong answers from the other words of
// the category, topping up with placeholder words when there are too few
func (g *Generator) incorrectOptions(word models.Word, all []models.Word, dir Direction, count int) []string {
	correct := answerFor(word, dir)
	used := map[string]bool{correct: true}
	options := make([]string, 0, count)

	others := make([]models.Word, 0, len(all))
	for _, w := range all {
		if w.Spanish != word.Spanish {
			others = append(others, w)
		}
	}
	g.rnd.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	for _, w := range others {
		if len(options) == count {
			break
		}
		opt := answerFor(w, dir)
		if used[opt] {
			continue
		}
		used[opt] = true
		options = append(options, opt)
	}

	fillers := append([]string(nil), placeholders[dir]...)
	g.rnd.Shuffle(len(fillers), func(i, j int) {
		fillers[i], fillers[j] = fillers[j], fillers[i]
	})
	for _, opt := range fillers {
		if len(options) == count {
			break
		}
		if used[opt] {
			continue
		}
		used[opt] = true
		options = append(options, opt)
	}

	return options
}

// replaceWordWithBlank replaces the first case-insensitive occurrence of word
// in sentence with a blank. If the word is absent the blank is appended.
func replaceWordWithBlank(sentence, word string) string {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(word))
	if err != nil {
		return sentence + " " + blank
	}
	loc := re.FindStringIndex(sentence)
	if loc == nil {
		return sentence + " " + blank
	}
	return sentence[:loc[0]] + blank + sentence[loc[1]:]
}

// Grade returns the feedback message for a finished quiz
func Grade(score, total int) string {
	switch {
	case total <= 0:
		return "Keep practicing! You'll improve with time."
	case score == total:
		return "¡Perfecto! You got all questions right!"
	case float64(score) >= float64(total)*0.8:
		return "¡Muy bien! Great job!"
	case float64(score) >= float64(total)*0.6:
		return "¡Bien! Good effort!"
	default:
		return "Keep practicing! You'll improve with time."
	}
}
