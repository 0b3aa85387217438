package models

import "strings"

// Difficulty is the optional difficulty tag of a vocabulary word
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyCustom       Difficulty = "custom"
)

// Label returns the difficulty with its first letter capitalized
func (d Difficulty) Label() string {
	if d == "" {
		return ""
	}
	s := string(d)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Word represents a Spanish word to be learned.
// Within a category the Spanish string is the word's identity.
type Word struct {
	Spanish            string     `json:"spanish" validate:"required"`
	English            string     `json:"english" validate:"required"`
	Example            string     `json:"example,omitempty"`
	ExampleTranslation string     `json:"example_translation,omitempty"`
	Difficulty         Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=beginner intermediate advanced custom"`
	PronunciationTip   string     `json:"pronunciation_tip,omitempty"`
}

// HasExample reports whether the word carries an example sentence
func (w Word) HasExample() bool {
	return w.Example != ""
}
