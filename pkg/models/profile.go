package models

import "time"

// Profile is a learner's persisted state
type Profile struct {
	ID               string                              `json:"-" db:"id"`
	Name             string                              `json:"name" db:"name"`
	CreatedAt        time.Time                           `json:"created_at" db:"created_at"`
	LastLogin        time.Time                           `json:"last_login" db:"last_login"`
	Statistics       Statistics                          `json:"statistics"`
	MasteredWords    map[string]map[string]MasteryRecord `json:"mastered_words"`
	CustomVocabulary []CustomWord                        `json:"custom_vocabulary"`
	LastWordOfDay    *string                             `json:"last_word_of_day"` // YYYY-MM-DD
	WordOfDayHistory []WordOfDayEntry                    `json:"word_of_day_history"`
}

// Statistics aggregates a learner's practice counters
type Statistics struct {
	QuizzesTaken           int          `json:"quizzes_taken" db:"quizzes_taken"`
	FlashcardsPracticed    int          `json:"flashcards_practiced" db:"flashcards_practiced"`
	ConversationsPracticed int          `json:"conversations_practiced" db:"conversations_practiced"`
	TotalScore             int          `json:"total_score" db:"total_score"`
	QuizHistory            []QuizResult `json:"quiz_history"`
}

// QuizResult records one completed quiz
type QuizResult struct {
	Date       time.Time `json:"date" db:"date"`
	Category   string    `json:"category" db:"category"`
	Score      int       `json:"score" db:"score"`
	MaxScore   int       `json:"max_score" db:"max_score"`
	Percentage float64   `json:"percentage" db:"percentage"`
}

// CustomWord is a word a learner added to their own profile
type CustomWord struct {
	Word
	Category string    `json:"category" db:"category"`
	AddedOn  time.Time `json:"added_on" db:"added_on"`
}

// WordOfDayEntry is a word of the day shown on a given date
type WordOfDayEntry struct {
	Word
	Category        string `json:"category_name"`
	CategoryDisplay string `json:"category_display"`
	Date            string `json:"date"` // YYYY-MM-DD
}

// NewProfile creates an empty profile
func NewProfile(id, name string, now time.Time) *Profile {
	return &Profile{
		ID:               id,
		Name:             name,
		CreatedAt:        now,
		LastLogin:        now,
		Statistics:       Statistics{QuizHistory: []QuizResult{}},
		MasteredWords:    map[string]map[string]MasteryRecord{},
		CustomVocabulary: []CustomWord{},
		WordOfDayHistory: []WordOfDayEntry{},
	}
}
