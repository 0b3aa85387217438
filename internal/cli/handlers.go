package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/esbot/internal/mastery"
	"github.com/example/esbot/internal/quiz"
	"github.com/example/esbot/internal/session"
	"github.com/example/esbot/pkg/models"
)

const defaultQuizQuestions = 5

// chooseCategory lists the catalog categories. ok is false when the learner
// returns to the main menu.
func (a *App) chooseCategory(title string) (models.Category, bool, error) {
	categories := a.catalog.Categories()

	a.ui.Header(title)
	if len(categories) == 0 {
		a.ui.Warning("The vocabulary is empty. Import words first.")
		return models.Category{}, false, a.ui.Pause("Press Enter to return to menu...")
	}

	a.ui.Println("Choose a category:")
	for i, cat := range categories {
		a.ui.MenuOption(i+1, fmt.Sprintf("%s (%d words)", cat.DisplayName, len(cat.Words)))
	}
	a.ui.MenuOption(len(categories)+1, "Return to Main Menu")

	choice, err := a.ui.Choose("\nEnter your choice: ", len(categories)+1)
	if err != nil || choice == len(categories)+1 {
		return models.Category{}, false, err
	}
	return categories[choice-1], true, nil
}

func (a *App) handleLearnVocabulary(_ context.Context) error {
	cat, ok, err := a.chooseCategory("LEARN VOCABULARY")
	if err != nil || !ok {
		return err
	}

	a.ui.Header(strings.ToUpper(cat.DisplayName))
	for i, w := range cat.Words {
		a.ui.Println(fmt.Sprintf("Word %d: %s - %s", i+1, w.Spanish, w.English))
		if w.PronunciationTip != "" {
			a.ui.Println("Pronunciation:", w.PronunciationTip)
		}
		if w.HasExample() {
			a.ui.Println("Example:", w.Example)
			a.ui.Println("Translation:", w.ExampleTranslation)
		}
		a.ui.Println("Mastery:", a.ui.Mastery(a.store.MasteryOf(cat.Name, w.Spanish)))
		a.ui.Println(strings.Repeat("-", 50))

		if i < len(cat.Words)-1 {
			answer, err := a.ui.Prompt("\nPress Enter to see the next word or 'q' to stop: ")
			if err != nil {
				return err
			}
			if strings.EqualFold(answer, "q") {
				break
			}
		}
	}
	return a.ui.Pause("Press Enter to return to menu...")
}

func (a *App) handleSpacedRepetition(ctx context.Context) error {
	items := a.scheduler.BuildSessionOfSize(a.catalog, a.store, a.sessionSize)
	if len(items) == 0 {
		a.ui.Header("SPACED REPETITION")
		a.ui.Println("No words available for review.")
		return a.ui.Pause("Press Enter to return to menu...")
	}

	presenter := NewFlashcardPresenter(a.ui, a.rnd, "SPACED REPETITION FLASHCARD")
	runner := session.NewRunner(a.store, presenter, a.profile, a.logger)
	summary, err := runner.Run(ctx, items)
	if err != nil {
		a.logger.Error("Review session failed", "error", err)
		a.ui.Error(fmt.Sprintf("The session stopped: %v", err))
	}

	a.ui.Header("SPACED REPETITION SESSION COMPLETE")
	a.showSummary(summary)
	if summary.Shown > 0 {
		if summary.Unsaved > 0 {
			a.ui.Warning(fmt.Sprintf("%d answers could not be saved.", summary.Unsaved))
		} else {
			a.ui.Success("\nYour progress has been saved!")
		}
		a.ui.Println("Total flashcards practiced:", a.profile.Statistics().FlashcardsPracticed)
	}
	return a.ui.Pause("Press Enter to return to menu...")
}

// viewOnly answers cards without changing mastery
type viewOnly struct {
	store *mastery.Store
}

func (v viewOnly) ApplyOutcome(_ context.Context, category, word string, _ bool) (models.MasteryRecord, error) {
	rec, _ := v.store.Record(category, word)
	return rec, nil
}

func (a *App) handleCategoryFlashcards(ctx context.Context) error {
	cat, ok, err := a.chooseCategory("FLASHCARDS")
	if err != nil || !ok {
		return err
	}

	items := make([]models.ReviewItem, 0, len(cat.Words))
	for _, w := range cat.Words {
		provenance := models.ProvenanceDue
		if _, seen := a.store.Record(cat.Name, w.Spanish); !seen {
			provenance = models.ProvenanceNew
		}
		items = append(items, models.ReviewItem{
			Word:            w,
			Category:        cat.Name,
			CategoryDisplay: cat.DisplayName,
			MasteryLevel:    a.store.MasteryOf(cat.Name, w.Spanish),
			Provenance:      provenance,
		})
	}
	a.rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	presenter := NewFlashcardPresenter(a.ui, a.rnd, "FLASHCARD: "+strings.ToUpper(cat.DisplayName))
	summary, err := session.NewRunner(viewOnly{store: a.store}, presenter, nil, a.logger).Run(ctx, items)
	if err != nil {
		return err
	}

	a.ui.Header("FLASHCARD SESSION COMPLETE")
	a.showSummary(summary)
	return a.ui.Pause("Press Enter to return to menu...")
}

func (a *App) showSummary(summary session.Summary) {
	a.ui.Println(fmt.Sprintf("You reviewed %d cards in this session.", summary.Shown))
	if summary.Shown > 0 {
		a.ui.Println(fmt.Sprintf("Known: %d  Not yet: %d", summary.Correct, summary.Incorrect))
	}
}

func (a *App) handleQuiz(ctx context.Context) error {
	cat, ok, err := a.chooseCategory("VOCABULARY QUIZ")
	if err != nil || !ok {
		return err
	}

	available := a.quiz.Available(cat)
	if available == 0 {
		a.ui.Warning("This category has no words yet.")
		return a.ui.Pause("Press Enter to return to menu...")
	}

	count := min(defaultQuizQuestions, available)
	answer, err := a.ui.Prompt(fmt.Sprintf("\nHow many questions would you like? (1-%d, default: %d): ", available, count))
	if err != nil {
		return err
	}
	if n, convErr := strconv.Atoi(answer); convErr == nil {
		count = n
	}

	a.ui.Println("\nTranslation direction:")
	a.ui.MenuOption(1, "Spanish to English")
	a.ui.MenuOption(2, "English to Spanish")
	a.ui.MenuOption(3, "Fill in the blank")
	choice, err := a.ui.Choose("Your choice: ", 3)
	if err != nil {
		return err
	}
	direction := []quiz.Direction{quiz.SpanishToEnglish, quiz.EnglishToSpanish, quiz.Context}[choice-1]

	questions, err := a.quiz.Create(cat, count, direction)
	if err != nil {
		return err
	}

	score := 0
	for i, q := range questions {
		a.ui.Header(fmt.Sprintf("QUESTION %d/%d", i+1, len(questions)))
		a.ui.Println(q.Prompt)
		if q.ContextSentence != "" {
			a.ui.Println()
			a.ui.Highlight(q.ContextSentence)
			a.ui.Println(fmt.Sprintf("(%s)", q.Word.ExampleTranslation))
		}
		a.ui.Println()
		for j, option := range q.Options {
			a.ui.MenuOption(j+1, option)
		}

		picked, err := a.ui.Choose(fmt.Sprintf("\nYour answer (1-%d): ", len(q.Options)), len(q.Options))
		if err != nil {
			return err
		}
		if q.IsCorrect(picked - 1) {
			score++
			a.ui.Success("\n✓ Correct! ¡Muy bien!")
		} else {
			a.ui.Error(fmt.Sprintf("\n✗ Incorrect. The correct answer is: %s", q.Answer()))
		}
		if q.Word.HasExample() && q.Direction != quiz.Context {
			a.ui.Println("\nExample:", q.Word.Example)
			a.ui.Println("Translation:", q.Word.ExampleTranslation)
		}
		if err := a.ui.Pause("Press Enter to continue..."); err != nil {
			return err
		}
	}

	result, err := a.profile.RecordQuiz(ctx, cat.Name, score, len(questions))
	a.ui.Header("QUIZ RESULTS")
	a.ui.Println(fmt.Sprintf("Your score: %d/%d (%.1f%%)", score, len(questions), result.Percentage))
	a.ui.Highlight("\n" + quiz.Grade(score, len(questions)))
	if err != nil {
		a.logger.Warn("Failed to save quiz result", "error", err)
		a.ui.Warning("Your quiz result may not be saved.")
	}
	return a.ui.Pause("Press Enter to return to menu...")
}

func (a *App) handleWordOfDay(ctx context.Context) error {
	entry, ok, err := a.profile.WordOfDay(ctx, a.catalog)
	a.ui.Header("WORD OF THE DAY")
	if !ok {
		a.ui.Warning("The vocabulary is empty. Import words first.")
		return a.ui.Pause("Press Enter to return to menu...")
	}
	if err != nil {
		a.ui.Warning("Today's word may not be saved.")
	}

	a.ui.Highlight(fmt.Sprintf("%s - %s", entry.Spanish, entry.English))
	a.ui.Println("Category:", entry.CategoryDisplay)
	if entry.PronunciationTip != "" {
		a.ui.Println("Pronunciation:", entry.PronunciationTip)
	}
	if entry.HasExample() {
		a.ui.Println("\nExample:", entry.Example)
		a.ui.Println("Translation:", entry.ExampleTranslation)
	}
	a.ui.Println("Mastery:", a.ui.Mastery(a.store.MasteryOf(entry.Category, entry.Spanish)))
	return a.ui.Pause("Press Enter to return to menu...")
}

func (a *App) handleAddCustomWord(ctx context.Context) error {
	a.ui.Header("ADD CUSTOM WORD")

	spanish, err := a.ui.Prompt("Spanish word: ")
	if err != nil {
		return err
	}
	english, err := a.ui.Prompt("English translation: ")
	if err != nil {
		return err
	}
	example, err := a.ui.Prompt("Example sentence (optional): ")
	if err != nil {
		return err
	}
	var exampleTranslation string
	if example != "" {
		if exampleTranslation, err = a.ui.Prompt("Example translation (optional): "); err != nil {
			return err
		}
	}
	category, err := a.ui.Prompt("Category (default: custom): ")
	if err != nil {
		return err
	}

	word := models.Word{
		Spanish:            spanish,
		English:            english,
		Example:            example,
		ExampleTranslation: exampleTranslation,
	}
	if err := a.catalog.AddWord(category, word); err != nil {
		a.logger.Warn("Failed to add custom word", "spanish", spanish, "error", err)
		a.ui.Error(fmt.Sprintf("Could not add the word: %v", err))
		return a.ui.Pause("Press Enter to return to menu...")
	}
	if _, err := a.profile.AddCustomWord(ctx, category, word); err != nil {
		a.logger.Warn("Failed to store custom word in profile", "error", err)
		a.ui.Warning("The word was added to the vocabulary but not to your profile.")
	}

	a.ui.Success(fmt.Sprintf("Added %q - %q.", spanish, english))
	return a.ui.Pause("Press Enter to return to menu...")
}

func (a *App) handleStatistics(_ context.Context) error {
	p := a.profile.Profile()
	stats := a.profile.Statistics()

	a.ui.Header(fmt.Sprintf("STATISTICS - %s", p.Name))
	a.ui.Println("Member since:", p.CreatedAt.Format("2006-01-02"))
	a.ui.Println("Quizzes taken:", stats.QuizzesTaken)
	a.ui.Println("Total quiz score:", stats.TotalScore)
	a.ui.Println("Flashcards practiced:", stats.FlashcardsPracticed)
	a.ui.Println("Conversations practiced:", stats.ConversationsPracticed)
	a.ui.Println("Custom words:", len(a.profile.CustomWords()))

	a.ui.Section("Mastery")
	counts := a.store.LevelCounts()
	for level := models.MaxMasteryLevel; level >= models.MinMasteryLevel; level-- {
		a.ui.Println(fmt.Sprintf("%s  %d words", a.ui.Mastery(level), counts[level]))
	}
	a.ui.Println(fmt.Sprintf("Words attempted: %d of %d", a.store.Records().Count(), a.catalog.WordCount()))

	if mastered := a.catalog.WordsByMastery(a.store.Records(), models.MaxMasteryLevel); len(mastered) > 0 {
		a.ui.Section("Mastered words")
		for _, e := range mastered {
			a.ui.Println(fmt.Sprintf("%s - %s (%s)", e.Spanish, e.English, e.CategoryDisplay))
		}
	}

	a.ui.Section("Vocabulary by difficulty")
	for _, d := range []models.Difficulty{
		models.DifficultyBeginner,
		models.DifficultyIntermediate,
		models.DifficultyAdvanced,
		models.DifficultyCustom,
	} {
		a.ui.Println(fmt.Sprintf("%-14s %d words", d.Label()+":", len(a.catalog.WordsByDifficulty(d))))
	}

	if history := stats.QuizHistory; len(history) > 0 {
		a.ui.Section("Recent quizzes")
		start := max(0, len(history)-5)
		for _, r := range history[start:] {
			a.ui.Println(fmt.Sprintf("%s  %-20s %d/%d (%.1f%%)",
				r.Date.Format("2006-01-02"), r.Category, r.Score, r.MaxScore, r.Percentage))
		}
	}
	return a.ui.Pause("Press Enter to return to menu...")
}
