package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/example/esbot/internal/session"
	"github.com/example/esbot/pkg/models"
)

var _ session.Presenter = (*FlashcardPresenter)(nil)

// FlashcardPresenter shows review items as two-sided cards on the terminal
type FlashcardPresenter struct {
	ui    *UI
	rnd   *rand.Rand
	title string
}

// NewFlashcardPresenter creates a presenter with the given card title
func NewFlashcardPresenter(ui *UI, rnd *rand.Rand, title string) *FlashcardPresenter {
	return &FlashcardPresenter{ui: ui, rnd: rnd, title: title}
}

// Present shows one card and asks whether the learner knew it.
// Typing q instead of pressing Enter leaves the session.
func (p *FlashcardPresenter) Present(_ context.Context, item models.ReviewItem, index, total int) (bool, error) {
	w := item.Word
	ui := p.ui

	ui.Header(fmt.Sprintf("%s %d/%d", p.title, index, total))
	ui.Println("Category:", item.CategoryDisplay)
	if w.Difficulty != "" {
		ui.Println("Difficulty:", w.Difficulty.Label())
	}
	ui.Println("Mastery:", ui.Mastery(item.MasteryLevel))
	if item.Provenance == models.ProvenanceNew {
		ui.Highlight("New word!")
	}

	var (
		answer string
		err    error
	)
	// Direction is picked per card
	if p.rnd.Intn(2) == 0 {
		ui.Println()
		ui.Println("Spanish word:", w.Spanish)
		if w.PronunciationTip != "" {
			ui.Println("Pronunciation:", w.PronunciationTip)
		}
		answer, err = ui.Prompt("\nThink of the English translation, then press Enter...")
		if err = quitOn(answer, err); err != nil {
			return false, err
		}
		ui.Println()
		ui.Println("English translation:", w.English)
	} else {
		ui.Println()
		ui.Println("English word:", w.English)
		answer, err = ui.Prompt("\nThink of the Spanish translation, then press Enter...")
		if err = quitOn(answer, err); err != nil {
			return false, err
		}
		ui.Println()
		ui.Println("Spanish translation:", w.Spanish)
		if w.PronunciationTip != "" {
			ui.Println("Pronunciation:", w.PronunciationTip)
		}
	}

	if w.HasExample() {
		ui.Println()
		ui.Println("Example:", w.Example)
		ui.Println("Translation:", w.ExampleTranslation)
	}

	correct, err := ui.Confirm("\nDid you get it right? (y/n): ")
	if errors.Is(err, ErrInputClosed) {
		return false, session.ErrQuit
	}
	return correct, err
}

// Continue asks whether to show the next card
func (p *FlashcardPresenter) Continue(_ context.Context) (bool, error) {
	answer, err := p.ui.Prompt("\nPress Enter for next word or 'q' to quit: ")
	if err = quitOn(answer, err); err != nil {
		if errors.Is(err, session.ErrQuit) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Warn prints a non-fatal problem
func (p *FlashcardPresenter) Warn(msg string) {
	p.ui.Warning(msg)
}

func quitOn(answer string, err error) error {
	if errors.Is(err, ErrInputClosed) {
		return session.ErrQuit
	}
	if err != nil {
		return err
	}
	if strings.EqualFold(answer, "q") {
		return session.ErrQuit
	}
	return nil
}
