package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/esbot/internal/mastery"
	"github.com/example/esbot/pkg/models"
)

// ErrQuit is returned by a Presenter when the learner leaves the session
var ErrQuit = errors.New("session quit")

// OutcomeApplier receives one outcome per shown item
type OutcomeApplier interface {
	ApplyOutcome(ctx context.Context, category, word string, correct bool) (models.MasteryRecord, error)
}

// Presenter shows review items to the learner and collects answers
type Presenter interface {
	// Present shows the item and returns whether the learner knew it.
	// Returning ErrQuit ends the session without an outcome for the item.
	Present(ctx context.Context, item models.ReviewItem, index, total int) (bool, error)
	// Continue asks whether to move on to the next item
	Continue(ctx context.Context) (bool, error)
	// Warn tells the learner about a non-fatal problem
	Warn(msg string)
}

// PracticeRecorder is notified of how many cards a session reviewed
type PracticeRecorder interface {
	AddFlashcardPractice(ctx context.Context, n int) error
}

// Summary describes a finished session
type Summary struct {
	Shown        int
	Correct      int
	Incorrect    int
	Unsaved      int
	StoppedEarly bool
}

// Runner drives a review session
type Runner struct {
	applier   OutcomeApplier
	presenter Presenter
	practice  PracticeRecorder
	logger    *slog.Logger
}

// NewRunner creates a session runner. practice may be nil.
func NewRunner(applier OutcomeApplier, presenter Presenter, practice PracticeRecorder, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		applier:   applier,
		presenter: presenter,
		practice:  practice,
		logger:    logger,
	}
}

// Run shows the items in order and applies each answer exactly once.
// Items after an early stop are left untouched.
func (r *Runner) Run(ctx context.Context, items []models.ReviewItem) (Summary, error) {
	var summary Summary

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			summary.StoppedEarly = true
			return r.finish(ctx, summary, err)
		}

		correct, err := r.presenter.Present(ctx, item, i+1, len(items))
		if errors.Is(err, ErrQuit) {
			summary.StoppedEarly = true
			break
		}
		if err != nil {
			summary.StoppedEarly = true
			return r.finish(ctx, summary, fmt.Errorf("present item %d: %w", i+1, err))
		}

		summary.Shown++
		if correct {
			summary.Correct++
		} else {
			summary.Incorrect++
		}

		if _, err := r.applier.ApplyOutcome(ctx, item.Category, item.Word.Spanish, correct); err != nil {
			if !errors.Is(err, mastery.ErrNotPersisted) {
				summary.StoppedEarly = true
				return r.finish(ctx, summary, fmt.Errorf("apply outcome: %w", err))
			}
			summary.Unsaved++
			r.presenter.Warn("Progress for this card may not be saved.")
		}

		if i == len(items)-1 {
			break
		}
		next, err := r.presenter.Continue(ctx)
		if errors.Is(err, ErrQuit) || (err == nil && !next) {
			summary.StoppedEarly = true
			break
		}
		if err != nil {
			summary.StoppedEarly = true
			return r.finish(ctx, summary, fmt.Errorf("continue prompt: %w", err))
		}
	}

	return r.finish(ctx, summary, nil)
}

func (r *Runner) finish(ctx context.Context, summary Summary, runErr error) (Summary, error) {
	r.logger.Info("Review session finished",
		"shown", summary.Shown,
		"correct", summary.Correct,
		"incorrect", summary.Incorrect,
		"unsaved", summary.Unsaved,
		"stopped_early", summary.StoppedEarly)

	if r.practice == nil || summary.Shown == 0 {
		return summary, runErr
	}
	if err := r.practice.AddFlashcardPractice(context.WithoutCancel(ctx), summary.Shown); err != nil {
		r.logger.Warn("Failed to record flashcard practice", "error", err)
		if runErr == nil {
			r.presenter.Warn("Practice statistics may not be saved.")
		}
	}
	return summary, runErr
}
