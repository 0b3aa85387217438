package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/example/esbot/internal/catalog"
	"github.com/example/esbot/internal/mastery"
	"github.com/example/esbot/internal/profile"
	"github.com/example/esbot/internal/quiz"
	"github.com/example/esbot/internal/spaced_repetition"
)

// MenuItem is one entry of a numbered menu
type MenuItem struct {
	Text   string
	Action func(ctx context.Context) error
}

// errExit leaves the main menu
var errExit = errors.New("exit")

// Options configures an App
type Options struct {
	Catalog     *catalog.Catalog
	Profiles    profile.Repository
	ProfileName string // Profile to load on start; empty asks the learner
	SessionSize int
	QuizSize    int
	Now         func() time.Time
	Rand        *rand.Rand
	Logger      *slog.Logger
}

// App is the interactive trainer. It serves one learner profile at a time.
type App struct {
	ui        *UI
	catalog   *catalog.Catalog
	profiles  profile.Repository
	scheduler *spaced_repetition.Leveled
	quiz      *quiz.Generator

	profileName string
	sessionSize int
	now         func() time.Time
	rnd         *rand.Rand
	logger      *slog.Logger

	profile *profile.Service
	store   *mastery.Store
}

// NewApp creates the interactive trainer
func NewApp(ui *UI, opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(opts.Now().UnixNano()))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SessionSize <= 0 {
		opts.SessionSize = spaced_repetition.DefaultSessionSize
	}

	return &App{
		ui:          ui,
		catalog:     opts.Catalog,
		profiles:    opts.Profiles,
		scheduler:   spaced_repetition.NewLeveled().WithClock(opts.Now).WithRand(opts.Rand),
		quiz:        quiz.NewGenerator(opts.QuizSize).WithRand(opts.Rand),
		profileName: opts.ProfileName,
		sessionSize: opts.SessionSize,
		now:         opts.Now,
		rnd:         opts.Rand,
		logger:      opts.Logger,
	}
}

// Run shows the welcome screen, selects a profile and serves the main menu
// until the learner exits or the input ends.
func (a *App) Run(ctx context.Context) error {
	a.showWelcome()

	if err := a.selectProfile(ctx); err != nil {
		return a.quietExit(err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return a.quietExit(err)
		}
		err := a.showMainMenu(ctx)
		if errors.Is(err, errExit) {
			a.ui.Success("\nGracias for using the Spanish trainer! ¡Adiós!")
			return nil
		}
		if err != nil {
			return a.quietExit(err)
		}
	}
}

// quietExit treats the end of input and an interrupt as a normal exit
func (a *App) quietExit(err error) error {
	if errors.Is(err, ErrInputClosed) || errors.Is(err, context.Canceled) {
		a.ui.Println()
		a.ui.Println("¡Adiós!")
		return nil
	}
	return err
}

func (a *App) showWelcome() {
	a.ui.Header("WELCOME TO THE SPANISH VOCABULARY TRAINER")
	a.ui.Println("\nThis program will help you learn Spanish through:")
	a.ui.Println("  • Vocabulary flashcards with spaced repetition")
	a.ui.Println("  • Interactive quizzes")
	a.ui.Println("  • A word of the day")
}

// MainMenuItems returns the entries of the main menu
func (a *App) MainMenuItems() []MenuItem {
	return []MenuItem{
		{Text: "Learn Vocabulary", Action: a.handleLearnVocabulary},
		{Text: "Spaced Repetition Flashcards", Action: a.handleSpacedRepetition},
		{Text: "Category Flashcards", Action: a.handleCategoryFlashcards},
		{Text: "Take a Quiz", Action: a.handleQuiz},
		{Text: "Word of the Day", Action: a.handleWordOfDay},
		{Text: "Add Custom Word", Action: a.handleAddCustomWord},
		{Text: "View Statistics", Action: a.handleStatistics},
		{Text: "Switch Profile", Action: a.selectProfile},
		{Text: "Exit", Action: func(context.Context) error { return errExit }},
	}
}

func (a *App) showMainMenu(ctx context.Context) error {
	items := a.MainMenuItems()

	a.ui.Header(fmt.Sprintf("MAIN MENU - %s", a.profile.Profile().Name))
	for i, item := range items {
		a.ui.MenuOption(i+1, item.Text)
	}

	choice, err := a.ui.Choose(fmt.Sprintf("\nEnter your choice (1-%d): ", len(items)), len(items))
	if err != nil {
		return err
	}
	return items[choice-1].Action(ctx)
}

// selectProfile loads the configured profile or lets the learner pick or create one
func (a *App) selectProfile(ctx context.Context) error {
	if a.profileName != "" && a.profile == nil {
		p, err := a.profiles.Load(ctx, a.profileName)
		if errors.Is(err, profile.ErrProfileNotFound) {
			p, err = a.profiles.Create(ctx, a.profileName)
		}
		if err != nil {
			return fmt.Errorf("failed to open profile %q: %w", a.profileName, err)
		}
		a.useProfile(p.ID, profile.NewService(a.profiles, p, a.logger))
		return nil
	}

	for {
		infos, err := a.profiles.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list profiles: %w", err)
		}

		a.ui.Section("Choose a profile")
		for i, info := range infos {
			a.ui.MenuOption(i+1, info.Name)
		}
		a.ui.MenuOption(len(infos)+1, "Create a new profile")

		choice, err := a.ui.Choose("\nEnter your choice: ", len(infos)+1)
		if err != nil {
			return err
		}

		if choice <= len(infos) {
			p, err := a.profiles.Load(ctx, infos[choice-1].ID)
			if err != nil {
				a.logger.Error("Failed to load profile", "profile", infos[choice-1].ID, "error", err)
				a.ui.Error(fmt.Sprintf("Could not load profile: %v", err))
				continue
			}
			a.useProfile(p.ID, profile.NewService(a.profiles, p, a.logger))
			a.ui.Success(fmt.Sprintf("Welcome back, %s!", p.Name))
			return nil
		}

		name, err := a.ui.Prompt("Enter your name: ")
		if err != nil {
			return err
		}
		if name == "" {
			a.ui.Error("Name cannot be empty.")
			continue
		}
		p, err := a.profiles.Create(ctx, name)
		if errors.Is(err, profile.ErrProfileExists) {
			a.ui.Error(fmt.Sprintf("A profile named %q already exists.", name))
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		a.useProfile(p.ID, profile.NewService(a.profiles, p, a.logger))
		a.ui.Success(fmt.Sprintf("Profile created. ¡Bienvenido, %s!", p.Name))
		return nil
	}
}

func (a *App) useProfile(id string, svc *profile.Service) {
	a.profile = svc.WithClock(a.now).WithRand(a.rnd)
	a.store = a.profile.NewMasteryStore()
	a.logger.Info("Profile selected", "profile", id, "records", a.store.Records().Count())
}
