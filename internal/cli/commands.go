package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/esbot/internal/app"
	"github.com/example/esbot/internal/catalog"
	"github.com/example/esbot/internal/config"
	"github.com/example/esbot/internal/database"
	"github.com/example/esbot/internal/excel"
	"github.com/example/esbot/internal/profile"
	"github.com/example/esbot/internal/spaced_repetition"
)

// env holds what every command needs once configuration is loaded
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  *catalog.Catalog
	profiles profile.Repository
	closers  []io.Closer
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			e.logger.Warn("Failed to close resource", "error", err)
		}
	}
}

// NewRootCommand builds the esbot command tree
func NewRootCommand() *cobra.Command {
	var (
		profileName string
		noColor     bool
	)

	setup := func(cmd *cobra.Command) (*env, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("profile") {
			cfg.App.Profile = profileName
		}
		if noColor {
			cfg.App.NoColor = true
		}
		return openEnv(cfg)
	}

	root := &cobra.Command{
		Use:           "esbot",
		Short:         "Spanish vocabulary trainer with spaced repetition",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ui := NewUI(cmd.InOrStdin(), cmd.OutOrStdout(), e.cfg.App.NoColor)
			a := NewApp(ui, Options{
				Catalog:     e.catalog,
				Profiles:    e.profiles,
				ProfileName: e.cfg.App.Profile,
				SessionSize: e.cfg.Practice.SessionSize,
				QuizSize:    e.cfg.Practice.QuizMaxQuestions,
				Logger:      e.logger,
			})
			return a.Run(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (overrides ESBOT_PROFILE)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newImportCommand(setup),
		newDueCommand(setup),
		newProfilesCommand(setup),
	)
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func newImportCommand(setup func(*cobra.Command) (*env, error)) *cobra.Command {
	importCfg := excel.DefaultImportConfig()

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import vocabulary from an Excel (.xlsx) or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			importCfg.FilePath = args[0]
			result, err := excel.NewImporter(e.catalog, e.logger).ImportWords(importCfg)
			if err != nil {
				return err
			}

			ui := NewUI(cmd.InOrStdin(), cmd.OutOrStdout(), e.cfg.App.NoColor)
			ui.Section("Import finished")
			ui.Println("Rows processed:", result.TotalProcessed)
			ui.Println("Categories created:", result.CategoriesCreated)
			ui.Success(fmt.Sprintf("Words created: %d", result.Created))
			ui.Info(fmt.Sprintf("Words updated: %d", result.Updated))
			ui.Println("Rows skipped:", result.Skipped)
			if len(result.Errors) > 0 {
				ui.Error(fmt.Sprintf("Errors: %d", len(result.Errors)))
				for _, msg := range result.Errors {
					ui.Error("  " + msg)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&importCfg.SheetName, "sheet", importCfg.SheetName, "sheet to read (xlsx only, empty means the first sheet)")
	f.IntVar(&importCfg.StartRow, "start-row", importCfg.StartRow, "first row to import (1-based)")
	f.StringVar(&importCfg.SpanishColumn, "spanish-col", importCfg.SpanishColumn, "column with the Spanish word")
	f.StringVar(&importCfg.EnglishColumn, "english-col", importCfg.EnglishColumn, "column with the English translation")
	f.StringVar(&importCfg.CategoryColumn, "category-col", importCfg.CategoryColumn, "column with the category")
	f.StringVar(&importCfg.DifficultyColumn, "difficulty-col", importCfg.DifficultyColumn, "column with the difficulty")
	f.StringVar(&importCfg.PronunciationColumn, "pronunciation-col", importCfg.PronunciationColumn, "column with the pronunciation tip")
	f.StringVar(&importCfg.ExampleColumn, "example-col", importCfg.ExampleColumn, "column with the example sentence")
	f.StringVar(&importCfg.ExampleTranslationColumn, "example-translation-col", importCfg.ExampleTranslationColumn, "column with the example translation")
	return cmd
}

func newDueCommand(setup func(*cobra.Command) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "Show how many words are due for review today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if e.cfg.App.Profile == "" {
				return fmt.Errorf("a profile is required: use --profile or ESBOT_PROFILE")
			}
			p, err := e.profiles.Get(cmd.Context(), e.cfg.App.Profile)
			if err != nil {
				return err
			}
			records := profile.NewService(e.profiles, p, e.logger).MasteryRecords()

			scheduler := spaced_repetition.NewLeveled()
			due := scheduler.DueItems(e.catalog, records)
			fresh := spaced_repetition.NewItems(e.catalog, records)

			ui := NewUI(cmd.InOrStdin(), cmd.OutOrStdout(), e.cfg.App.NoColor)
			ui.Section(fmt.Sprintf("Review plan for %s (%s)", p.Name, scheduler.Today().Format("2006-01-02")))
			ui.Println("Due words:", len(due))
			ui.Println("New words:", len(fresh))
			ui.Println("Next session size:", min(e.cfg.Practice.SessionSize, len(due)+len(fresh)))
			return nil
		},
	}
}

func newProfilesCommand(setup func(*cobra.Command) (*env, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List learner profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			infos, err := e.profiles.List(cmd.Context())
			if err != nil {
				return err
			}
			ui := NewUI(cmd.InOrStdin(), cmd.OutOrStdout(), e.cfg.App.NoColor)
			if len(infos) == 0 {
				ui.Info("No profiles yet.")
				return nil
			}
			for _, info := range infos {
				ui.Println(fmt.Sprintf("%-20s %s", info.ID, info.Name))
			}
			return nil
		},
	}
}

// openEnv wires logging, the catalog and the profile store from cfg
func openEnv(cfg *config.Config) (*env, error) {
	logger, logCloser, err := app.NewLogger(cfg.Log, cfg.App.NoColor)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	e.catalog, err = catalog.Load(cfg.Storage.VocabularyFile, logger)
	if err != nil {
		e.Close()
		return nil, err
	}

	switch strings.ToLower(cfg.Storage.Driver) {
	case config.StorageJSON:
		e.profiles = profile.NewFileRepository(cfg.Storage.ProfilesDir, logger)
	case config.StorageSQLite, config.StoragePostgres:
		db, err := database.Open(cfg.Storage.Driver, cfg.Storage.DSN)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.closers = append(e.closers, db)
		e.profiles = database.NewProfileRepository(db, logger)
	default:
		e.Close()
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	logger.Debug("Environment ready",
		"env", cfg.App.Env,
		"storage", cfg.Storage.Driver,
		"vocabulary", cfg.Storage.VocabularyFile,
		"words", e.catalog.WordCount())
	return e, nil
}
