package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageJSON     = "json"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config is the root application configuration.
type Config struct {
	App      AppConfig      `yaml:"app"`
	Storage  StorageConfig  `yaml:"storage"`
	Practice PracticeConfig `yaml:"practice"`
	Log      LogConfig      `yaml:"log"`
}

// AppConfig holds general settings.
type AppConfig struct {
	Env     string `yaml:"env"      env:"APP_ENV"        env-default:"dev"`
	DataDir string `yaml:"data_dir" env:"ESBOT_DATA_DIR" env-default:"data"`
	NoColor bool   `yaml:"no_color" env:"ESBOT_NO_COLOR"`
	Profile string `yaml:"profile"  env:"ESBOT_PROFILE"`
}

// StorageConfig selects where vocabulary and profiles live.
type StorageConfig struct {
	VocabularyFile string `yaml:"vocabulary_file" env:"ESBOT_VOCABULARY_FILE"`
	ProfilesDir    string `yaml:"profiles_dir"    env:"ESBOT_PROFILES_DIR"`
	Driver         string `yaml:"driver"          env:"ESBOT_STORAGE"      env-default:"json"`
	DSN            string `yaml:"dsn"             env:"ESBOT_DATABASE_DSN"`
}

// PracticeConfig holds session sizes.
type PracticeConfig struct {
	SessionSize      int `yaml:"session_size"       env:"ESBOT_SESSION_SIZE"       env-default:"10"`
	QuizMaxQuestions int `yaml:"quiz_max_questions" env:"ESBOT_QUIZ_MAX_QUESTIONS" env-default:"10"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"ESBOT_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"ESBOT_LOG_FORMAT" env-default:"text"`
	// File receives log output; "-" means stderr. Empty means <data_dir>/esbot.log.
	File string `yaml:"file" env:"ESBOT_LOG_FILE"`
}

// Load reads configuration from .env, an optional YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// The YAML file path comes from ESBOT_CONFIG; without it only ENV + defaults are used.
func Load() (*Config, error) {
	// A missing .env file is fine
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("ESBOT_CONFIG"); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config: file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// applyDerived fills paths that default to locations under the data dir
func (c *Config) applyDerived() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.VocabularyFile == "" {
		c.Storage.VocabularyFile = filepath.Join(c.App.DataDir, "vocabulary.json")
	}
	if c.Storage.ProfilesDir == "" {
		c.Storage.ProfilesDir = filepath.Join(c.App.DataDir, "user_profiles")
	}
	if c.Storage.Driver == StorageSQLite && c.Storage.DSN == "" {
		c.Storage.DSN = filepath.Join(c.App.DataDir, "esbot.db")
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(c.App.DataDir, "esbot.log")
	}
}

// Validate performs business-rule validation on the loaded configuration.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageJSON, StorageSQLite:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver must be one of json, sqlite, postgres (got %q)", c.Storage.Driver)
	}

	if c.Practice.SessionSize <= 0 {
		return fmt.Errorf("practice.session_size must be > 0 (got %d)", c.Practice.SessionSize)
	}
	if c.Practice.QuizMaxQuestions <= 0 {
		return fmt.Errorf("practice.quiz_max_questions must be > 0 (got %d)", c.Practice.QuizMaxQuestions)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}
