package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/example/esbot/pkg/models"
)

var (
	// ErrProfileExists is returned by Create when the id is already taken
	ErrProfileExists = errors.New("profile already exists")
	// ErrProfileNotFound is returned by Load and Get for an unknown profile
	ErrProfileNotFound = errors.New("profile not found")
)

// Info identifies a stored profile
type Info struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Repository stores learner profiles
type Repository interface {
	Create(ctx context.Context, name string) (*models.Profile, error)
	Load(ctx context.Context, name string) (*models.Profile, error)
	Get(ctx context.Context, name string) (*models.Profile, error)
	List(ctx context.Context) ([]Info, error)
	Save(ctx context.Context, p *models.Profile) error
}

// IDFromName derives the profile id: lower case with spaces replaced by underscores
func IDFromName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// FileRepository keeps one JSON file per profile in a directory
type FileRepository struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// NewFileRepository creates a repository rooted at dir. The directory is
// created on first write.
func NewFileRepository(dir string, logger *slog.Logger) *FileRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRepository{dir: dir, now: time.Now, logger: logger}
}

// WithClock replaces the time source used for created_at and last_login
func (r *FileRepository) WithClock(now func() time.Time) *FileRepository {
	r.now = now
	return r
}

func (r *FileRepository) path(id string) string {
	return filepath.Join(r.dir, id+".json")
}

// Create writes a fresh profile
func (r *FileRepository) Create(ctx context.Context, name string) (*models.Profile, error) {
	id := IDFromName(name)
	if id == "" {
		return nil, fmt.Errorf("profile name must not be empty")
	}
	if _, err := os.Stat(r.path(id)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileExists, id)
	}

	p := models.NewProfile(id, strings.TrimSpace(name), r.now())
	if err := r.Save(ctx, p); err != nil {
		return nil, err
	}

	r.logger.Info("Profile created", "profile", id)
	return p, nil
}

// Load reads a profile by name or id and records the login time
func (r *FileRepository) Load(ctx context.Context, name string) (*models.Profile, error) {
	id := IDFromName(name)
	p, err := r.read(id)
	if err != nil {
		return nil, err
	}

	p.LastLogin = r.now()
	if err := r.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Get reads a profile by name or id without recording a login
func (r *FileRepository) Get(_ context.Context, name string) (*models.Profile, error) {
	return r.read(IDFromName(name))
}

func (r *FileRepository) read(id string) (*models.Profile, error) {
	data, err := os.ReadFile(r.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", id, err)
	}

	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", id, err)
	}
	p.ID = id
	Normalize(&p)
	return &p, nil
}

// List returns every readable profile sorted by id. Unreadable files are skipped.
func (r *FileRepository) List(_ context.Context) ([]Info, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	infos := make([]Info, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		p, err := r.read(id)
		if err != nil {
			r.logger.Warn("Skipping unreadable profile", "profile", id, "error", err)
			continue
		}
		name := p.Name
		if name == "" {
			name = id
		}
		infos = append(infos, Info{ID: id, Name: name})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Save writes the whole profile as indented JSON
func (r *FileRepository) Save(_ context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = IDFromName(p.Name)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create profiles directory: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", p.ID, err)
	}

	// Replace atomically
	tmp := r.path(p.ID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", p.ID, err)
	}
	if err := os.Rename(tmp, r.path(p.ID)); err != nil {
		return fmt.Errorf("failed to replace profile %s: %w", p.ID, err)
	}
	return nil
}

// Normalize fills nil collections left by older or hand-edited files
func Normalize(p *models.Profile) {
	if p.MasteredWords == nil {
		p.MasteredWords = map[string]map[string]models.MasteryRecord{}
	}
	if p.CustomVocabulary == nil {
		p.CustomVocabulary = []models.CustomWord{}
	}
	if p.WordOfDayHistory == nil {
		p.WordOfDayHistory = []models.WordOfDayEntry{}
	}
	if p.Statistics.QuizHistory == nil {
		p.Statistics.QuizHistory = []models.QuizResult{}
	}
}
