package summary

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Replace strategy labels. Merge, insert-overwrite and delete+insert are
// functionally equivalent at this level — each is an atomic replace over a
// contiguous period range — so the label is accepted for operator familiarity
// and otherwise ignored.
const (
	StrategyMerge           = "merge"
	StrategyInsertOverwrite = "insert_overwrite"
	StrategyDeleteInsert    = "delete_insert"
)

var validStrategies = map[string]struct{}{
	StrategyMerge:           {},
	StrategyInsertOverwrite: {},
	StrategyDeleteInsert:    {},
}

// Profile is the explicit configuration of one summary model. Profiles are
// loaded at startup from YAML files and fingerprinted for staleness
// detection. Behavior is dispatched on these typed fields only — never on
// model-name matching.
type Profile struct {
	Name            string        `yaml:"name"`
	WindowSize      int           // trailing periods reprocessed per run
	Granularity     time.Duration // period bucket size
	Strategy        string        `yaml:"strategy"`
	HolidayCalendar string        `yaml:"holiday_calendar"` // empty disables enrichment
	Fingerprint     string        // SHA-256 of the raw YAML file; computed at load time
}

// rawProfile is the on-disk YAML shape.
type rawProfile struct {
	Name            string `yaml:"name"`
	WindowSize      int    `yaml:"window_size"`
	Granularity     string `yaml:"granularity"`
	Strategy        string `yaml:"strategy"`
	HolidayCalendar string `yaml:"holiday_calendar"`
}

// ProfileRepository defines the interface for loading summary profiles.
type ProfileRepository interface {
	// Get returns the profile with the given name, or an error if not found.
	Get(ctx context.Context, name string) (*Profile, error)

	// GetProfiles returns all profiles as a slice (for batch processing).
	GetProfiles() []Profile
}

// FileSystemProfileRepository loads summary profiles from *.yaml files in a
// directory. Each file contains exactly one profile at the top level.
// Profiles are loaded once at startup and cached in memory — no hot reload.
type FileSystemProfileRepository struct {
	dir      string
	profiles map[string]Profile // keyed by Name
}

// NewFileSystemProfileRepository creates a new repository and eagerly loads
// all profiles from dir. Returns an error if any profile file is malformed
// or invalid.
func NewFileSystemProfileRepository(dir string) (*FileSystemProfileRepository, error) {
	repo := &FileSystemProfileRepository{
		dir:      dir,
		profiles: make(map[string]Profile),
	}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *FileSystemProfileRepository) load() error {
	info, err := os.Stat(r.dir)
	if os.IsNotExist(err) {
		return nil // no profile directory — valid (zero profiles configured)
	}
	if err != nil {
		return fmt.Errorf("summary profile dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("summary profile path %q is not a directory", r.dir)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("reading summary profile dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading profile file %s: %w", path, err)
		}

		var raw rawProfile
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing profile file %s: %w", path, err)
		}
		if raw.Name == "" {
			continue // skip empty / comment-only files
		}

		profile, err := compileProfile(raw)
		if err != nil {
			return fmt.Errorf("profile %q: %w", raw.Name, err)
		}
		profile.Fingerprint = fmt.Sprintf("%x", sha256.Sum256(data))

		if _, exists := r.profiles[profile.Name]; exists {
			return fmt.Errorf("profile %q: duplicate profile name (check multiple YAML files)", profile.Name)
		}
		r.profiles[profile.Name] = profile
	}
	return nil
}

func compileProfile(raw rawProfile) (Profile, error) {
	p := Profile{
		Name:            raw.Name,
		WindowSize:      raw.WindowSize,
		Strategy:        raw.Strategy,
		HolidayCalendar: raw.HolidayCalendar,
	}

	if p.WindowSize == 0 {
		p.WindowSize = DefaultWindowSize
	}
	if p.WindowSize < 0 {
		return Profile{}, fmt.Errorf("window_size must be positive, got %d", p.WindowSize)
	}

	if raw.Granularity == "" {
		p.Granularity = DefaultGranularity
	} else {
		g, err := ParseGranularity(raw.Granularity)
		if err != nil {
			return Profile{}, err
		}
		p.Granularity = g
	}

	if p.Strategy == "" {
		p.Strategy = StrategyMerge
	}
	if _, ok := validStrategies[p.Strategy]; !ok {
		return Profile{}, fmt.Errorf("unsupported strategy %q", p.Strategy)
	}

	return p, nil
}

// Get returns the profile with the given name, or an error if not found.
func (r *FileSystemProfileRepository) Get(_ context.Context, name string) (*Profile, error) {
	profile, ok := r.profiles[name]
	if !ok {
		return nil, fmt.Errorf("summary profile %q not found", name)
	}
	return &profile, nil
}

// GetProfiles returns all loaded profiles.
func (r *FileSystemProfileRepository) GetProfiles() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out
}
