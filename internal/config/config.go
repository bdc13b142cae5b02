// Package config loads and saves the azdo YAML configuration file, which
// holds the connection target, repository aliases, and the feature registry.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/alexanderramin/azdo/internal/fsutil"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the default config file name, resolved next to the executable.
	FileName = "config.yaml"

	defaultIRDir     = "ir"
	defaultHistoryDB = "history.db"
	legacyFeatureKey = "backlog"
)

// ErrConfigNotFound is returned when no config file exists at the resolved path.
var ErrConfigNotFound = errors.New("config not found")

// Config mirrors the YAML file. Keys this package does not know are kept in
// Extra and written back unchanged by Save.
type Config struct {
	Organization     string                    `yaml:"organization"`
	Project          string                    `yaml:"project"`
	Repository       string                    `yaml:"repository,omitempty"`
	Repositories     map[string]string         `yaml:"repositories,omitempty"`
	DefaultAreaPath  string                    `yaml:"default_area_path,omitempty"`
	IRDir            string                    `yaml:"ir_dir,omitempty"`
	HistoryDB        string                    `yaml:"history_db,omitempty"`
	Features         map[string]domain.Feature `yaml:"features,omitempty"`
	DefaultFeature   string                    `yaml:"default_feature,omitempty"`
	BacklogFeatureID int                       `yaml:"backlog_feature_id,omitempty"`
	Extra            map[string]any            `yaml:",inline"`

	path string
	env  overrides
}

// overrides are environment and flag values. They are never saved.
type overrides struct {
	org       string
	project   string
	repo      string
	irDir     string
	historyDB string
}

// DefaultPath returns $AZDO_CONFIG, or config.yaml next to the executable.
func DefaultPath() string {
	if v := os.Getenv("AZDO_CONFIG"); v != "" {
		return v
	}
	exe, err := os.Executable()
	if err != nil {
		return FileName
	}
	return filepath.Join(filepath.Dir(exe), FileName)
}

// Load reads the config file at path (DefaultPath when empty) and applies
// environment overrides. It does not validate; call Validate before use.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s: copy config.template.yaml to %s and fill in your values",
				ErrConfigNotFound, path, filepath.Base(path))
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.path = path
	cfg.env = overrides{
		org:       os.Getenv("AZDO_ORG"),
		project:   os.Getenv("AZDO_PROJECT"),
		repo:      os.Getenv("AZDO_REPO"),
		irDir:     os.Getenv("AZDO_IR_DIR"),
		historyDB: os.Getenv("AZDO_HISTORY_DB"),
	}
	return &cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// Override applies command-line values on top of file and environment
// values. Empty arguments leave the current value alone.
func (c *Config) Override(org, project, repo string) {
	if org != "" {
		c.env.org = org
	}
	if project != "" {
		c.env.project = project
	}
	if repo != "" {
		c.env.repo = repo
	}
}

// Validate rejects a missing or placeholder organization or project.
func (c *Config) Validate() error {
	for _, f := range []struct{ key, val string }{
		{"organization", c.Org()},
		{"project", c.ProjectName()},
	} {
		if isPlaceholder(f.val) {
			return fmt.Errorf("config %s: %q is missing or set to a placeholder", filepath.Base(c.path), f.key)
		}
	}
	return nil
}

func isPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.HasPrefix(v, "<")
}

// Org is the effective organization.
func (c *Config) Org() string {
	if c.env.org != "" {
		return c.env.org
	}
	return c.Organization
}

// ProjectName is the effective project.
func (c *Config) ProjectName() string {
	if c.env.project != "" {
		return c.env.project
	}
	return c.Project
}

// Repo returns the global override when set, otherwise the configured
// repository. Aliases resolve through Repositories.
func (c *Config) Repo() string {
	name := c.Repository
	if c.env.repo != "" {
		name = c.env.repo
	}
	if full, ok := c.Repositories[name]; ok {
		return full
	}
	return name
}

// IRPath is the directory holding IR documents. Relative paths resolve
// against the config file's directory.
func (c *Config) IRPath() string {
	return c.resolve(firstNonEmpty(c.env.irDir, c.IRDir, defaultIRDir))
}

// HistoryPath is the marshal-history database file.
func (c *Config) HistoryPath() string {
	return c.resolve(firstNonEmpty(c.env.historyDB, c.HistoryDB, defaultHistoryDB))
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(c.path), p)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Registry returns the feature registry. A legacy backlog_feature_id is
// presented as a single "backlog" entry.
func (c *Config) Registry() *domain.Registry {
	features := c.Features
	if features == nil && c.BacklogFeatureID > 0 {
		features = map[string]domain.Feature{
			legacyFeatureKey: {
				ID:          c.BacklogFeatureID,
				Description: "Migrated from backlog_feature_id",
				AddedAt:     "unknown",
			},
		}
	}
	return domain.NewRegistry(features, c.DefaultFeature)
}

// SetRegistry stores r back into the config, dropping the legacy key.
func (c *Config) SetRegistry(r *domain.Registry) {
	c.Features = make(map[string]domain.Feature, len(r.Features))
	for k, v := range r.Features {
		c.Features[k] = v
	}
	c.DefaultFeature = r.Default
	c.BacklogFeatureID = 0
}

// Save writes the config back to its file atomically. Environment and flag
// overrides are not persisted.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config path not set: cannot save")
	}
	err := fsutil.WriteAtomic(c.path, func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return err
		}
		return enc.Close()
	})
	if err != nil {
		return fmt.Errorf("saving config %s: %w", c.path, err)
	}
	return nil
}
