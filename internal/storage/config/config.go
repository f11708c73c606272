package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bocchi/internal/domain"
	"bocchi/internal/source/skinrepo"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppName names the per-user config, data and state directories
const AppName = "bocchi"

// FileName is the config file inside the config directory
const FileName = "config.yaml"

// Defaults
const (
	DefaultGracePeriod            = time.Second
	DefaultBuildTimeout           = 5 * time.Minute
	DefaultMaxConcurrentDownloads = 4
)

// DefaultAllowedMessages are the progress messages forwarded from the overlay process
var DefaultAllowedMessages = []string{
	"Waiting for league match to start",
	"Found League",
	"Wait initialized",
	"Scanning",
	"Saving",
	"Wait patchable",
	"Patching",
	"Waiting for exit",
	"League exited",
}

// Config holds global application settings
type Config struct {
	DataDir                string            `yaml:"data_dir,omitempty"`
	ToolsPath              string            `yaml:"tools_path,omitempty"`
	GamePath               string            `yaml:"game_path,omitempty"`
	Repository             RepositoryConfig  `yaml:"repository"`
	Patcher                PatcherConfig     `yaml:"patcher"`
	LinkMethod             domain.LinkMethod `yaml:"-"`
	LinkMethodStr          string            `yaml:"import_link_method"`
	MaxConcurrentDownloads int               `yaml:"max_concurrent_downloads"`
	Champions              []string          `yaml:"champions,omitempty"`
}

// RepositoryConfig locates the remote skin repository
type RepositoryConfig struct {
	BaseURL    string `yaml:"base_url"`
	RawBaseURL string `yaml:"raw_base_url"`
	Org        string `yaml:"org"`
	Name       string `yaml:"name"`
	Branch     string `yaml:"branch"`
}

// PatcherConfig tunes the overlay process
type PatcherConfig struct {
	GracePeriod     time.Duration `yaml:"grace_period"`
	BuildTimeout    time.Duration `yaml:"build_timeout"`
	AllowedMessages []string      `yaml:"allowed_messages"`
	NoTFT           bool          `yaml:"no_tft"`
	IgnoreConflict  bool          `yaml:"ignore_conflict"`
}

// Default returns the built-in configuration
func Default() *Config {
	repo := skinrepo.Default()
	return &Config{
		Repository: RepositoryConfig{
			BaseURL:    repo.BaseURL,
			RawBaseURL: repo.RawBaseURL,
			Org:        repo.Org,
			Name:       repo.Name,
			Branch:     repo.Branch,
		},
		Patcher: PatcherConfig{
			GracePeriod:     DefaultGracePeriod,
			BuildTimeout:    DefaultBuildTimeout,
			AllowedMessages: append([]string(nil), DefaultAllowedMessages...),
			NoTFT:           true,
		},
		LinkMethod:             domain.LinkCopy,
		MaxConcurrentDownloads: DefaultMaxConcurrentDownloads,
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/bocchi
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultDataDir returns $XDG_DATA_HOME/bocchi
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Load reads configuration from the given directory
func Load(configDir string) (*Config, error) {
	return load(filepath.Join(configDir, FileName), true)
}

// LoadFile reads configuration from an explicit file, which must exist
func LoadFile(path string) (*Config, error) {
	cleaned, err := ParseConfigPath(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	return load(cleaned, false)
}

func load(path string, allowMissing bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return cfg, nil // Return defaults
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.LinkMethodStr != "" {
		cfg.LinkMethod = domain.ParseLinkMethod(cfg.LinkMethodStr)
	}
	if cfg.MaxConcurrentDownloads == 0 {
		cfg.MaxConcurrentDownloads = DefaultMaxConcurrentDownloads
	}
	if len(cfg.Patcher.AllowedMessages) == 0 {
		cfg.Patcher.AllowedMessages = append([]string(nil), DefaultAllowedMessages...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	switch {
	case c.MaxConcurrentDownloads < 0:
		return fmt.Errorf("%w: max_concurrent_downloads must be positive", domain.ErrInvalidConfig)
	case c.Patcher.GracePeriod <= 0:
		return fmt.Errorf("%w: patcher.grace_period must be positive", domain.ErrInvalidConfig)
	case c.Patcher.BuildTimeout < 0:
		return fmt.Errorf("%w: patcher.build_timeout must not be negative", domain.ErrInvalidConfig)
	case c.LinkMethodStr != "" && c.LinkMethodStr != "copy" && c.LinkMethodStr != "hardlink":
		return fmt.Errorf("%w: import_link_method must be copy or hardlink, got %q", domain.ErrInvalidConfig, c.LinkMethodStr)
	}
	return nil
}

// SkinRepository builds the repository resolver described by the config
func (c *Config) SkinRepository() *skinrepo.Repository {
	repo := skinrepo.Default()
	if c.Repository.BaseURL != "" {
		repo.BaseURL = c.Repository.BaseURL
	}
	if c.Repository.RawBaseURL != "" {
		repo.RawBaseURL = c.Repository.RawBaseURL
	}
	if c.Repository.Org != "" {
		repo.Org = c.Repository.Org
	}
	if c.Repository.Name != "" {
		repo.Name = c.Repository.Name
	}
	if c.Repository.Branch != "" {
		repo.Branch = c.Repository.Branch
	}
	return repo
}

// Save writes configuration to the given directory
func (c *Config) Save(configDir string) error {
	c.LinkMethodStr = c.LinkMethod.String()

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, FileName), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
