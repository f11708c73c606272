package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"bocchi/internal/domain"
	"bocchi/internal/linker"
	"bocchi/internal/logging"
	"bocchi/internal/patcher"
	"bocchi/internal/storage/cache"
	"bocchi/internal/storage/config"
	"bocchi/internal/storage/db"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir  string       // Directory holding config.yaml
	ConfigFile string       // Explicit config file; overrides ConfigDir
	DataDir    string       // Data root; overrides the config file
	HTTPClient *http.Client // Optional client for downloads
}

// ImportOptions configures a user import
type ImportOptions struct {
	Champion  *string // nil = detect from metadata or file name
	Name      string
	ImagePath string
}

// Service is the main orchestrator for skin management and patching
type Service struct {
	config *config.Config
	db     *db.DB
	cache  *cache.Cache

	acquirer   *Acquirer
	normalizer *Normalizer
	builder    *ProfileBuilder
	inventory  *Inventory
	controller *patcher.Controller

	toolsPath string
	configDir string
	logger    zerolog.Logger
}

// NewService creates a new core service instance
func NewService(cfg ServiceConfig) (*Service, error) {
	var appConfig *config.Config
	var err error
	if cfg.ConfigFile != "" {
		appConfig, err = config.LoadFile(cfg.ConfigFile)
	} else {
		appConfig, err = config.Load(cfg.ConfigDir)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = appConfig.DataDir
	}
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	c := cache.New(dataDir)
	if err := c.EnsureLayout(); err != nil {
		return nil, fmt.Errorf("preparing data directory: %w", err)
	}

	database, err := db.New(c.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	toolsPath := appConfig.ToolsPath
	if toolsPath == "" {
		toolsPath = c.ToolsPath()
	}

	downloader := NewDownloader(cfg.HTTPClient)
	acquirer := NewAcquirer(c, appConfig.SkinRepository(), downloader, logging.GetLogger("acquirer"))
	normalizer := NewNormalizer(c, linker.New(appConfig.LinkMethod), appConfig.Champions, logging.GetLogger("normalizer"))

	controller := patcher.NewController(patcher.Options{
		ToolsPath:       toolsPath,
		ModsDir:         c.ModsPath(),
		ProfilesDir:     c.ProfilesPath(),
		GracePeriod:     appConfig.Patcher.GracePeriod,
		BuildTimeout:    appConfig.Patcher.BuildTimeout,
		AllowedMessages: appConfig.Patcher.AllowedMessages,
	}, logging.GetLogger("patcher"))

	return &Service{
		config:     appConfig,
		db:         database,
		cache:      c,
		acquirer:   acquirer,
		normalizer: normalizer,
		builder:    NewProfileBuilder(c, acquirer, normalizer, appConfig.MaxConcurrentDownloads, logging.GetLogger("profile")),
		inventory:  NewInventory(c, logging.GetLogger("inventory")),
		controller: controller,
		toolsPath:  toolsPath,
		configDir:  cfg.ConfigDir,
		logger:     logging.GetLogger("service"),
	}, nil
}

// Close stops the overlay process and releases resources held by the service
func (s *Service) Close() error {
	if err := s.controller.Stop(); err != nil {
		s.logger.Warn().Err(err).Msg("Stopping overlay on close")
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Download fetches a repository skin and installs it as a mod
func (s *Service) Download(ctx context.Context, ref domain.SkinReference, progressFn ProgressFunc) (*domain.ModDirectory, error) {
	if ref.Source == domain.SourceUser {
		return nil, &domain.AcquisitionError{Reason: domain.ReasonInvalidReference, Ref: ref,
			Err: errors.New("user skins are imported, not downloaded")}
	}
	ref.Source = domain.SourceRepository

	if s.cache.HasValidMod(ref.ModDirName()) {
		return s.inventory.load(ref.ModDirName())
	}

	art, err := s.acquirer.Acquire(ctx, ref, AcquireOptions{Progress: progressFn})
	if err != nil {
		return nil, err
	}
	if art.Path == "" {
		return s.inventory.load(ref.ModDirName())
	}

	champion := ref.ChampionKey
	return s.normalizer.Normalize(ctx, art.Path, NormalizeOptions{
		Champion: &champion,
		Name:     ref.ModName(),
	})
}

// Import copies a user file into the cache and installs it as a mod.
// Importing the same file name again replaces the previous import.
func (s *Service) Import(ctx context.Context, path string, opts ImportOptions) (*domain.ModDirectory, error) {
	if err := ValidateImportFile(path); err != nil {
		return nil, err
	}

	ref := domain.SkinReference{SkinFile: filepath.Base(path), Source: domain.SourceUser}
	if err := s.cache.DeleteArchive(ref.Key()); err != nil {
		return nil, err
	}

	art, err := s.acquirer.Acquire(ctx, ref, AcquireOptions{LocalPath: path})
	if err != nil {
		return nil, err
	}

	return s.normalizer.Normalize(ctx, art.Path, NormalizeOptions{
		Champion:  opts.Champion,
		Name:      opts.Name,
		ImagePath: opts.ImagePath,
	})
}

// Validate checks that a file can be imported
func (s *Service) Validate(path string) error {
	return ValidateImportFile(path)
}

// Apply builds an overlay from the selections and starts the patcher.
// An empty gamePath uses the stored game path.
func (s *Service) Apply(ctx context.Context, selections []domain.SkinReference, gamePath string, flags domain.ProfileFlags) (*domain.OverlayProfile, error) {
	done := logging.LogOperationStart(s.logger, "apply")
	defer done()

	if gamePath == "" {
		var err error
		if gamePath, err = s.GamePath(); err != nil {
			return nil, err
		}
	}
	if gamePath == "" {
		return nil, domain.ErrGamePathNotSet
	}
	if !s.controller.ToolsPresent() {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolsMissing, s.toolsPath)
	}

	profile, err := s.builder.Build(ctx, selections, gamePath, flags)
	if err != nil {
		return nil, err
	}
	if err := s.controller.Apply(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// Stop stops the overlay process if one is running
func (s *Service) Stop() error {
	return s.controller.Stop()
}

// IsRunning reports whether the overlay process is alive
func (s *Service) IsRunning() bool {
	return s.controller.IsRunning()
}

// State returns the overlay process state
func (s *Service) State() domain.ProcessState {
	return s.controller.State()
}

// SetEventSink sets the receiver of overlay process events
func (s *Service) SetEventSink(sink patcher.EventSink) {
	s.controller.SetEventSink(sink)
}

// Inventory returns the inventory of installed and cached skins
func (s *Service) Inventory() *Inventory {
	return s.inventory
}

// DefaultFlags returns the profile flags from config.yaml, with the stored
// no-TFT setting taking precedence
func (s *Service) DefaultFlags() domain.ProfileFlags {
	flags := domain.ProfileFlags{
		NoTFT:          s.config.Patcher.NoTFT,
		IgnoreConflict: s.config.Patcher.IgnoreConflict,
	}

	var noTFT bool
	ok, err := s.db.GetSetting(db.SettingNoTFT, &noTFT)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Reading no-TFT setting")
	} else if ok {
		flags.NoTFT = noTFT
	}
	return flags
}

// SetNoTFT stores whether Teamfight Tactics files are skipped by default
func (s *Service) SetNoTFT(noTFT bool) error {
	return s.db.SetSetting(db.SettingNoTFT, noTFT)
}

// GamePath returns the stored game path, falling back to config.yaml
func (s *Service) GamePath() (string, error) {
	path, err := s.db.GetString(db.SettingGamePath)
	if err != nil {
		return "", fmt.Errorf("reading game path: %w", err)
	}
	if path == "" {
		path = s.config.GamePath
	}
	return path, nil
}

// SetGamePath stores the game path
func (s *Service) SetGamePath(path string) error {
	if path == "" {
		return domain.ErrGamePathNotSet
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("game path must be absolute: %s", path)
	}
	return s.db.SetSetting(db.SettingGamePath, filepath.Clean(path))
}

// AddFavorite marks a skin as favorite
func (s *Service) AddFavorite(ref domain.SkinReference) error {
	key := ref.Key()
	return s.db.AddFavorite(key.ChampionKey, key.FileName, ref.ModName())
}

// RemoveFavorite unmarks a skin
func (s *Service) RemoveFavorite(ref domain.SkinReference) error {
	key := ref.Key()
	return s.db.RemoveFavorite(key.ChampionKey, key.FileName)
}

// IsFavorite reports whether a skin is marked as favorite
func (s *Service) IsFavorite(ref domain.SkinReference) (bool, error) {
	key := ref.Key()
	return s.db.IsFavorite(key.ChampionKey, key.FileName)
}

// ListFavorites returns all favorite skins
func (s *Service) ListFavorites() ([]db.Favorite, error) {
	return s.db.ListFavorites()
}

// ToolsPresent reports whether the mod-tools executable is installed
func (s *Service) ToolsPresent() bool {
	return s.controller.ToolsPresent()
}

// ToolsPath returns the mod-tools executable path
func (s *Service) ToolsPath() string {
	return s.toolsPath
}

// Config returns the loaded configuration
func (s *Service) Config() *config.Config {
	return s.config
}

// Cache returns the data root layout
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// DB returns the database
func (s *Service) DB() *db.DB {
	return s.db
}

// ConfigDir returns the configuration directory
func (s *Service) ConfigDir() string {
	return s.configDir
}
