package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bocchi/internal/domain"
	"bocchi/internal/linker"
	"bocchi/internal/source/skinrepo"
	"bocchi/internal/storage/cache"

	"github.com/rs/zerolog"
)

// NormalizeOptions configures how a file becomes a mod directory
type NormalizeOptions struct {
	Champion  *string // nil = detect; pointer to "" = no champion
	Name      string  // Mod name override
	ImagePath string  // Optional preview image
}

// Normalizer turns raw assets and mod archives into canonical mod directories
type Normalizer struct {
	cache     *cache.Cache
	extractor *Extractor
	linker    linker.Linker
	copier    linker.Linker
	champions *ChampionDetector
	logger    zerolog.Logger
}

// NewNormalizer creates a Normalizer. Raw assets are placed with l;
// champions lists the keys used for file name detection.
func NewNormalizer(c *cache.Cache, l linker.Linker, champions []string, logger zerolog.Logger) *Normalizer {
	if l == nil {
		l = linker.NewCopy()
	}
	return &Normalizer{
		cache:     c,
		extractor: NewExtractor(),
		linker:    l,
		copier:    linker.NewCopy(),
		champions: NewChampionDetector(champions),
		logger:    logger,
	}
}

type inputKind int

const (
	inputRaw inputKind = iota
	inputArchive
)

// ValidateImportFile checks that path is a file the normalizer accepts
func ValidateImportFile(path string) error {
	_, err := classifyInput(path)
	return err
}

func classifyInput(path string) (inputKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, &domain.NormalizationError{Kind: domain.KindIOError, Path: path, Err: err}
	}
	if info.IsDir() {
		return 0, &domain.NormalizationError{Kind: domain.KindUnsupportedFileType, Path: path,
			Err: fmt.Errorf("%w: directories cannot be imported", domain.ErrUnsupportedFileType)}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wad":
		return inputRaw, nil
	case ".zip", ".fantome":
		return inputArchive, nil
	default:
		return 0, &domain.NormalizationError{Kind: domain.KindUnsupportedFileType, Path: path,
			Err: fmt.Errorf("%w: %q (expected .wad, .zip or .fantome)", domain.ErrUnsupportedFileType, filepath.Ext(path))}
	}
}

// Normalize converts the file at sourcePath into a mod directory under mods/.
// An existing directory with the same name is replaced atomically.
func (n *Normalizer) Normalize(ctx context.Context, sourcePath string, opts NormalizeOptions) (*domain.ModDirectory, error) {
	kind, err := classifyInput(sourcePath)
	if err != nil {
		return nil, err
	}
	if opts.ImagePath != "" && !domain.IsPreviewExtension(filepath.Ext(opts.ImagePath)) {
		return nil, &domain.NormalizationError{Kind: domain.KindUnsupportedFileType, Path: opts.ImagePath,
			Err: fmt.Errorf("%w: preview image must be jpg, jpeg, png or webp", domain.ErrUnsupportedFileType)}
	}
	if opts.Champion != nil && *opts.Champion != "" {
		if err := validateChampion(*opts.Champion); err != nil {
			return nil, &domain.NormalizationError{Kind: domain.KindIOError, Path: sourcePath, Err: err}
		}
	}

	ioErr := func(err error) error {
		return &domain.NormalizationError{Kind: domain.KindIOError, Path: sourcePath, Err: err}
	}

	if err := os.MkdirAll(n.cache.TempPath(), 0755); err != nil {
		return nil, ioErr(fmt.Errorf("creating temp directory: %w", err))
	}
	scratch, err := os.MkdirTemp(n.cache.TempPath(), "import-*")
	if err != nil {
		return nil, ioErr(fmt.Errorf("creating scratch directory: %w", err))
	}
	// After a successful install the scratch path no longer exists
	defer os.RemoveAll(scratch)

	var info domain.ModInfo
	switch kind {
	case inputRaw:
		info, err = n.stageRaw(sourcePath, scratch, opts)
	case inputArchive:
		info, err = n.stageArchive(ctx, sourcePath, scratch)
	}
	if err != nil {
		return nil, err
	}

	champion := n.champions.resolveChampion(opts.Champion, info, sourcePath)
	if validateChampion(champion) != nil {
		n.logger.Warn().Str("champion", champion).Str("file", sourcePath).Msg("Ignoring unusable champion from metadata")
		champion = domain.CustomChampion
	}
	modName := sanitizeModName(opts.Name)
	if modName == "" {
		modName = sanitizeModName(info.Name)
	}
	if modName == "" {
		modName = baseNameWithoutExt(sourcePath)
	}

	if opts.ImagePath != "" {
		if err := setPreview(n.copier, scratch, opts.ImagePath); err != nil {
			return nil, ioErr(err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dirName := domain.ModDirName(champion, modName)
	dest := n.cache.ModPath(dirName)
	if err := n.install(scratch, dest); err != nil {
		return nil, ioErr(err)
	}
	n.logger.Info().Str("mod", dirName).Str("source", sourcePath).Msg("Mod installed")

	return &domain.ModDirectory{
		Name:         dirName,
		Path:         dest,
		ChampionKey:  champion,
		ModName:      modName,
		Info:         info,
		PreviewImage: findPreview(dest),
	}, nil
}

// stageRaw builds META/info.json and WAD/<file> around a raw asset
func (n *Normalizer) stageRaw(sourcePath, scratch string, opts NormalizeOptions) (domain.ModInfo, error) {
	fileName := filepath.Base(sourcePath)
	name := opts.Name
	if name == "" {
		name = baseNameWithoutExt(sourcePath)
	}
	info := domain.ModInfo{
		Author:      domain.UserImportAuthor,
		Description: "Imported from " + fileName,
		Name:        name,
		Version:     domain.DefaultModVersion,
	}

	if err := writeModInfo(scratch, info); err != nil {
		return info, &domain.NormalizationError{Kind: domain.KindIOError, Path: sourcePath, Err: err}
	}
	if err := n.linker.Place(sourcePath, filepath.Join(scratch, domain.WadDir, fileName)); err != nil {
		return info, &domain.NormalizationError{Kind: domain.KindIOError, Path: sourcePath, Err: err}
	}
	return info, nil
}

// stageArchive extracts a mod archive and reads its metadata
func (n *Normalizer) stageArchive(ctx context.Context, sourcePath, scratch string) (domain.ModInfo, error) {
	var info domain.ModInfo

	if err := n.extractor.Extract(ctx, sourcePath, scratch); err != nil {
		if ctx.Err() != nil {
			return info, ctx.Err()
		}
		return info, &domain.NormalizationError{Kind: domain.KindIOError, Path: sourcePath, Err: fmt.Errorf("extracting archive: %w", err)}
	}

	data, err := os.ReadFile(filepath.Join(scratch, domain.MetaDir, domain.InfoFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return info, &domain.NormalizationError{Kind: domain.KindInvalidModStructure, Path: sourcePath}
		}
		return info, &domain.NormalizationError{Kind: domain.KindIOError, Path: sourcePath, Err: err}
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, &domain.NormalizationError{Kind: domain.KindInvalidModStructure, Path: sourcePath,
			Err: fmt.Errorf("parsing %s/%s: %w", domain.MetaDir, domain.InfoFile, err)}
	}
	return info, nil
}

// setPreview drops any existing preview and places imagePath at IMAGE/preview<ext>
func setPreview(l linker.Linker, modDir, imagePath string) error {
	if err := removePreviews(modDir); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(imagePath))
	dst := filepath.Join(modDir, domain.ImageDir, domain.ImageBase+ext)
	if err := l.Place(imagePath, dst); err != nil {
		return fmt.Errorf("copying preview image: %w", err)
	}
	return nil
}

// install moves scratch to dest. An existing dest is moved aside first and
// restored if the final rename fails.
func (n *Normalizer) install(scratch, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating mods directory: %w", err)
	}

	var backup string
	if _, err := os.Stat(dest); err == nil {
		aside, err := os.MkdirTemp(n.cache.TempPath(), "replaced-*")
		if err != nil {
			return fmt.Errorf("creating backup directory: %w", err)
		}
		backup = filepath.Join(aside, filepath.Base(dest))
		if err := os.Rename(dest, backup); err != nil {
			os.RemoveAll(aside)
			return fmt.Errorf("moving existing mod aside: %w", err)
		}
		defer os.RemoveAll(aside)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking existing mod: %w", err)
	}

	if err := os.Rename(scratch, dest); err != nil {
		if backup != "" {
			if rerr := os.Rename(backup, dest); rerr != nil {
				n.logger.Error().Err(rerr).Str("mod", dest).Msg("Failed to restore previous mod")
			}
		}
		return fmt.Errorf("installing mod: %w", err)
	}
	return nil
}

func writeModInfo(modDir string, info domain.ModInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding mod info: %w", err)
	}
	metaDir := filepath.Join(modDir, domain.MetaDir)
	if err := os.MkdirAll(metaDir, 0755); err != nil {
		return fmt.Errorf("creating META directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(metaDir, domain.InfoFile), data, 0644); err != nil {
		return fmt.Errorf("writing mod info: %w", err)
	}
	return nil
}

func readModInfo(modDir string) (domain.ModInfo, error) {
	var info domain.ModInfo
	data, err := os.ReadFile(filepath.Join(modDir, domain.MetaDir, domain.InfoFile))
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("parsing mod info: %w", err)
	}
	return info, nil
}

// findPreview returns the preview image of a mod directory, or ""
func findPreview(modDir string) string {
	for _, ext := range domain.PreviewExtensions {
		p := filepath.Join(modDir, domain.ImageDir, domain.ImageBase+ext)
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

func removePreviews(modDir string) error {
	for _, ext := range domain.PreviewExtensions {
		p := filepath.Join(modDir, domain.ImageDir, domain.ImageBase+ext)
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing old preview: %w", err)
		}
	}
	return nil
}

// validateChampion rejects champion keys that would break the mod directory naming
func validateChampion(champion string) error {
	if err := skinrepo.ValidateComponent(champion); err != nil {
		return err
	}
	if strings.Contains(champion, "_") {
		return fmt.Errorf("%w: champion key %q contains '_'", domain.ErrInvalidReference, champion)
	}
	return nil
}
