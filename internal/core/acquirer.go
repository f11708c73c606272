package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"bocchi/internal/domain"
	"bocchi/internal/source/skinrepo"
	"bocchi/internal/storage/cache"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// URLResolver maps a repository skin reference to its download URL
type URLResolver interface {
	ResolveURL(ref domain.SkinReference) (string, error)
}

// AcquireOptions configures a single acquisition
type AcquireOptions struct {
	LocalPath string       // Required for user references
	Progress  ProgressFunc // Optional download progress
}

// Acquirer obtains skin archives into the local cache. Concurrent requests
// for the same identity key share one transfer.
type Acquirer struct {
	cache      *cache.Cache
	resolver   URLResolver
	downloader *Downloader
	logger     zerolog.Logger
	group      singleflight.Group
}

// NewAcquirer creates a new Acquirer
func NewAcquirer(c *cache.Cache, resolver URLResolver, downloader *Downloader, logger zerolog.Logger) *Acquirer {
	if downloader == nil {
		downloader = NewDownloader(nil)
	}
	return &Acquirer{
		cache:      c,
		resolver:   resolver,
		downloader: downloader,
		logger:     logger,
	}
}

// Acquire returns the cached archive for ref, fetching or copying it first if needed.
// A champion-scoped skin that is already installed as a mod is returned
// without any I/O and with an empty Path.
func (a *Acquirer) Acquire(ctx context.Context, ref domain.SkinReference, opts AcquireOptions) (*domain.Artifact, error) {
	if err := a.validate(ref, opts); err != nil {
		return nil, err
	}

	if art := a.lookup(ref); art != nil {
		return art, nil
	}

	key := ref.Key().String()
	art, shared, err := a.do(ctx, key, ref, opts)
	if err != nil && shared {
		// The shared attempt belonged to another caller; try once on our own behalf
		a.logger.Debug().Str("skin", key).Err(err).Msg("Shared acquisition failed, retrying")
		art, _, err = a.do(ctx, key, ref, opts)
	}
	return art, err
}

func (a *Acquirer) do(ctx context.Context, key string, ref domain.SkinReference, opts AcquireOptions) (*domain.Artifact, bool, error) {
	v, err, shared := a.group.Do(key, func() (any, error) {
		// A flight that finished just before this one may have filled the cache
		if art := a.lookup(ref); art != nil {
			return art, nil
		}
		if ref.Source == domain.SourceUser {
			return a.copyLocal(ref, opts.LocalPath)
		}
		return a.download(ctx, ref, opts.Progress)
	})
	if err != nil {
		return nil, shared, err
	}
	art := *v.(*domain.Artifact)
	return &art, shared, nil
}

func (a *Acquirer) validate(ref domain.SkinReference, opts AcquireOptions) error {
	invalid := func(err error) error {
		return &domain.AcquisitionError{Reason: domain.ReasonInvalidReference, Ref: ref, Err: err}
	}

	key := ref.Key()
	if err := skinrepo.ValidateComponent(key.FileName); err != nil {
		return invalid(fmt.Errorf("skin file: %w", err))
	}

	switch ref.Source {
	case domain.SourceUser:
		if opts.LocalPath == "" {
			return invalid(errors.New("user skins need a local file"))
		}
		if err := skinrepo.ValidateComponent(key.ChampionKey); err != nil {
			return invalid(fmt.Errorf("champion key: %w", err))
		}
	case domain.SourceRepository, "":
		if ref.ChampionKey == "" {
			return invalid(errors.New("repository skins need a champion"))
		}
		if err := skinrepo.ValidateComponent(ref.ChampionKey); err != nil {
			return invalid(fmt.Errorf("champion key: %w", err))
		}
	default:
		return invalid(fmt.Errorf("unknown source %q", ref.Source))
	}
	return nil
}

// lookup checks the cache: a cached archive, or an installed mod for champion-scoped skins
func (a *Acquirer) lookup(ref domain.SkinReference) *domain.Artifact {
	key := ref.Key()
	art := &domain.Artifact{
		ChampionKey: key.ChampionKey,
		FileName:    key.FileName,
		Source:      sourceOf(ref),
	}

	if a.cache.HasArchive(key) {
		art.Path = a.cache.ArchivePath(key)
		return art
	}
	if ref.IsChampionScoped() && a.cache.HasValidMod(ref.ModDirName()) {
		return art
	}
	return nil
}

func (a *Acquirer) download(ctx context.Context, ref domain.SkinReference, progress ProgressFunc) (*domain.Artifact, error) {
	url, err := a.resolver.ResolveURL(ref)
	if err != nil {
		return nil, &domain.AcquisitionError{Reason: domain.ReasonInvalidReference, Ref: ref, Err: err}
	}

	key := ref.Key()
	dest := a.cache.ArchivePath(key)
	a.logger.Info().Str("skin", key.String()).Str("url", url).Msg("Downloading skin")

	result, err := a.downloader.Download(ctx, url, dest, progress)
	if err != nil {
		reason := domain.ReasonNetworkFailure
		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			reason = domain.ReasonNotFound
		}
		return nil, &domain.AcquisitionError{Reason: reason, Ref: ref, Err: err}
	}

	a.logger.Debug().Str("skin", key.String()).Int64("bytes", result.Size).Str("md5", result.Checksum).Msg("Download complete")

	return &domain.Artifact{
		Path:        result.Path,
		ChampionKey: key.ChampionKey,
		FileName:    key.FileName,
		Source:      domain.SourceRepository,
	}, nil
}

// copyLocal copies a user file into the cache with the same temp-then-rename discipline as downloads
func (a *Acquirer) copyLocal(ref domain.SkinReference, localPath string) (art *domain.Artifact, err error) {
	info, err := os.Stat(localPath)
	if err != nil {
		reason := domain.ReasonNetworkFailure
		if errors.Is(err, os.ErrNotExist) {
			reason = domain.ReasonNotFound
		}
		return nil, &domain.AcquisitionError{Reason: reason, Ref: ref, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &domain.AcquisitionError{Reason: domain.ReasonInvalidReference, Ref: ref,
			Err: fmt.Errorf("%s is not a regular file", localPath)}
	}

	key := ref.Key()
	dest := a.cache.ArchivePath(key)
	fail := func(err error) error {
		return &domain.AcquisitionError{Reason: domain.ReasonNetworkFailure, Ref: ref, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, fail(fmt.Errorf("creating cache directory: %w", err))
	}

	src, err := os.Open(localPath)
	if err != nil {
		return nil, fail(err)
	}
	defer src.Close()

	tempPath := dest + cache.PartSuffix
	tmp, err := os.Create(tempPath)
	if err != nil {
		return nil, fail(fmt.Errorf("creating file: %w", err))
	}
	defer func() {
		tmp.Close()
		os.Remove(tempPath)
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return nil, fail(fmt.Errorf("copying file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return nil, fail(fmt.Errorf("closing file: %w", err))
	}
	if err := os.Rename(tempPath, dest); err != nil {
		return nil, fail(fmt.Errorf("renaming file: %w", err))
	}

	a.logger.Info().Str("skin", key.String()).Str("from", localPath).Msg("Imported local archive")

	return &domain.Artifact{
		Path:        dest,
		ChampionKey: key.ChampionKey,
		FileName:    key.FileName,
		Source:      domain.SourceUser,
	}, nil
}

func sourceOf(ref domain.SkinReference) domain.Source {
	if ref.Source == "" {
		return domain.SourceRepository
	}
	return ref.Source
}
