package core

import (
	"context"
	"fmt"

	"bocchi/internal/domain"
	"bocchi/internal/storage/cache"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultBuildConcurrency bounds how many selections are prepared at once
const DefaultBuildConcurrency = 4

// ProfileBuilder validates a skin selection and turns it into an overlay
// profile, fetching and normalizing whatever is not installed yet.
type ProfileBuilder struct {
	cache      *cache.Cache
	acquirer   *Acquirer
	normalizer *Normalizer
	limit      int
	logger     zerolog.Logger
}

// NewProfileBuilder creates a new profile builder. A limit below one uses DefaultBuildConcurrency.
func NewProfileBuilder(c *cache.Cache, acquirer *Acquirer, normalizer *Normalizer, limit int, logger zerolog.Logger) *ProfileBuilder {
	if limit < 1 {
		limit = DefaultBuildConcurrency
	}
	return &ProfileBuilder{
		cache:      c,
		acquirer:   acquirer,
		normalizer: normalizer,
		limit:      limit,
		logger:     logger,
	}
}

// CheckConflicts returns a *domain.ConflictError for the first champion, in
// selection order, that has more than one skin selected. Champion-less
// skins are grouped under Custom.
func CheckConflicts(selections []domain.SkinReference) error {
	counts := make(map[string]int)
	var order []string
	for _, ref := range selections {
		champion := ref.Key().ChampionKey
		if counts[champion] == 0 {
			order = append(order, champion)
		}
		counts[champion]++
	}

	for _, champion := range order {
		if counts[champion] > 1 {
			return &domain.ConflictError{ChampionKey: champion, Count: counts[champion]}
		}
	}
	return nil
}

// Build resolves every selection to an installed mod directory and returns
// the profile to hand to the patcher. The mod list follows selection order.
func (b *ProfileBuilder) Build(ctx context.Context, selections []domain.SkinReference, gamePath string, flags domain.ProfileFlags) (*domain.OverlayProfile, error) {
	if len(selections) == 0 {
		return nil, domain.ErrNoSkinsSelected
	}
	if err := CheckConflicts(selections); err != nil {
		return nil, err
	}

	mods := make([]string, len(selections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)

	for i, ref := range selections {
		g.Go(func() error {
			name, err := b.prepare(gctx, ref)
			if err != nil {
				return &domain.SkinError{Ref: ref, Err: err}
			}
			mods[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := &domain.OverlayProfile{
		ID:           uuid.NewString(),
		Mods:         mods,
		GamePath:     gamePath,
		ProfileFlags: flags,
	}
	b.logger.Info().Str("profile", profile.ID).Strs("mods", mods).Msg("Profile built")
	return profile, nil
}

// prepare makes sure the mod for ref exists and returns its directory name
func (b *ProfileBuilder) prepare(ctx context.Context, ref domain.SkinReference) (string, error) {
	modName := ref.ModDirName()

	if ref.Source == domain.SourceUser {
		if !b.cache.HasValidMod(modName) {
			return "", fmt.Errorf("%w: %s", domain.ErrModNotFound, modName)
		}
		return modName, nil
	}

	if b.cache.HasValidMod(modName) {
		b.logger.Debug().Str("mod", modName).Msg("Mod already installed")
		return modName, nil
	}

	art, err := b.acquirer.Acquire(ctx, ref, AcquireOptions{})
	if err != nil {
		return "", err
	}
	if art.Path == "" {
		// Installed by a concurrent build between the check and the acquisition
		return modName, nil
	}

	champion := ref.ChampionKey
	mod, err := b.normalizer.Normalize(ctx, art.Path, NormalizeOptions{
		Champion: &champion,
		Name:     ref.ModName(),
	})
	if err != nil {
		return "", err
	}
	return mod.Name, nil
}
