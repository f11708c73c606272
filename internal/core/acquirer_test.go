package core_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"bocchi/internal/core"
	"bocchi/internal/domain"
	"bocchi/internal/source/skinrepo"
	"bocchi/internal/storage/cache"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skinServer serves skins/<Champion>/<File> from files and counts requests per path
type skinServer struct {
	*httptest.Server
	mu       sync.Mutex
	files    map[string]string
	requests map[string]int
	delay    time.Duration
	total    atomic.Int32
}

func newSkinServer(t *testing.T, files map[string]string) *skinServer {
	t.Helper()
	s := &skinServer{files: files, requests: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.total.Add(1)
		s.mu.Lock()
		s.requests[r.URL.Path]++
		content, ok := s.files[r.URL.Path]
		s.mu.Unlock()

		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(content))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *skinServer) repo() *skinrepo.Repository {
	return &skinrepo.Repository{
		BaseURL:    skinrepo.DefaultBaseURL,
		RawBaseURL: s.URL,
		Org:        "org",
		Name:       "skins",
		Branch:     "main",
	}
}

func skinPath(champion, file string) string {
	return "/org/skins/main/skins/" + champion + "/" + file
}

func newTestAcquirer(t *testing.T, resolver core.URLResolver) (*core.Acquirer, *cache.Cache) {
	t.Helper()
	c := cache.New(t.TempDir())
	require.NoError(t, c.EnsureLayout())
	return core.NewAcquirer(c, resolver, newTestDownloader(), zerolog.Nop()), c
}

func repoRef(champion, file string) domain.SkinReference {
	return domain.SkinReference{ChampionKey: champion, SkinFile: file, Source: domain.SourceRepository}
}

func TestAcquirer_DownloadsIntoCache(t *testing.T) {
	srv := newSkinServer(t, map[string]string{skinPath("Ahri", "DRX Ahri.zip"): "archive"})
	a, c := newTestAcquirer(t, srv.repo())

	art, err := a.Acquire(context.Background(), repoRef("Ahri", "DRX Ahri.zip"), core.AcquireOptions{})
	require.NoError(t, err)

	key := domain.SkinKey{ChampionKey: "Ahri", FileName: "DRX Ahri.zip"}
	assert.Equal(t, c.ArchivePath(key), art.Path)
	assert.Equal(t, key, art.Key())
	assert.Equal(t, domain.SourceRepository, art.Source)

	data, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data))

	_, err = os.Stat(art.Path + cache.PartSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquirer_CacheHitDoesNoIO(t *testing.T) {
	srv := newSkinServer(t, map[string]string{skinPath("Ahri", "DRX Ahri.zip"): "archive"})
	a, _ := newTestAcquirer(t, srv.repo())
	ref := repoRef("Ahri", "DRX Ahri.zip")

	first, err := a.Acquire(context.Background(), ref, core.AcquireOptions{})
	require.NoError(t, err)
	second, err := a.Acquire(context.Background(), ref, core.AcquireOptions{})
	require.NoError(t, err)

	assert.Equal(t, first.Path, second.Path)
	assert.EqualValues(t, 1, srv.total.Load())
}

func TestAcquirer_InstalledModCountsAsCached(t *testing.T) {
	srv := newSkinServer(t, nil)
	a, c := newTestAcquirer(t, srv.repo())
	writeFile(t, c.InfoPath("Ahri_DRX Ahri"), `{"Name":"DRX Ahri"}`)

	art, err := a.Acquire(context.Background(), repoRef("Ahri", "DRX Ahri.zip"), core.AcquireOptions{})
	require.NoError(t, err)

	assert.Empty(t, art.Path)
	assert.Equal(t, "Ahri", art.ChampionKey)
	assert.EqualValues(t, 0, srv.total.Load())
}

func TestAcquirer_ConcurrentSameKeyDownloadsOnce(t *testing.T) {
	srv := newSkinServer(t, map[string]string{skinPath("Ahri", "DRX Ahri.zip"): "archive"})
	srv.delay = 50 * time.Millisecond
	a, _ := newTestAcquirer(t, srv.repo())
	ref := repoRef("Ahri", "DRX Ahri.zip")

	const callers = 8
	paths := make([]string, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			art, err := a.Acquire(context.Background(), ref, core.AcquireOptions{})
			errs[i] = err
			if err == nil {
				paths[i] = art.Path
			}
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, paths[0], paths[i])
	}
	assert.EqualValues(t, 1, srv.total.Load())
}

func TestAcquirer_DifferentKeysDownloadIndependently(t *testing.T) {
	srv := newSkinServer(t, map[string]string{
		skinPath("Ahri", "DRX Ahri.zip"):    "ahri",
		skinPath("Annie", "Goth Annie.zip"): "annie",
	})
	a, _ := newTestAcquirer(t, srv.repo())

	var wg sync.WaitGroup
	for _, ref := range []domain.SkinReference{repoRef("Ahri", "DRX Ahri.zip"), repoRef("Annie", "Goth Annie.zip")} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Acquire(context.Background(), ref, core.AcquireOptions{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 2, srv.total.Load())
}

func TestAcquirer_NotFound(t *testing.T) {
	srv := newSkinServer(t, nil)
	a, c := newTestAcquirer(t, srv.repo())
	ref := repoRef("Ahri", "Missing.zip")

	_, err := a.Acquire(context.Background(), ref, core.AcquireOptions{})
	require.Error(t, err)

	var acqErr *domain.AcquisitionError
	require.True(t, errors.As(err, &acqErr))
	assert.Equal(t, domain.ReasonNotFound, acqErr.Reason)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, c.HasArchive(ref.Key()))
}

func TestAcquirer_ServerErrorIsNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	repo := &skinrepo.Repository{BaseURL: skinrepo.DefaultBaseURL, RawBaseURL: server.URL, Org: "o", Name: "r", Branch: "main"}
	a, _ := newTestAcquirer(t, repo)

	_, err := a.Acquire(context.Background(), repoRef("Ahri", "DRX Ahri.zip"), core.AcquireOptions{})
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
}

func TestAcquirer_InvalidReferences(t *testing.T) {
	srv := newSkinServer(t, nil)
	a, _ := newTestAcquirer(t, srv.repo())

	tests := []struct {
		name string
		ref  domain.SkinReference
		opts core.AcquireOptions
	}{
		{"traversal in file", repoRef("Ahri", "../evil.zip"), core.AcquireOptions{}},
		{"traversal in champion", repoRef("..", "DRX Ahri.zip"), core.AcquireOptions{}},
		{"empty file", repoRef("Ahri", ""), core.AcquireOptions{}},
		{"repository without champion", repoRef("", "DRX Ahri.zip"), core.AcquireOptions{}},
		{"user without local file", domain.SkinReference{SkinFile: "Glow.wad", Source: domain.SourceUser}, core.AcquireOptions{}},
		{"unknown source", domain.SkinReference{ChampionKey: "Ahri", SkinFile: "a.zip", Source: "ftp"}, core.AcquireOptions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Acquire(context.Background(), tt.ref, tt.opts)
			assert.ErrorIs(t, err, domain.ErrInvalidReference)
		})
	}
	assert.EqualValues(t, 0, srv.total.Load())
}

func TestAcquirer_UserFileCopiedIntoCache(t *testing.T) {
	a, c := newTestAcquirer(t, nil)
	src := writeFile(t, filepath.Join(t.TempDir(), "Glow.wad"), "wad bytes")
	ref := domain.SkinReference{SkinFile: domain.UserMarker + "Glow.wad", Source: domain.SourceUser}

	art, err := a.Acquire(context.Background(), ref, core.AcquireOptions{LocalPath: src})
	require.NoError(t, err)

	key := domain.SkinKey{ChampionKey: domain.CustomChampion, FileName: "Glow.wad"}
	assert.Equal(t, c.ArchivePath(key), art.Path)
	assert.Equal(t, domain.SourceUser, art.Source)

	data, err := os.ReadFile(art.Path)
	require.NoError(t, err)
	assert.Equal(t, "wad bytes", string(data))

	// Source is untouched
	_, err = os.Stat(src)
	assert.NoError(t, err)
}

func TestAcquirer_UserFileErrors(t *testing.T) {
	a, _ := newTestAcquirer(t, nil)
	ref := domain.SkinReference{SkinFile: "Glow.wad", Source: domain.SourceUser}

	_, err := a.Acquire(context.Background(), ref, core.AcquireOptions{LocalPath: filepath.Join(t.TempDir(), "missing.wad")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = a.Acquire(context.Background(), ref, core.AcquireOptions{LocalPath: t.TempDir()})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}
