// Package skinrepo resolves skin references to files hosted in the remote
// skin repository (a GitHub repository laid out as skins/<Champion>/<File>).
package skinrepo

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"bocchi/internal/domain"
)

// Defaults for the public skin repository
const (
	DefaultBaseURL    = "https://github.com"
	DefaultRawBaseURL = "https://raw.githubusercontent.com"
	DefaultOrg        = "darkseal-org"
	DefaultName       = "lol-skins"
	DefaultBranch     = "main"
)

const skinsDir = "skins"
const chromasDir = "chromas"

// Repository locates skin archives in a GitHub-hosted repository
type Repository struct {
	BaseURL    string
	RawBaseURL string
	Org        string
	Name       string
	Branch     string
}

// Default returns the public skin repository
func Default() *Repository {
	return &Repository{
		BaseURL:    DefaultBaseURL,
		RawBaseURL: DefaultRawBaseURL,
		Org:        DefaultOrg,
		Name:       DefaultName,
		Branch:     DefaultBranch,
	}
}

// SkinPath returns the repository-relative path of a skin archive.
// Chromas live under chromas/<BaseName>/ next to the base skin.
func (r *Repository) SkinPath(ref domain.SkinReference) (string, error) {
	if err := ValidateComponent(ref.ChampionKey); err != nil {
		return "", fmt.Errorf("champion key: %w", err)
	}
	if err := ValidateComponent(ref.SkinFile); err != nil {
		return "", fmt.Errorf("skin file: %w", err)
	}

	if ref.ChromaID != "" {
		base := domain.ChromaBaseName(ref.SkinFile, ref.ChromaID)
		return path.Join(skinsDir, ref.ChampionKey, chromasDir, base, ref.SkinFile), nil
	}
	return path.Join(skinsDir, ref.ChampionKey, ref.SkinFile), nil
}

// BlobURL returns the browsable URL of a skin archive
func (r *Repository) BlobURL(ref domain.SkinReference) (string, error) {
	p, err := r.SkinPath(ref)
	if err != nil {
		return "", err
	}
	return joinURL(r.BaseURL, r.Org, r.Name, "blob", r.Branch, p)
}

// ResolveURL returns the direct download URL of a skin archive
func (r *Repository) ResolveURL(ref domain.SkinReference) (string, error) {
	blob, err := r.BlobURL(ref)
	if err != nil {
		return "", err
	}
	return r.RawURL(blob)
}

// RawURL converts a blob URL into the raw-content URL serving the same file.
// The host is swapped and the /blob/ path segment dropped.
func (r *Repository) RawURL(blobURL string) (string, error) {
	prefix := strings.TrimSuffix(r.BaseURL, "/") + "/"
	if !strings.HasPrefix(blobURL, prefix) {
		return "", fmt.Errorf("%w: %s is not a %s URL", domain.ErrInvalidReference, blobURL, r.BaseURL)
	}
	rest := strings.TrimPrefix(blobURL, prefix)
	parts := strings.SplitN(rest, "/", 4)
	if len(parts) < 4 || parts[2] != "blob" {
		return "", fmt.Errorf("%w: %s is not a blob URL", domain.ErrInvalidReference, blobURL)
	}
	return strings.TrimSuffix(r.RawBaseURL, "/") + "/" + parts[0] + "/" + parts[1] + "/" + parts[3], nil
}

// ParseBlobURL extracts the champion key and skin file from a blob URL
// of the form <base>/<org>/<repo>/blob/<branch>/skins/<Champion>/<File>.
// Percent-encoded path segments are decoded.
func (r *Repository) ParseBlobURL(blobURL string) (domain.SkinReference, error) {
	u, err := url.Parse(blobURL)
	if err != nil {
		return domain.SkinReference{}, fmt.Errorf("%w: %v", domain.ErrInvalidReference, err)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	// org, repo, "blob", branch, "skins", champion, ..., file
	if len(segments) < 7 || segments[2] != "blob" || segments[4] != skinsDir {
		return domain.SkinReference{}, fmt.Errorf("%w: unrecognized skin URL %s", domain.ErrInvalidReference, blobURL)
	}

	ref := domain.SkinReference{
		ChampionKey: segments[5],
		SkinFile:    segments[len(segments)-1],
		Source:      domain.SourceRepository,
	}
	if len(segments) == 9 && segments[6] == chromasDir {
		base := strings.TrimSuffix(ref.SkinFile, path.Ext(ref.SkinFile))
		ref.ChromaID = strings.TrimPrefix(strings.TrimPrefix(base, segments[7]), " ")
	} else if len(segments) != 7 {
		return domain.SkinReference{}, fmt.Errorf("%w: unrecognized skin URL %s", domain.ErrInvalidReference, blobURL)
	}
	return ref, nil
}

// ValidateComponent rejects values that cannot be used as a single path segment
func ValidateComponent(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("%w: empty value", domain.ErrInvalidReference)
	case s == "." || s == "..":
		return fmt.Errorf("%w: %q is not allowed", domain.ErrInvalidReference, s)
	case strings.ContainsAny(s, `/\`) || strings.ContainsRune(s, 0):
		return fmt.Errorf("%w: %q contains a path separator", domain.ErrInvalidReference, s)
	}
	return nil
}

func joinURL(base string, elems ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: parsing base URL: %v", domain.ErrInvalidReference, err)
	}
	return u.JoinPath(elems...).String(), nil
}
