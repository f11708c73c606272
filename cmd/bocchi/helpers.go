package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"bocchi/internal/domain"

	"github.com/mattn/go-isatty"
)

// parseSelection parses "Champion/SkinFile". A "[User] " prefix on the file
// marks a user import; user imports may omit the champion ("[User] Glow.wad").
func parseSelection(s string) (domain.SkinReference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.SkinReference{}, fmt.Errorf("%w: empty selection", domain.ErrInvalidReference)
	}

	champion, file, found := strings.Cut(s, "/")
	if !found {
		champion, file = "", s
	}

	ref := domain.SkinReference{
		ChampionKey: strings.TrimSpace(champion),
		SkinFile:    strings.TrimSpace(file),
		Source:      domain.SourceRepository,
	}
	if strings.HasPrefix(ref.SkinFile, strings.TrimSpace(domain.UserMarker)) {
		ref.Source = domain.SourceUser
		ref.SkinFile = domain.UserMarker + strings.TrimSpace(strings.TrimPrefix(ref.SkinFile, strings.TrimSpace(domain.UserMarker)))
	}

	switch {
	case ref.SkinFile == "" || ref.SkinFile == domain.UserMarker:
		return domain.SkinReference{}, fmt.Errorf("%w: missing skin file in %q", domain.ErrInvalidReference, s)
	case ref.Source == domain.SourceRepository && ref.ChampionKey == "":
		return domain.SkinReference{}, fmt.Errorf("%w: expected Champion/SkinFile, got %q", domain.ErrInvalidReference, s)
	}
	return ref, nil
}

// parseSelections parses every argument with parseSelection
func parseSelections(args []string) ([]domain.SkinReference, error) {
	refs := make([]domain.SkinReference, 0, len(args))
	for _, arg := range args {
		ref, err := parseSelection(arg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// printJSON writes v to stdout as indented JSON
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// stdoutIsTerminal reports whether stdout is an interactive terminal
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// confirm asks a yes/no question on stdout. Anything but y/Y is a no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}
