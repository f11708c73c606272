package main

import (
	"context"
	"fmt"
	"os"

	"bocchi/internal/core"
	"bocchi/internal/domain"

	"github.com/spf13/cobra"
)

var downloadChroma string

type modJSON struct {
	Name     string `json:"name"`
	Champion string `json:"champion"`
	ModName  string `json:"mod_name"`
	Path     string `json:"path"`
	Author   string `json:"author,omitempty"`
	Version  string `json:"version,omitempty"`
	Preview  string `json:"preview,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

func toModJSON(m *domain.ModDirectory) modJSON {
	return modJSON{
		Name:     m.Name,
		Champion: m.ChampionKey,
		ModName:  m.ModName,
		Path:     m.Path,
		Author:   m.Info.Author,
		Version:  m.Info.Version,
		Preview:  m.PreviewImage,
	}
}

var downloadCmd = &cobra.Command{
	Use:   "download <Champion/SkinFile>...",
	Short: "Download skins from the skin repository",
	Long: `Download skins from the skin repository and install them as mods.

Skins that are already installed are not downloaded again. A skin whose
archive is cached but whose mod is missing is reinstalled from the cache.

Examples:
  bocchi download "Ahri/DRX Ahri.zip"
  bocchi download "Aatrox/DRX Aatrox 266032.zip" --chroma 266032`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadChroma, "chroma", "", "chroma id (single skin only)")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	refs, err := parseSelections(args)
	if err != nil {
		return err
	}
	if downloadChroma != "" {
		if len(refs) != 1 {
			return fmt.Errorf("--chroma needs exactly one skin")
		}
		refs[0].ChromaID = downloadChroma
	}
	for _, ref := range refs {
		if ref.Source == domain.SourceUser {
			return fmt.Errorf("%s is a user import; use 'bocchi import' instead", ref)
		}
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	ctx := context.Background()
	var mods []modJSON
	for _, ref := range refs {
		if !jsonOutput {
			fmt.Printf("Downloading %s...\n", ref)
		}
		mod, err := svc.Download(ctx, ref, downloadProgress(ref))
		if !jsonOutput {
			fmt.Fprint(os.Stderr, "\r\033[K")
		}
		if err != nil {
			return err
		}
		if jsonOutput {
			mods = append(mods, toModJSON(mod))
			continue
		}
		fmt.Printf("  %s %s\n", colorGreen("✓"), mod.Name)
	}

	if jsonOutput {
		return printJSON(mods)
	}
	return nil
}

// downloadProgress prints a single updating progress line to stderr
func downloadProgress(ref domain.SkinReference) core.ProgressFunc {
	if jsonOutput {
		return nil
	}
	return func(p core.DownloadProgress) {
		if p.TotalBytes > 0 {
			fmt.Fprintf(os.Stderr, "\r  %s: %.0f%%", ref.ModName(), p.Percentage)
			return
		}
		fmt.Fprintf(os.Stderr, "\r  %s: %d bytes", ref.ModName(), p.Downloaded)
	}
}
