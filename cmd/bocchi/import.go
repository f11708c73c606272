package main

import (
	"context"
	"fmt"

	"bocchi/internal/core"

	"github.com/spf13/cobra"
)

var (
	importChampion string
	importName     string
	importImage    string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a skin from a local file",
	Long: `Import a skin from a local file (.wad, .zip or .fantome).

Raw .wad files are wrapped into a mod with generated metadata. Archives must
contain META/info.json. The champion is taken from --champion, then from the
archive metadata, then from the file name prefix ("Ahri_Glow.wad"); otherwise
the skin is stored as a Custom skin.

Examples:
  bocchi import ./Glow.wad
  bocchi import ./spirit-blossom.fantome --champion Ahri --image ./preview.png
  bocchi import ./Glow.wad --champion "" --name "Glow Effect"`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importChampion, "champion", "", `champion key ("" for a Custom skin; default: detect)`)
	importCmd.Flags().StringVar(&importName, "name", "", "skin name (default: from metadata or file name)")
	importCmd.Flags().StringVar(&importImage, "image", "", "preview image (jpg, jpeg, png or webp)")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := core.ValidateImportFile(path); err != nil {
		return err
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	opts := core.ImportOptions{
		Name:      importName,
		ImagePath: importImage,
	}
	if cmd.Flags().Changed("champion") {
		opts.Champion = &importChampion
	}

	if !jsonOutput {
		fmt.Printf("Importing: %s\n", path)
	}
	mod, err := svc.Import(context.Background(), path, opts)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	if jsonOutput {
		return printJSON(toModJSON(mod))
	}
	fmt.Printf("\n%s %s\n", colorGreen("✓"), mod.Name)
	fmt.Printf("  Champion: %s\n", mod.ChampionKey)
	fmt.Printf("  Path: %s\n", mod.Path)
	if mod.PreviewImage != "" {
		fmt.Printf("  Preview: %s\n", mod.PreviewImage)
	}
	return nil
}
