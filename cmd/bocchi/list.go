package main

import (
	"fmt"

	"bocchi/internal/core"

	"github.com/spf13/cobra"
)

var listFavorites bool

type skinJSON struct {
	Champion string   `json:"champion"`
	File     string   `json:"file"`
	Archive  string   `json:"archive,omitempty"`
	Mod      *modJSON `json:"mod,omitempty"`
	Favorite bool     `json:"favorite"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloaded and imported skins",
	Long: `List skins known to bocchi: cached archives and installed mods, joined on
(champion, file).

Examples:
  bocchi list
  bocchi list --favorites
  bocchi list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listFavorites, "favorites", false, "only list favorite skins")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	skins, err := svc.Inventory().Skins()
	if err != nil {
		return fmt.Errorf("listing skins: %w", err)
	}

	favs, err := svc.ListFavorites()
	if err != nil {
		return fmt.Errorf("listing favorites: %w", err)
	}
	isFav := make(map[string]bool, len(favs))
	for _, f := range favs {
		isFav[f.ChampionKey+"/"+f.SkinID] = true
	}

	out := make([]skinJSON, 0, len(skins))
	for _, s := range skins {
		fav := isFav[s.Key.String()]
		if listFavorites && !fav {
			continue
		}
		entry := toSkinJSON(s, fav)
		if entry.Mod != nil {
			if size, err := svc.Cache().Size(entry.Mod.Name); err == nil {
				entry.Mod.Size = size
			}
		}
		out = append(out, entry)
	}

	if jsonOutput {
		return printJSON(out)
	}

	if len(out) == 0 {
		fmt.Println("No skins found.")
		return nil
	}

	fmt.Printf("%-12s %-40s %-10s %-10s %s\n", "CHAMPION", "SKIN", "STATE", "SIZE", "")
	for _, s := range out {
		state := colorYellow("cached")
		size := "-"
		if s.Mod != nil {
			state = colorGreen("installed")
			size = formatSize(s.Mod.Size)
		}
		mark := ""
		if s.Favorite {
			mark = "★"
		}
		fmt.Printf("%-12s %-40s %-10s %-10s %s\n", s.Champion, s.File, state, size, mark)
	}
	fmt.Printf("\n%d skin(s)\n", len(out))
	return nil
}

func toSkinJSON(s core.SkinEntry, favorite bool) skinJSON {
	out := skinJSON{
		Champion: s.Key.ChampionKey,
		File:     s.Key.FileName,
		Favorite: favorite,
	}
	if s.Artifact != nil {
		out.Archive = s.Artifact.Path
	}
	if s.Mod != nil {
		m := toModJSON(s.Mod)
		out.Mod = &m
	}
	return out
}

// formatSize renders a byte count with a binary unit
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
