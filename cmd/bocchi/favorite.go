package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "Manage favorite skins",
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add <Champion/SkinFile>",
	Short: "Mark a skin as favorite",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoriteAdd,
}

var favoriteRemoveCmd = &cobra.Command{
	Use:   "remove <Champion/SkinFile>",
	Short: "Unmark a favorite skin",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoriteRemove,
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorite skins",
	Args:  cobra.NoArgs,
	RunE:  runFavoriteList,
}

func init() {
	favoriteCmd.AddCommand(favoriteAddCmd)
	favoriteCmd.AddCommand(favoriteRemoveCmd)
	favoriteCmd.AddCommand(favoriteListCmd)

	rootCmd.AddCommand(favoriteCmd)
}

func runFavoriteAdd(cmd *cobra.Command, args []string) error {
	ref, err := parseSelection(args[0])
	if err != nil {
		return err
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	if err := svc.AddFavorite(ref); err != nil {
		return err
	}
	fmt.Printf("★ %s\n", ref)
	return nil
}

func runFavoriteRemove(cmd *cobra.Command, args []string) error {
	ref, err := parseSelection(args[0])
	if err != nil {
		return err
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	return svc.RemoveFavorite(ref)
}

func runFavoriteList(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	favs, err := svc.ListFavorites()
	if err != nil {
		return err
	}

	if jsonOutput {
		type favoriteJSON struct {
			Champion string    `json:"champion"`
			File     string    `json:"file"`
			Name     string    `json:"name"`
			AddedAt  time.Time `json:"added_at"`
		}
		out := make([]favoriteJSON, len(favs))
		for i, f := range favs {
			out[i] = favoriteJSON{f.ChampionKey, f.SkinID, f.SkinName, f.AddedAt}
		}
		return printJSON(out)
	}

	if len(favs) == 0 {
		fmt.Println("No favorites.")
		return nil
	}
	for _, f := range favs {
		fmt.Printf("★ %s/%s\n", f.ChampionKey, f.SkinID)
	}
	return nil
}
