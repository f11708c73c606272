package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Game location commands",
	Long:  `Commands for managing where League of Legends is installed.`,
}

var gameSetPathCmd = &cobra.Command{
	Use:   "set-path <game-dir>",
	Short: "Set the game directory",
	Long: `Set the game directory passed to mod-tools, so you don't have to specify
--game for every apply. This is the "Game" folder containing League of Legends.exe.

Example:
  bocchi game set-path "/games/Riot Games/League of Legends/Game"`,
	Args: cobra.ExactArgs(1),
	RunE: runGameSetPath,
}

var gameShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the game directory",
	Args:  cobra.NoArgs,
	RunE:  runGameShow,
}

func init() {
	gameCmd.AddCommand(gameSetPathCmd)
	gameCmd.AddCommand(gameShowCmd)

	rootCmd.AddCommand(gameCmd)
}

func runGameSetPath(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	if err := svc.SetGamePath(args[0]); err != nil {
		return err
	}
	fmt.Printf("Game directory set to: %s\n", args[0])
	return nil
}

func runGameShow(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	path, err := svc.GamePath()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(struct {
			GamePath string `json:"game_path"`
		}{path})
	}
	if path == "" {
		fmt.Println("No game directory set. Use 'bocchi game set-path <game-dir>'.")
		return nil
	}
	fmt.Println(path)
	return nil
}
