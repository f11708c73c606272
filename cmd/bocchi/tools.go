package main

import (
	"fmt"

	"bocchi/internal/domain"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "mod-tools commands",
}

var toolsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the mod-tools executable is installed",
	Long: `Check that the mod-tools executable is installed.

By default bocchi looks for cslol-tools/mod-tools in the data directory;
set tools_path in config.yaml to use another location.`,
	Args: cobra.NoArgs,
	RunE: runToolsCheck,
}

func init() {
	toolsCmd.AddCommand(toolsCheckCmd)
	rootCmd.AddCommand(toolsCmd)
}

func runToolsCheck(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	present := svc.ToolsPresent()
	if jsonOutput {
		return printJSON(struct {
			Path    string `json:"path"`
			Present bool   `json:"present"`
		}{svc.ToolsPath(), present})
	}

	if !present {
		return fmt.Errorf("%w: %s", domain.ErrToolsMissing, svc.ToolsPath())
	}
	fmt.Printf("%s %s\n", colorGreen("✓"), svc.ToolsPath())
	return nil
}
