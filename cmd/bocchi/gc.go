package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove partial downloads and leftover scratch directories",
	Long: `Remove partial downloads and scratch directories left behind by interrupted
downloads or imports. Do not run while another bocchi command is working.`,
	Args: cobra.NoArgs,
	RunE: runGC,
}

func init() {
	rootCmd.AddCommand(gcCmd)
}

func runGC(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	removed, err := svc.Inventory().CollectGarbage()
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(struct {
			Removed int `json:"removed"`
		}{removed})
	}
	fmt.Printf("Removed %d item(s).\n", removed)
	return nil
}
