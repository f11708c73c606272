package main

import (
	"fmt"

	"bocchi/internal/core"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check whether a file can be imported",
	Long: `Check whether a file can be imported as a skin.

Accepted files are .wad, .zip and .fantome.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	err := core.ValidateImportFile(args[0])

	if jsonOutput {
		out := struct {
			Path  string `json:"path"`
			Valid bool   `json:"valid"`
			Error string `json:"error,omitempty"`
		}{Path: args[0], Valid: err == nil}
		if err != nil {
			out.Error = err.Error()
		}
		return printJSON(out)
	}

	if err != nil {
		return err
	}
	fmt.Printf("%s %s can be imported\n", colorGreen("✓"), args[0])
	return nil
}
