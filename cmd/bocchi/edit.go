package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	editName  string
	editImage string
)

var editCmd = &cobra.Command{
	Use:   "edit <mod-name>",
	Short: "Rename an imported skin or change its preview",
	Long: `Rename an installed skin or replace its preview image.

The champion prefix of the mod directory is kept.

Examples:
  bocchi edit Custom_Glow --name "Glow Effect"
  bocchi edit Ahri_Glow --image ./preview.webp`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editName, "name", "", "new skin name")
	editCmd.Flags().StringVar(&editImage, "image", "", "new preview image (jpg, jpeg, png or webp)")

	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	if editName == "" && editImage == "" {
		return fmt.Errorf("nothing to change; use --name or --image")
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	mod, err := svc.Inventory().EditCustom(args[0], editName, editImage)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(toModJSON(mod))
	}
	fmt.Printf("%s %s\n", colorGreen("✓"), mod.Name)
	if mod.PreviewImage != "" {
		fmt.Printf("  Preview: %s\n", mod.PreviewImage)
	}
	return nil
}
