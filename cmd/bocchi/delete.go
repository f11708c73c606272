package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	deleteMod bool
	deleteYes bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <Champion/SkinFile | mod-name>",
	Short: "Delete a skin",
	Long: `Delete a skin's installed mod and its cached archive.

With --mod the argument is a mod directory name (as shown by 'bocchi list')
and only that directory is removed.

Examples:
  bocchi delete "Ahri/DRX Ahri.zip"
  bocchi delete --mod Custom_Glow -y`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteMod, "mod", false, "argument is a mod directory name")
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip confirmation prompt")

	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	if deleteMod {
		name := args[0]
		if !deleteYes && !confirm(fmt.Sprintf("Delete mod %s?", name)) {
			return ErrCancelled
		}
		if err := svc.Inventory().DeleteMod(name); err != nil {
			return err
		}
		fmt.Printf("%s Deleted %s\n", colorGreen("✓"), name)
		return nil
	}

	ref, err := parseSelection(args[0])
	if err != nil {
		return err
	}
	if !deleteYes && !confirm(fmt.Sprintf("Delete %s?", ref)) {
		return ErrCancelled
	}
	if err := svc.Inventory().Delete(ref); err != nil {
		return err
	}
	if err := svc.RemoveFavorite(ref); err != nil {
		return err
	}
	fmt.Printf("%s Deleted %s\n", colorGreen("✓"), ref)
	return nil
}
