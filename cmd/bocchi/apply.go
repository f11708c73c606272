package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"bocchi/internal/core"
	"bocchi/internal/domain"
	"bocchi/internal/patcher"
	"bocchi/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	applyGame           string
	applyNoTFT          bool
	applyIgnoreConflict bool
	applyTUI            bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <Champion/SkinFile>...",
	Short: "Apply skins and run the overlay",
	Long: `Build an overlay from the selected skins and run it until interrupted.

Skins that are not installed yet are downloaded first. Only one skin per
champion can be selected. User imports are selected as "[User] <file>".

With a terminal attached, a live monitor is shown; press q to stop. Without
one, overlay messages are printed line by line until Ctrl+C.

Examples:
  bocchi apply "Ahri/DRX Ahri.zip" "Annie/Goth Annie.zip"
  bocchi apply "Ahri/DRX Ahri.zip" "[User] Glow.wad" --game "/games/League of Legends/Game"
  bocchi apply "Ahri/DRX Ahri.zip" --no-tft=false --tui=false`,
	Args: cobra.MinimumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyGame, "game", "", "game directory (default: stored with 'bocchi game set-path')")
	applyCmd.Flags().BoolVar(&applyNoTFT, "no-tft", true, "skip Teamfight Tactics files (default from config)")
	applyCmd.Flags().BoolVar(&applyIgnoreConflict, "ignore-conflict", false, "let mod-tools ignore file conflicts (default from config)")
	applyCmd.Flags().BoolVar(&applyTUI, "tui", false, "show the live monitor (default: when stdout is a terminal)")

	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	refs, err := parseSelections(args)
	if err != nil {
		return err
	}

	useTUI := applyTUI
	if !cmd.Flags().Changed("tui") {
		useTUI = stdoutIsTerminal() && !jsonOutput
	}
	if useTUI {
		// Console logging would draw over the monitor; the log file still gets everything
		setupLogging(io.Discard)
	}

	svc, err := initService()
	if err != nil {
		return fmt.Errorf("initializing service: %w", err)
	}
	defer closeService(svc)

	flags := svc.DefaultFlags()
	if cmd.Flags().Changed("no-tft") {
		flags.NoTFT = applyNoTFT
	}
	if cmd.Flags().Changed("ignore-conflict") {
		flags.IgnoreConflict = applyIgnoreConflict
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if useTUI {
		return applyWithMonitor(ctx, svc, refs, flags)
	}
	return applyWithLog(ctx, svc, refs, flags)
}

func applyWithMonitor(ctx context.Context, svc *core.Service, refs []domain.SkinReference, flags domain.ProfileFlags) error {
	mods := make([]string, len(refs))
	for i, ref := range refs {
		mods[i] = ref.ModDirName()
	}

	p := tea.NewProgram(tui.NewMonitor(svc, mods))
	svc.SetEventSink(tui.Sink(p))
	defer svc.SetEventSink(nil)

	fmt.Printf("Preparing %d skin(s)...\n", len(refs))
	if _, err := svc.Apply(ctx, refs, applyGame, flags); err != nil {
		return err
	}

	final, err := p.Run()
	if err != nil {
		svc.Stop()
		return fmt.Errorf("running monitor: %w", err)
	}
	if m, ok := final.(tui.Monitor); ok && m.Err() != nil {
		return fmt.Errorf("stopping overlay: %w", m.Err())
	}
	return nil
}

func applyWithLog(ctx context.Context, svc *core.Service, refs []domain.SkinReference, flags domain.ProfileFlags) error {
	exited := make(chan struct{}, 1)
	svc.SetEventSink(patcher.SinkFunc(func(e domain.Event) {
		printEvent(e)
		if e.Kind == domain.EventStatus && e.Text == "" {
			select {
			case exited <- struct{}{}:
			default:
			}
		}
	}))
	defer svc.SetEventSink(nil)

	if !jsonOutput {
		fmt.Printf("Preparing %d skin(s)...\n", len(refs))
	}
	profile, err := svc.Apply(ctx, refs, applyGame, flags)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := printJSON(struct {
			Profile  string   `json:"profile"`
			Mods     []string `json:"mods"`
			GamePath string   `json:"game_path"`
		}{profile.ID, profile.Mods, profile.GamePath}); err != nil {
			return err
		}
	} else {
		fmt.Printf("%s Overlay running with %d mod(s). Press Ctrl+C to stop.\n", colorGreen("✓"), len(profile.Mods))
	}

	select {
	case <-ctx.Done():
		if !jsonOutput {
			fmt.Println("\nStopping overlay...")
		}
		return svc.Stop()
	case <-exited:
		if !jsonOutput {
			fmt.Println(colorYellow("Overlay exited."))
		}
		return nil
	}
}

func printEvent(e domain.Event) {
	if jsonOutput {
		printJSON(struct {
			Kind string `json:"kind"`
			Text string `json:"text"`
		}{string(e.Kind), e.Text})
		return
	}
	switch e.Kind {
	case domain.EventStatus:
		if e.Text != "" {
			fmt.Printf("[status] %s\n", e.Text)
		}
	case domain.EventProgress:
		fmt.Printf("  %s\n", e.Text)
	case domain.EventError:
		fmt.Fprintf(os.Stderr, "%s %s\n", colorRed("[error]"), e.Text)
	}
}
