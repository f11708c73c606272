package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"bocchi/internal/core"
	"bocchi/internal/logging"
	"bocchi/internal/storage/config"

	"github.com/spf13/cobra"
)

// ErrCancelled is returned when the user declines a prompt.
// When returned from a command, Execute exits with code 2.
var ErrCancelled = errors.New("cancelled")

var (
	version = "0.3.0"

	// Global flags
	configDir  string
	configFile string
	dataDir    string
	verbosity  int
	jsonOutput bool
	noColor    bool

	closeLog = func() {}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bocchi",
	Short: "League of Legends skin manager",
	Long: `bocchi downloads skins from the community skin repository, imports your own
skin files, and runs the mod-tools overlay that applies them to the game.

Use subcommands for operations. Run 'bocchi --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(nil)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: $XDG_CONFIG_HOME/bocchi)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config-file", "", "explicit config file (absolute .yaml path)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: $XDG_DATA_HOME/bocchi)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "verbose output (repeat for more)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// setupLogging (re)configures the global logger. A nil console means stderr.
func setupLogging(console io.Writer) {
	closeLog()
	closeLog = logging.SetupLogger(logging.Options{
		Verbosity: verbosity,
		NoColor:   !colorEnabled(),
		Console:   console,
	})
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
func colorEnabled() bool {
	if noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
)

func colorGreen(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiGreen + s + ansiReset
}

func colorRed(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiRed + s + ansiReset
}

func colorYellow(s string) string {
	if !colorEnabled() {
		return s
	}
	return ansiYellow + s + ansiReset
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error, 2 = user cancelled.
// When --json is set and an error occurs, prints {"error":"..."} to stdout before exiting.
func Execute() {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			os.Exit(2)
		}
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// initService creates and initializes the core service
func initService() (*core.Service, error) {
	cfg := getServiceConfig()

	if cfg.ConfigFile == "" {
		if err := os.MkdirAll(cfg.ConfigDir, 0755); err != nil {
			return nil, fmt.Errorf("creating config dir: %w", err)
		}
	}

	svc, err := core.NewService(cfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// getServiceConfig returns the service configuration with defaults applied
func getServiceConfig() core.ServiceConfig {
	cfg := core.ServiceConfig{
		ConfigDir:  configDir,
		ConfigFile: configFile,
		DataDir:    dataDir,
	}
	if cfg.ConfigDir == "" {
		cfg.ConfigDir = config.DefaultConfigDir()
	}
	return cfg
}

// closeService closes svc, reporting failures as a warning
func closeService(svc *core.Service) {
	if err := svc.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing service: %v\n", err)
	}
}
