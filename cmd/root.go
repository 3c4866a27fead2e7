// Package cmd implements the calciq CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/calciq/internal/config"
	"github.com/theirongolddev/calciq/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// annotationTUI marks commands that take over the terminal; they log to a
// file instead of stderr.
const annotationTUI = "tui"

var (
	flagVerbose bool

	cfg    config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "calciq",
	Short: "Household budget planner and card-match game",
	Long: "Plan a monthly household budget across needs, wants and savings,\n" +
		"and play a levelled memory game against the clock.\n\n" +
		"Run without arguments to open the interactive budget screen.",
	Annotations:       map[string]string{annotationTUI: "true"},
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return runTUI(tabBudget)
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}

	_, tui := cmd.Annotations[annotationTUI]
	logger, err = newLogger(flagVerbose, tui)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	if !tui && !stdoutIsTerminal() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return nil
}

func newLogger(verbose, toFile bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if toFile {
		if err := os.MkdirAll(config.CacheDir(), 0o750); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
		zc.OutputPaths = []string{config.LogPath()}
		zc.ErrorOutputPaths = []string{config.LogPath()}
	}
	return zc.Build()
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func openStore() (*store.Store, error) {
	st, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}
