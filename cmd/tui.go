package cmd

import (
	"fmt"

	"github.com/theirongolddev/calciq/internal/config"
	"github.com/theirongolddev/calciq/internal/tui"
	"github.com/theirongolddev/calciq/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	tabBudget = components.TabBudget
	tabGame   = components.TabGame
)

var gameCmd = &cobra.Command{
	Use:         "game",
	Aliases:     []string{"tui"},
	Short:       "Play the card-match game in the interactive TUI",
	Annotations: map[string]string{annotationTUI: "true"},
	Args:        cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runTUI(tabGame)
	},
}

func init() {
	rootCmd.AddCommand(gameCmd)
}

func runTUI(startTab int) error {
	// Background fills need ANSI output even when the profile probe is unsure.
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts := tui.Options{
		Config:    cfg,
		Logger:    logger,
		StartTab:  startTab,
		NeedSetup: !config.Exists(),
	}
	st, err := openStore()
	if err != nil {
		logger.Warn("running without database", zap.Error(err))
	} else {
		defer st.Close()
		opts.Store = st
	}

	p := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
