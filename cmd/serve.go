package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/theirongolddev/calciq/internal/budget"
	"github.com/theirongolddev/calciq/internal/server"

	"github.com/spf13/cobra"
)

var (
	flagServeAddr         string
	flagServeEventsBuffer int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the budget and leaderboard JSON API on a local address",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := cfg.Server.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}
	buffer := cfg.Server.EventsBuffer
	if flagServeEventsBuffer > 0 {
		buffer = flagServeEventsBuffer
	}
	formula, err := budget.ParseFormula(cfg.Budget.Formula)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	svc := server.New(server.Config{
		Addr:            addr,
		EventsBuffer:    buffer,
		DefaultFormula:  formula,
		LeaderboardSize: cfg.Game.LeaderboardSize,
		Logger:          logger.Named("server"),
	}, st)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  calciq API listening on http://%s\n", addr)
	fmt.Fprintf(out, "  Database: %s\n", cfg.DBPath())
	fmt.Fprintln(out, "  Stop with Ctrl+C")

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
