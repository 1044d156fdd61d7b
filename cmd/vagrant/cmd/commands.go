package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// commandsCmd enumerates every registered command plugin.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all registered command plugins",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		s, err := buildSession(ctx, basisName)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := s.Close(); closeErr != nil {
				slog.Warn("session close reported failures", slog.String("error", closeErr.Error()))
			}
		}()

		entries, err := s.Basis.Init(ctx)
		if err != nil {
			return err
		}

		ui := s.Basis.UI()
		for _, entry := range entries {
			ui.Output("%-24s %s", entry.Name, entry.Synopsis)
			for _, flag := range entry.Flags {
				ui.Output("    --%-20s %s", flag.LongName, flag.Description)
			}
		}
		return nil
	},
}

func init() {
	commandsCmd.Flags().StringVar(&basisName, "basis", "default", "basis scope to enumerate")
	rootCmd.AddCommand(commandsCmd)
}
