package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"gcalnote/internal/calendar"
	"gcalnote/internal/config"
	"gcalnote/internal/google"
	"gcalnote/internal/notesync"
	"gcalnote/internal/vault"
)

func newInsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert <note>",
		Short: "Insert the day's events into one note",
		Long: `Fetch the Google Calendar events for the date in the note's name
(YYYY-MM-DD) and splice them into the note's configured section.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}

			notePath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve note path: %w", err)
			}

			v, err := vault.NewDir(filepath.Dir(notePath), slog.Default())
			if err != nil {
				return err
			}

			orch, err := newOrchestrator(settings, v)
			if err != nil {
				return err
			}
			orch.Notify = func(msg string) {
				fmt.Println(msg)
			}

			return orch.InsertForNote(context.Background(), filepath.Base(notePath))
		},
	}
	return cmd
}

// newOrchestrator wires the authenticator, calendar client and vault
// into an orchestrator, shared by the insert and watch commands.
func newOrchestrator(settings *config.Settings, v vault.Vault) (*notesync.Orchestrator, error) {
	logger := slog.Default()
	auth := google.NewAuthenticator(settings, logger)
	client := calendar.NewClient(auth, settings.CalendarIDs, logger)
	return notesync.New(settings, client, v, logger)
}
