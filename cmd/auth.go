package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"gcalnote/internal/config"
	"gcalnote/internal/google"
)

func newAuthCmd() *cobra.Command {
	var importFrom string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Google Calendar",
		Long: `Run the OAuth consent flow in your browser. A short-lived local
listener on port 8080 receives the redirect; the flow times out after
60 seconds.

With --import, OAuth credentials are copied from another installation's
settings file (data.json format) instead of running the flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			auth := google.NewAuthenticator(settings, slog.Default())

			if importFrom != "" {
				if err := auth.ImportCredentials(importFrom); err != nil {
					return err
				}
				fmt.Println("Credentials imported")
				return nil
			}

			if err := auth.Authorize(context.Background()); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			fmt.Println("Authentication successful")
			return nil
		},
	}

	cmd.Flags().StringVar(&importFrom, "import", "", "Copy credentials from another installation's settings file")
	return cmd
}
