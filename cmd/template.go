package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gcalnote/internal/config"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print the section scaffold for daily-note templates",
		Long: `Print the heading and marker pair that the insert command targets, for
pasting into a daily-note template. Only meaningful for marker mode.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s\n%s\n", settings.Heading, settings.StartMarker, settings.EndMarker)
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gcalnote version %s\n", version)
		},
	}
}
