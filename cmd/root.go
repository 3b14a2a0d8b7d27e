package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"gcalnote/internal/logging"
)

var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command for the gcalnote application
var rootCmd = &cobra.Command{
	Use:   "gcalnote",
	Short: "Inserts Google Calendar events into daily notes",
	Long: `gcalnote fetches your Google Calendar events for the day named in a
daily note and splices a formatted event list into a designated section
of that note.

It can run as:
  - A one-shot CLI (insert)
  - A foreground watcher over a note vault (watch)`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel)
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gcalnote version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the settings file (default: $XDG_CONFIG_HOME/gcalnote/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newInsertCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newTemplateCmd())
	rootCmd.AddCommand(newVersionCmd())
}
