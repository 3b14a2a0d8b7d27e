// Package cmd implements the command-line interface for gcalnote.
//
// This package provides the following commands:
//   - insert: Insert the day's events into one note
//   - auth: Run the Google OAuth consent flow (or import credentials)
//   - watch: Watch a note vault and auto-insert into daily notes
//   - template: Print the section scaffold for daily-note templates
//   - version: Display version information
package cmd
