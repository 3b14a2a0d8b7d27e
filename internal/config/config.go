// Package config holds the persisted settings for gcalnote.
//
// Settings live in a single TOML file. Loading merges the file over the
// defaults; saving writes the whole record back. Components receive the
// loaded *Settings by reference and call Save explicitly after mutating
// it (token refresh is the one mutation that happens outside the
// settings UI path).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Insert modes selecting the document splicing strategy.
const (
	ModeMarker  = "marker"
	ModeHeading = "heading"
	ModeTop     = "top"
	ModeBottom  = "bottom"
)

// Settings is the persisted, process-wide configuration record.
type Settings struct {
	// OAuth client credentials and tokens. AccessToken is mutable and
	// refreshed in place; everything else only changes through auth.
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`

	// Behavior flags.
	AutoInsert      bool `toml:"auto_insert"`
	AutoRefresh     bool `toml:"auto_refresh"`
	RefreshInterval int  `toml:"refresh_interval"` // seconds, > 0

	// CalendarIDs is the ordered list of calendars to query.
	CalendarIDs []string `toml:"calendar_ids"`

	// VaultDir is the root of the note vault (watch mode).
	VaultDir string `toml:"vault_dir"`

	// Insertion configuration. Mode selects the strategy; Heading,
	// StartMarker/EndMarker and Margin apply per mode.
	InsertMode  string `toml:"insert_mode"`
	Heading     string `toml:"heading"`
	StartMarker string `toml:"start_marker"`
	EndMarker   string `toml:"end_marker"`
	Margin      int    `toml:"margin"`

	// MetricsAddr enables the watch-mode metrics endpoint when non-empty.
	MetricsAddr string `toml:"metrics_addr"`

	path string // where the record was loaded from
}

// Default returns the settings record used when no file exists yet.
func Default() *Settings {
	return &Settings{
		AutoInsert:      true,
		AutoRefresh:     true,
		RefreshInterval: 60,
		CalendarIDs:     []string{"primary"},
		InsertMode:      ModeMarker,
		Heading:         "### Schedule",
		StartMarker:     "%%start%%",
		EndMarker:       "%%end%%",
	}
}

// DefaultPath returns the default settings file location,
// $XDG_CONFIG_HOME/gcalnote/config.toml or ~/.config/gcalnote/config.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(homeDir(), ".config")
	}
	return filepath.Join(dir, "gcalnote", "config.toml")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return os.Getenv("HOME")
}

// Load reads the settings file at path, merging it over the defaults.
// A missing file yields the defaults. The returned record remembers its
// path so Save can write it back.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath()
	}
	s := Default()
	s.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	s.normalize()
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}
	return s, nil
}

// Save writes the whole settings record back to its file, creating the
// parent directory if needed. Tokens are credentials, so the file is
// written 0600.
func (s *Settings) Save() error {
	if s.path == "" {
		s.path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open settings file %s: %w", s.path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(s); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", s.path, err)
	}
	return nil
}

// Path returns where the record is persisted.
func (s *Settings) Path() string {
	return s.path
}

// SetPath overrides the persistence location (tests, --config flag).
func (s *Settings) SetPath(path string) {
	s.path = path
}

// HasCredentials reports whether an OAuth client is configured.
func (s *Settings) HasCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// HasToken reports whether an access token is present.
func (s *Settings) HasToken() bool {
	return s.AccessToken != ""
}

// normalize filters empty calendar ids; duplicates are allowed.
func (s *Settings) normalize() {
	ids := s.CalendarIDs[:0]
	for _, id := range s.CalendarIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	s.CalendarIDs = ids
}

func (s *Settings) validate() error {
	if s.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %d", s.RefreshInterval)
	}
	switch s.InsertMode {
	case ModeMarker, ModeHeading, ModeTop, ModeBottom:
	default:
		return fmt.Errorf("unknown insert_mode %q", s.InsertMode)
	}
	if s.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %d", s.Margin)
	}
	return nil
}
