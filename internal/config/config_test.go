package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	s, err := Load(path)
	require.NoError(t, err)

	assert.True(t, s.AutoInsert)
	assert.True(t, s.AutoRefresh)
	assert.Equal(t, 60, s.RefreshInterval)
	assert.Equal(t, []string{"primary"}, s.CalendarIDs)
	assert.Equal(t, ModeMarker, s.InsertMode)
	assert.Equal(t, "### Schedule", s.Heading)
	assert.Equal(t, "%%start%%", s.StartMarker)
	assert.Equal(t, "%%end%%", s.EndMarker)
	assert.Equal(t, path, s.Path())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
client_id = "id"
client_secret = "secret"
calendar_ids = ["primary", "", "work@example.com"]
heading = "## Today"
insert_mode = "heading"
margin = 1
`), 0600))

	s, err := Load(path)
	require.NoError(t, err)

	// Overridden keys.
	assert.Equal(t, "id", s.ClientID)
	assert.Equal(t, "## Today", s.Heading)
	assert.Equal(t, ModeHeading, s.InsertMode)
	assert.Equal(t, 1, s.Margin)
	// Empty calendar ids are filtered out.
	assert.Equal(t, []string{"primary", "work@example.com"}, s.CalendarIDs)
	// Untouched keys keep their defaults.
	assert.Equal(t, 60, s.RefreshInterval)
	assert.True(t, s.AutoInsert)
	assert.Equal(t, "%%start%%", s.StartMarker)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero refresh interval", `refresh_interval = 0`},
		{"negative refresh interval", `refresh_interval = -5`},
		{"unknown insert mode", `insert_mode = "sideways"`},
		{"negative margin", `margin = -1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	s, err := Load(path)
	require.NoError(t, err)

	s.AccessToken = "ya29.access"
	s.RefreshToken = "1//refresh"
	s.CalendarIDs = []string{"primary", "team@example.com"}
	require.NoError(t, s.Save())

	// The whole record is written back and survives a reload.
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ya29.access", reloaded.AccessToken)
	assert.Equal(t, "1//refresh", reloaded.RefreshToken)
	assert.Equal(t, []string{"primary", "team@example.com"}, reloaded.CalendarIDs)

	// Tokens are credentials; the file must not be world-readable.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestHasCredentialsAndToken(t *testing.T) {
	s := Default()
	assert.False(t, s.HasCredentials())
	assert.False(t, s.HasToken())

	s.ClientID = "id"
	s.ClientSecret = "secret"
	s.AccessToken = "tok"
	assert.True(t, s.HasCredentials())
	assert.True(t, s.HasToken())
}
