package notesync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gcalnote/internal/calendar"
	"gcalnote/internal/config"
)

type fakeVault struct {
	notes  map[string]string
	writes int
}

func newFakeVault(notes map[string]string) *fakeVault {
	return &fakeVault{notes: notes}
}

func (v *fakeVault) Read(path string) (string, error) {
	doc, ok := v.notes[path]
	if !ok {
		return "", fmt.Errorf("note %s not found", path)
	}
	return doc, nil
}

func (v *fakeVault) Write(path, content string) error {
	v.notes[path] = content
	v.writes++
	return nil
}

type fakeEvents struct {
	events   []calendar.Event
	err      error
	lastDate string
	calls    int
}

func (f *fakeEvents) FetchEventsForDate(ctx context.Context, date string) ([]calendar.Event, error) {
	f.calls++
	f.lastDate = date
	return f.events, f.err
}

func testSettings() *config.Settings {
	s := config.Default()
	s.AccessToken = "tok"
	s.RefreshToken = "refresh"
	return s
}

func localRFC3339(hour, min int) string {
	return time.Date(2024, 3, 15, hour, min, 0, 0, time.Local).Format(time.RFC3339)
}

func TestInsertForNoteSplicesEvents(t *testing.T) {
	v := newFakeVault(map[string]string{
		"2024-03-15.md": "### Schedule\n%%start%%\n%%end%%\nfooter",
	})
	events := &fakeEvents{events: []calendar.Event{
		{Title: "Standup", Start: localRFC3339(9, 0), End: localRFC3339(9, 15)},
	}}

	orch, err := New(testSettings(), events, v, nil)
	require.NoError(t, err)

	require.NoError(t, orch.InsertForNote(context.Background(), "2024-03-15.md"))

	assert.Equal(t, "2024-03-15", events.lastDate)
	assert.Equal(t, "### Schedule\n%%start%%\n- **09:00 - 09:15** Standup\n%%end%%\nfooter",
		v.notes["2024-03-15.md"])
}

func TestInsertForNoteRequiresToken(t *testing.T) {
	s := testSettings()
	s.AccessToken = ""

	orch, err := New(s, &fakeEvents{}, newFakeVault(nil), nil)
	require.NoError(t, err)

	err = orch.InsertForNote(context.Background(), "2024-03-15.md")
	assert.ErrorIs(t, err, ErrAuthMissing)
}

func TestInsertForNoteRequiresDate(t *testing.T) {
	v := newFakeVault(map[string]string{"ideas.md": "### Schedule\n%%start%%\n%%end%%\n"})

	orch, err := New(testSettings(), &fakeEvents{}, v, nil)
	require.NoError(t, err)

	err = orch.InsertForNote(context.Background(), "ideas.md")
	assert.ErrorIs(t, err, ErrDateNotResolvable)
}

func TestInsertForNoteFetchErrorPropagates(t *testing.T) {
	v := newFakeVault(map[string]string{"2024-03-15.md": "doc"})
	events := &fakeEvents{err: errors.New("boom")}

	orch, err := New(testSettings(), events, v, nil)
	require.NoError(t, err)

	err = orch.InsertForNote(context.Background(), "2024-03-15.md")
	require.Error(t, err)
	assert.Zero(t, v.writes)
}

func TestInsertForNoteMissingMarkersIsSilent(t *testing.T) {
	v := newFakeVault(map[string]string{"2024-03-15.md": "no section here"})
	events := &fakeEvents{events: []calendar.Event{
		{Title: "Standup", Start: localRFC3339(9, 0), End: localRFC3339(9, 15)},
	}}

	orch, err := New(testSettings(), events, v, nil)
	require.NoError(t, err)

	var notices []string
	orch.Notify = func(msg string) { notices = append(notices, msg) }

	// Marker mode with a missing target is a silent no-op.
	require.NoError(t, orch.InsertForNote(context.Background(), "2024-03-15.md"))
	assert.Zero(t, v.writes)
	assert.Empty(t, notices)
}

func TestInsertForNoteHeadingFallbackWarns(t *testing.T) {
	s := testSettings()
	s.InsertMode = config.ModeHeading
	s.Heading = "## Today"

	v := newFakeVault(map[string]string{"2024-03-15.md": "# Journal\nbody\n"})
	events := &fakeEvents{events: []calendar.Event{
		{Title: "Standup", Start: localRFC3339(9, 0), End: localRFC3339(9, 15)},
	}}

	orch, err := New(s, events, v, nil)
	require.NoError(t, err)

	var notices []string
	orch.Notify = func(msg string) { notices = append(notices, msg) }

	require.NoError(t, orch.InsertForNote(context.Background(), "2024-03-15.md"))

	assert.Equal(t, "- **09:00 - 09:15** Standup\n\n# Journal\nbody\n", v.notes["2024-03-15.md"])
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0], `"## Today"`)
}

func TestInsertForNoteSkipsWriteWhenUnchanged(t *testing.T) {
	doc := "### Schedule\n%%start%%\n- **09:00 - 09:15** Standup\n%%end%%\n"
	v := newFakeVault(map[string]string{"2024-03-15.md": doc})
	events := &fakeEvents{events: []calendar.Event{
		{Title: "Standup", Start: localRFC3339(9, 0), End: localRFC3339(9, 15)},
	}}

	orch, err := New(testSettings(), events, v, nil)
	require.NoError(t, err)

	require.NoError(t, orch.InsertForNote(context.Background(), "2024-03-15.md"))
	assert.Zero(t, v.writes)
}

func TestNoteOpenedTracksActiveNote(t *testing.T) {
	s := testSettings()
	s.AutoRefresh = false // keep the timer out of this test

	v := newFakeVault(map[string]string{
		"daily/2024-03-15.md": "### Schedule\n%%start%%\n%%end%%\n",
		"projects/plan.md":    "unrelated",
	})
	events := &fakeEvents{events: []calendar.Event{
		{Title: "Standup", Start: localRFC3339(9, 0), End: localRFC3339(9, 15)},
	}}

	orch, err := New(s, events, v, nil)
	require.NoError(t, err)

	orch.NoteOpened(context.Background(), "daily/2024-03-15.md")
	assert.Equal(t, "daily/2024-03-15.md", orch.ActiveNote())
	assert.Equal(t, 1, events.calls)

	// A non-qualifying note clears the active note.
	orch.NoteOpened(context.Background(), "projects/plan.md")
	assert.Equal(t, "", orch.ActiveNote())
}

func TestNoteOpenedRespectsAutoInsertFlag(t *testing.T) {
	s := testSettings()
	s.AutoInsert = false

	events := &fakeEvents{}
	orch, err := New(s, events, newFakeVault(nil), nil)
	require.NoError(t, err)

	orch.NoteOpened(context.Background(), "daily/2024-03-15.md")
	assert.Zero(t, events.calls)
	assert.Equal(t, "", orch.ActiveNote())
}

func TestDisarmIsIdempotent(t *testing.T) {
	orch, err := New(testSettings(), &fakeEvents{}, newFakeVault(nil), nil)
	require.NoError(t, err)

	orch.Disarm()
	orch.Disarm()
	assert.Equal(t, "", orch.ActiveNote())
}

func TestStrategyFromSettings(t *testing.T) {
	tests := []struct {
		mode string
		ok   bool
	}{
		{config.ModeMarker, true},
		{config.ModeHeading, true},
		{config.ModeTop, true},
		{config.ModeBottom, true},
		{"sideways", false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			s := config.Default()
			s.InsertMode = tt.mode
			_, err := strategyFromSettings(s)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
