// Package notesync wires the date extractor, calendar client, formatter
// and splicer into the insert-today's-events operation, and runs the
// auto-insert/auto-refresh lifecycle over a note vault.
package notesync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"gcalnote/internal/calendar"
	"gcalnote/internal/config"
	"gcalnote/internal/logging"
	"gcalnote/internal/note"
	"gcalnote/internal/server"
	"gcalnote/internal/vault"
)

var (
	// ErrAuthMissing blocks every operation until the user authenticates.
	ErrAuthMissing = errors.New("not authenticated with Google; run 'gcalnote auth' first")

	// ErrDateNotResolvable means the note name carries no YYYY-MM-DD date.
	ErrDateNotResolvable = errors.New("note name contains no date")
)

// EventSource fetches the events for one calendar day.
type EventSource interface {
	FetchEventsForDate(ctx context.Context, date string) ([]calendar.Event, error)
}

// Orchestrator drives insert cycles, tracks the note currently being
// auto-refreshed, and owns the recurring refresh task. The active-note
// field and the armed/disarmed state of the timer are updated together
// under one lock; the timer exists exactly while an active note does.
type Orchestrator struct {
	// Notify surfaces a short user-visible notice. Defaults to logging.
	Notify func(msg string)

	settings *config.Settings
	events   EventSource
	vault    vault.Vault
	strategy note.Strategy
	logger   *slog.Logger

	mu         sync.Mutex
	activeNote string
	timer      *cron.Cron
}

// New creates an Orchestrator. The splicing strategy is selected from
// the settings' insert mode.
func New(settings *config.Settings, events EventSource, v vault.Vault, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	strategy, err := strategyFromSettings(settings)
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		settings: settings,
		events:   events,
		vault:    v,
		strategy: strategy,
		logger:   logger,
	}
	o.Notify = func(msg string) {
		o.logger.Warn(msg)
	}
	return o, nil
}

func strategyFromSettings(s *config.Settings) (note.Strategy, error) {
	switch s.InsertMode {
	case config.ModeMarker:
		return note.MarkerPair{
			Heading:     s.Heading,
			StartMarker: s.StartMarker,
			EndMarker:   s.EndMarker,
		}, nil
	case config.ModeHeading:
		return note.PositionalHeading{Heading: s.Heading, Margin: s.Margin}, nil
	case config.ModeTop:
		return note.Top{}, nil
	case config.ModeBottom:
		return note.Bottom{}, nil
	default:
		return nil, fmt.Errorf("unknown insert_mode %q", s.InsertMode)
	}
}

// InsertForNote runs one fetch-format-splice cycle for the note at path
// and writes the result back when it changed the document.
func (o *Orchestrator) InsertForNote(ctx context.Context, path string) error {
	if err := o.insertForNote(ctx, path); err != nil {
		server.InsertsTotal.WithLabelValues(logging.StatusError).Inc()
		return err
	}
	server.InsertsTotal.WithLabelValues(logging.StatusSuccess).Inc()
	return nil
}

func (o *Orchestrator) insertForNote(ctx context.Context, path string) error {
	if !o.settings.HasToken() {
		return ErrAuthMissing
	}

	doc, err := o.vault.Read(path)
	if err != nil {
		return err
	}

	date, ok := note.DateFromName(vault.NoteName(path))
	if !ok {
		return fmt.Errorf("%w: %s", ErrDateNotResolvable, path)
	}

	events, err := o.events.FetchEventsForDate(ctx, date)
	if err != nil {
		server.FetchErrorsTotal.Inc()
		return fmt.Errorf("failed to fetch events for %s: %w", date, err)
	}

	content := note.FormatEvents(events)

	res, err := o.strategy.Insert(doc, content)
	switch {
	case errors.Is(err, note.ErrEmptyContent):
		o.logger.Debug("formatted content is empty, skipping write", logging.Note(path))
		return nil
	case errors.Is(err, note.ErrTargetNotFound):
		// Marker mode: silent no-op, logging only.
		o.logger.Info("insertion target not found, leaving note unchanged",
			logging.Note(path), logging.Err(err))
		return nil
	case err != nil:
		return err
	}

	if res.Fallback {
		o.Notify(fmt.Sprintf("Heading %q not found in %s; events were prepended instead", o.settings.Heading, path))
	}

	if res.Text == doc {
		o.logger.Debug("note already up to date", logging.Note(path))
		return nil
	}

	if err := o.vault.Write(path, res.Text); err != nil {
		return err
	}
	o.logger.Info("inserted events into note",
		logging.Operation("insert"), logging.Note(path), slog.String("date", date))
	return nil
}

// Run consumes note-opened events until ctx is cancelled or the channel
// closes, auto-inserting into qualifying notes and keeping the refresh
// timer armed while one is active.
func (o *Orchestrator) Run(ctx context.Context, opened <-chan string) error {
	defer o.Disarm()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case path, ok := <-opened:
			if !ok {
				return nil
			}
			o.NoteOpened(ctx, path)
		}
	}
}

// NoteOpened handles one "note opened/changed" event. A qualifying note
// becomes the active note and gets an immediate insert plus, when
// auto-refresh is enabled, an armed refresh timer. Any other note clears
// the active note and disarms the timer.
func (o *Orchestrator) NoteOpened(ctx context.Context, path string) {
	if !o.settings.AutoInsert {
		return
	}
	if !note.IsDailyNote(path) {
		o.clearActive()
		return
	}

	o.setActive(path)
	if err := o.InsertForNote(ctx, path); err != nil {
		o.surfaceError(path, err)
	}
}

// ActiveNote returns the note currently being auto-refreshed ("" when
// none).
func (o *Orchestrator) ActiveNote() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeNote
}

// Disarm cancels the refresh timer and clears the active note.
// Idempotent.
func (o *Orchestrator) Disarm() {
	o.clearActive()
}

func (o *Orchestrator) setActive(path string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.activeNote = path
	if !o.settings.AutoRefresh || o.timer != nil {
		return
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %ds", o.settings.RefreshInterval)
	if _, err := c.AddFunc(spec, o.refreshTick); err != nil {
		o.logger.Error("failed to schedule auto-refresh", logging.Err(err))
		return
	}
	c.Start()
	o.timer = c
	o.logger.Debug("auto-refresh armed", logging.Note(path), slog.String("interval", spec))
}

func (o *Orchestrator) clearActive() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.activeNote = ""
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
		o.logger.Debug("auto-refresh disarmed")
	}
}

// refreshTick fires unconditionally at the configured interval while
// armed. It does not await a still-running previous cycle; overlapping
// cycles race to write the note and the last write wins.
func (o *Orchestrator) refreshTick() {
	server.RefreshCyclesTotal.Inc()

	o.mu.Lock()
	path := o.activeNote
	o.mu.Unlock()
	if path == "" {
		return
	}
	if !note.IsDailyNote(path) {
		o.clearActive()
		return
	}

	if err := o.InsertForNote(context.Background(), path); err != nil {
		o.surfaceError(path, err)
	}
}

// surfaceError logs the detailed error and raises one short generic
// notice. Credentials and API detail stay out of the notice.
func (o *Orchestrator) surfaceError(path string, err error) {
	o.logger.Error("insert cycle failed", logging.Note(path), logging.Err(err))
	switch {
	case errors.Is(err, ErrAuthMissing):
		o.Notify("Authenticate with Google first (gcalnote auth)")
	case errors.Is(err, ErrDateNotResolvable):
		o.Notify("Could not find a date in the note name")
	default:
		o.Notify("Failed to fetch calendar events")
	}
}
