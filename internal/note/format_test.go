package note

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"gcalnote/internal/calendar"
)

// localRFC3339 renders a local wall-clock time as an RFC 3339 string so
// expectations stay independent of the test machine's zone.
func localRFC3339(hour, min int) string {
	return time.Date(2024, 3, 15, hour, min, 0, 0, time.Local).Format(time.RFC3339)
}

func TestFormatEventsEmpty(t *testing.T) {
	assert.Equal(t, "No events scheduled", FormatEvents(nil))
	assert.Equal(t, "No events scheduled", FormatEvents([]calendar.Event{}))
}

func TestFormatEventsSimple(t *testing.T) {
	events := []calendar.Event{
		{Title: "Standup", Start: localRFC3339(9, 0), End: localRFC3339(9, 15)},
	}

	got := FormatEvents(events)
	assert.Equal(t, "- **09:00 - 09:15** Standup\n", got)
}

func TestFormatEventsColoredUnderline(t *testing.T) {
	events := []calendar.Event{
		{Title: "Review", Start: localRFC3339(14, 0), End: localRFC3339(15, 0), CalendarColor: "#33b679"},
	}

	got := FormatEvents(events)
	assert.Contains(t, got, `text-decoration-color: #33b679`)
	assert.Contains(t, got, ">14:00 - 15:00</span> Review")
	assert.NotContains(t, got, "**")
}

func TestFormatEventsAllDay(t *testing.T) {
	// Bare dates do not parse as timestamps, so start and end both
	// format as the all-day label and compare equal.
	events := []calendar.Event{
		{Title: "Holiday", Start: "2024-03-15", End: "2024-03-16"},
	}

	got := FormatEvents(events)
	assert.Equal(t, "- **All-day event** Holiday\n", got)
}

func TestFormatEventsAllDayByFormattedEquality(t *testing.T) {
	// Distinct instants inside the same minute format identically and
	// therefore count as all-day. Documented heuristic, not a bug.
	start := time.Date(2024, 3, 15, 9, 0, 1, 0, time.Local).Format(time.RFC3339)
	end := time.Date(2024, 3, 15, 9, 0, 59, 0, time.Local).Format(time.RFC3339)
	events := []calendar.Event{{Title: "Blink", Start: start, End: end}}

	assert.Equal(t, "- **All-day event** Blink\n", FormatEvents(events))
}

func TestFormatEventsDetailLines(t *testing.T) {
	events := []calendar.Event{
		{
			Title:          "Offsite",
			Start:          localRFC3339(10, 0),
			End:            localRFC3339(12, 0),
			Location:       "Shibuya Office",
			Description:    "Bring laptop",
			Attendees:      []string{"a@example.com", "b@example.com"},
			ConferenceLink: "https://meet.google.com/abc-defg-hij",
		},
	}

	got := FormatEvents(events)
	expected := "- **10:00 - 12:00** Offsite\n" +
		"\t- **Location:** [Shibuya Office](https://www.google.com/maps/search/?api=1&query=Shibuya+Office)\n" +
		"\t- **Notes:** Bring laptop\n" +
		"\t- **Attendees:** a@example.com, b@example.com\n" +
		"\t- **Link:** [📹 Join Google Meet](https://meet.google.com/abc-defg-hij)\n"
	assert.Equal(t, expected, got)
}

func TestFormatEventsPartialDetails(t *testing.T) {
	events := []calendar.Event{
		{
			Title:          "Call",
			Start:          localRFC3339(16, 30),
			End:            localRFC3339(17, 0),
			ConferenceLink: "https://meet.google.com/xyz",
		},
	}

	got := FormatEvents(events)
	assert.NotContains(t, got, "Location")
	assert.NotContains(t, got, "Notes")
	assert.NotContains(t, got, "Attendees")
	assert.Contains(t, got, "\t- **Link:** [📹 Join Google Meet](https://meet.google.com/xyz)\n")
}

func TestFormatEventsPreservesInputOrder(t *testing.T) {
	// The formatter never reorders; sorting happens upstream.
	events := []calendar.Event{
		{Title: "Later", Start: localRFC3339(15, 0), End: localRFC3339(16, 0)},
		{Title: "Earlier", Start: localRFC3339(8, 0), End: localRFC3339(9, 0)},
	}

	got := FormatEvents(events)
	assert.Equal(t, "- **15:00 - 16:00** Later\n- **08:00 - 09:00** Earlier\n", got)
}
