package note

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"gcalnote/internal/calendar"
)

const (
	noEventsMessage = "No events scheduled"
	allDayLabel     = "All-day event"

	mapsSearchURL = "https://www.google.com/maps/search/?api=1&query="
	meetLinkLabel = "📹 Join Google Meet"
)

// FormatEvents renders a list of events as a markdown list, one event per
// line, in input order (sorting happens upstream). An empty list yields a
// fixed sentence.
//
// The time range is bold, or color-underlined when the event carries a
// calendar color. An event whose formatted start time equals its
// formatted end time is rendered with the all-day label; this compares
// formatted strings, not instants, so distinct instants that format
// identically also count as all-day.
func FormatEvents(events []calendar.Event) string {
	if len(events) == 0 {
		return noEventsMessage
	}

	var b strings.Builder
	for _, ev := range events {
		startTime := formatClock(ev.Start)
		endTime := formatClock(ev.End)

		timeDisplay := fmt.Sprintf("%s - %s", startTime, endTime)
		if startTime == endTime {
			timeDisplay = allDayLabel
		}

		timeText := fmt.Sprintf("**%s**", timeDisplay)
		if ev.CalendarColor != "" {
			timeText = fmt.Sprintf(
				`<span style="text-decoration: underline; text-decoration-color: %s; text-decoration-thickness: 2px; font-weight: bold;">%s</span>`,
				ev.CalendarColor, timeDisplay)
		}

		fmt.Fprintf(&b, "- %s %s\n", timeText, ev.Title)

		// Detail lines in fixed order; absent fields produce no line.
		if ev.Location != "" {
			mapURL := mapsSearchURL + url.QueryEscape(ev.Location)
			fmt.Fprintf(&b, "\t- **Location:** [%s](%s)\n", ev.Location, mapURL)
		}
		if ev.Description != "" {
			fmt.Fprintf(&b, "\t- **Notes:** %s\n", ev.Description)
		}
		if len(ev.Attendees) > 0 {
			fmt.Fprintf(&b, "\t- **Attendees:** %s\n", strings.Join(ev.Attendees, ", "))
		}
		if ev.ConferenceLink != "" {
			fmt.Fprintf(&b, "\t- **Link:** [%s](%s)\n", meetLinkLabel, ev.ConferenceLink)
		}
	}

	return b.String()
}

// formatClock renders an RFC 3339 instant as a local hour:minute clock
// time. Values that do not parse as a timestamp (the practical case
// being a bare all-day date) render as the all-day label instead.
func formatClock(value string) string {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return allDayLabel
	}
	return t.Local().Format("15:04")
}
