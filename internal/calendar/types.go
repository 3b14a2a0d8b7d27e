package calendar

import "time"

// Event is one fetched calendar entry. Events are transient: fetched per
// request and never persisted. Start and End are kept as the wire
// strings (an RFC 3339 date-time, or a bare YYYY-MM-DD date for all-day
// entries); the formatter decides how to render them.
type Event struct {
	Title          string
	Start          string
	End            string
	Location       string
	Description    string
	Attendees      []string
	ConferenceLink string

	// CalendarColor is a hex background color attached after the fetch
	// from the calendar-list lookup. Not part of the event's identity.
	CalendarColor string
}

// startTime parses Start for ordering. A bare date parses as local
// midnight; an unparseable value sorts first as the zero time.
func (e Event) startTime() time.Time {
	if t, err := time.Parse(time.RFC3339, e.Start); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02", e.Start, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

// Wire types for the Calendar v3 REST API. Only the consumed fields are
// declared.

type eventsResponse struct {
	Items []eventItem `json:"items"`
}

type eventItem struct {
	Summary     string        `json:"summary"`
	Start       eventDateTime `json:"start"`
	End         eventDateTime `json:"end"`
	Location    string        `json:"location"`
	Description string        `json:"description"`
	Attendees   []attendee    `json:"attendees"`
	HangoutLink string        `json:"hangoutLink"`
}

type eventDateTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

type attendee struct {
	Email string `json:"email"`
}

type calendarListResponse struct {
	Items []calendarListEntry `json:"items"`
}

type calendarListEntry struct {
	ID              string `json:"id"`
	BackgroundColor string `json:"backgroundColor"`
}

// toEvent maps a remote record to an Event. A missing start/end dateTime
// falls back to the all-day date value; a missing title becomes a
// placeholder.
func toEvent(item eventItem) Event {
	title := item.Summary
	if title == "" {
		title = untitledEvent
	}

	ev := Event{
		Title:          title,
		Start:          item.Start.value(),
		End:            item.End.value(),
		Location:       item.Location,
		Description:    item.Description,
		ConferenceLink: item.HangoutLink,
	}
	for _, a := range item.Attendees {
		ev.Attendees = append(ev.Attendees, a.Email)
	}
	return ev
}

func (dt eventDateTime) value() string {
	if dt.DateTime != "" {
		return dt.DateTime
	}
	return dt.Date
}
