// Package calendar fetches Google Calendar events over the v3 REST API.
//
// The client issues authenticated range queries per calendar, enriches
// events with a session-cached calendar color, and merges the results in
// ascending start order. Authentication is a bearer token supplied by a
// TokenSource; on a 401 the client refreshes the token exactly once and
// retries the request once before surfacing the failure.
package calendar
