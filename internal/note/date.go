package note

import "regexp"

var (
	dateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

	// dailyNoteRe matches paths of notes that qualify for auto-insertion:
	// localized synonyms for "daily"/"journal" or a date-like substring.
	// Intentionally permissive; a stray date in an unrelated path is an
	// accepted false positive.
	dailyNoteRe = regexp.MustCompile(`(?i)デイリーノート|daily|journal|\d{4}-\d{2}-\d{2}`)
)

// DateFromName extracts the first YYYY-MM-DD substring from a note's
// short name (no directory, no extension). Matching is substring search,
// so surrounding text does not matter. Returns ok=false when the name
// contains no date.
func DateFromName(name string) (string, bool) {
	m := dateRe.FindString(name)
	if m == "" {
		return "", false
	}
	return m, true
}

// IsDailyNote reports whether the note at path qualifies for
// auto-insertion and auto-refresh.
func IsDailyNote(path string) bool {
	return dailyNoteRe.MatchString(path)
}
