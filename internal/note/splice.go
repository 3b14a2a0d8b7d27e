package note

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrTargetNotFound means the configured heading or marker pair is
	// absent from the document and the strategy has no fallback.
	ErrTargetNotFound = errors.New("insertion target not found")

	// ErrEmptyContent means the content is blank after trimming; the
	// document must be left untouched.
	ErrEmptyContent = errors.New("content is empty")
)

// sectionEndRe terminates a heading's section at the next line starting
// with one-or-more '#' followed by whitespace, regardless of level.
var sectionEndRe = regexp.MustCompile(`(?m)^#+\s`)

// headingLineRe matches a markdown heading of level 1-6 and captures its
// text.
var headingLineRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

// Result is the outcome of splicing content into a document.
type Result struct {
	// Text is the new document text.
	Text string

	// Fallback is set when the configured heading was missing and the
	// content was prepended to the document instead. Callers should
	// surface a warning naming the missing heading.
	Fallback bool
}

// Strategy splices formatted content into a document. Implementations
// are pure: they never touch the filesystem.
type Strategy interface {
	Insert(doc, content string) (Result, error)
}

// MarkerPair rewrites the region between two literal markers inside the
// section under a heading. The markers are preserved verbatim, so
// repeated insertion is idempotent: only the interior is replaced.
type MarkerPair struct {
	Heading     string
	StartMarker string
	EndMarker   string
}

// Insert locates Heading as a full line, bounds its section at the next
// heading line, and replaces everything strictly between StartMarker and
// EndMarker with the trimmed content on its own lines. A missing heading,
// a missing marker, or markers out of order yields ErrTargetNotFound and
// no write.
func (m MarkerPair) Insert(doc, content string) (Result, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Result{}, ErrEmptyContent
	}

	headingRe := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(m.Heading) + `[ \t]*$`)
	loc := headingRe.FindStringIndex(doc)
	if loc == nil {
		return Result{}, fmt.Errorf("heading %q: %w", m.Heading, ErrTargetNotFound)
	}
	headingEnd := loc[1]

	sectionEnd := len(doc)
	if next := sectionEndRe.FindStringIndex(doc[headingEnd:]); next != nil {
		sectionEnd = headingEnd + next[0]
	}
	section := doc[headingEnd:sectionEnd]

	startIdx := strings.Index(section, m.StartMarker)
	endIdx := strings.Index(section, m.EndMarker)
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return Result{}, fmt.Errorf("markers %q..%q: %w", m.StartMarker, m.EndMarker, ErrTargetNotFound)
	}

	afterStart := headingEnd + startIdx + len(m.StartMarker)
	beforeEnd := headingEnd + endIdx

	return Result{Text: doc[:afterStart] + "\n" + trimmed + "\n" + doc[beforeEnd:]}, nil
}

// PositionalHeading inserts content under a configured heading,
// replacing the list that immediately follows it. When the heading is
// missing, content is prepended to the whole document and Fallback is
// set.
type PositionalHeading struct {
	Heading string
	// Margin is the number of extra blank lines between the heading and
	// the content.
	Margin int
}

// Insert finds the heading, deletes the run of blank and list-item lines
// immediately after it, and places the trimmed content there with the
// configured margin. The first line that is neither blank nor a list
// item stops the deletion and is preserved.
func (p PositionalHeading) Insert(doc, content string) (Result, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Result{}, ErrEmptyContent
	}

	lines := strings.Split(doc, "\n")
	headingIdx := -1
	for i, line := range lines {
		if p.matchesHeading(line) {
			headingIdx = i
			break
		}
	}
	if headingIdx == -1 {
		return Result{Text: trimmed + "\n\n" + doc, Fallback: true}, nil
	}

	end := headingIdx + 1
	for end < len(lines) && isReplaceableLine(lines[end]) {
		end++
	}

	head := strings.Join(lines[:headingIdx+1], "\n")
	rest := strings.Join(lines[end:], "\n")

	return Result{Text: head + strings.Repeat("\n", p.Margin+1) + trimmed + "\n" + rest}, nil
}

// matchesHeading compares a document line against the configured
// heading. A configured value starting with '#' must match the whole
// heading line; otherwise any heading level whose text equals the value
// matches.
func (p PositionalHeading) matchesHeading(line string) bool {
	if strings.HasPrefix(p.Heading, "#") {
		return strings.TrimRight(line, " \t") == strings.TrimRight(p.Heading, " \t")
	}
	m := headingLineRe.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	return strings.TrimSpace(m[2]) == strings.TrimSpace(p.Heading)
}

// isReplaceableLine reports whether a line belongs to the auto-detected
// list under a heading: blank, a list item, or an indented list item.
func isReplaceableLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(line, "\t- ")
}

// Top prepends content to the whole document.
type Top struct{}

func (Top) Insert(doc, content string) (Result, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Result{}, ErrEmptyContent
	}
	return Result{Text: trimmed + "\n\n" + doc}, nil
}

// Bottom appends content to the whole document.
type Bottom struct{}

func (Bottom) Insert(doc, content string) (Result, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Result{}, ErrEmptyContent
	}
	return Result{Text: doc + "\n\n" + trimmed}, nil
}
