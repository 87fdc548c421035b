package row

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Record is one time entry in a source-specific shape. Implementations only
// extract fields; everything derived from them is shared.
type Record interface {
	Tags() string
	Description() string
	// IssueText is the text scanned for an embedded issue id.
	IssueText() string
	Duration() (Duration, error)
	// Start is the entry start, read as UTC.
	Start() (time.Time, error)
	// Summary is a one-line rendering for prompts and logs.
	Summary() string
}

// FormatError reports a duration or start value that does not match the
// layout its source uses.
type FormatError struct {
	Field  string
	Value  string
	Layout string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("field %s: cannot parse %q as %s: %v", e.Field, e.Value, e.Layout, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

var issuePattern = regexp.MustCompile(`(?i)[a-z0-9]*-[0-9]+`)

// FindIssueID returns the first issue id (ABC-123) embedded in text.
func FindIssueID(text string) (string, bool) {
	id := issuePattern.FindString(text)
	return id, id != ""
}

// ProjectIDOf returns the project short name of an issue id.
func ProjectIDOf(issueID string) (string, bool) {
	project, _, ok := strings.Cut(issueID, "-")
	return project, ok
}

// IsIgnored reports whether the record's tags ask for it to be skipped.
func IsIgnored(rec Record) bool {
	return strings.Contains(strings.ToLower(rec.Tags()), "ignore")
}

// StartMillis returns the record start as Unix epoch milliseconds.
func StartMillis(rec Record) (int64, error) {
	t, err := rec.Start()
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

func parseStart(field, value, layout string) (time.Time, error) {
	t, err := time.Parse(layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &FormatError{Field: field, Value: value, Layout: layout, Err: err}
	}
	return t, nil
}

func parseClockField(field, value string) (Duration, error) {
	d, err := ParseClock(value)
	if err != nil {
		return Duration{}, &FormatError{Field: field, Value: value, Layout: "H:M:S", Err: err}
	}
	return d, nil
}

// csvSummary renders "Mon, 02 Jan / 1h45m / description".
func csvSummary(rec Record) string {
	parts := make([]string, 0, 3)
	if t, err := rec.Start(); err == nil {
		parts = append(parts, t.Format("Mon, 02 Jan"))
	} else {
		parts = append(parts, "?")
	}
	if d, err := rec.Duration(); err == nil {
		parts = append(parts, d.String())
	} else {
		parts = append(parts, "?")
	}
	parts = append(parts, rec.Description())
	return strings.Join(parts, " / ")
}
