package domain

// TogglEntry represents one row of a Toggl detailed report.
type TogglEntry struct {
	ID          int64
	Description string
	Dur         int64  // Milliseconds
	Start       string // As returned by Toggl, including the trailing offset
	Tags        []string
}
