package domain

import (
	"strconv"
	"time"
)

// WorkItem is a logged time entry on a YouTrack issue.
type WorkItem struct {
	ID          string // Set only for items read back from the tracker
	Description string
	Duration    int   // Minutes
	Date        int64 // Unix epoch milliseconds
}

// DurationString renders the duration the way the tracker encodes it.
func (w WorkItem) DurationString() string { return strconv.Itoa(w.Duration) }

// DateString renders the date the way the tracker encodes it.
func (w WorkItem) DateString() string { return strconv.FormatInt(w.Date, 10) }

// Same reports whether two work items describe the same logged time.
// Duration and date compare numerically, description exactly.
func (w WorkItem) Same(o WorkItem) bool {
	return w.Duration == o.Duration && w.Date == o.Date && w.Description == o.Description
}

// ImportStatus is the terminal state of one imported row.
type ImportStatus string

const (
	StatusUploaded  ImportStatus = "uploaded"
	StatusDuplicate ImportStatus = "duplicate"
	StatusIgnored   ImportStatus = "ignored"
	StatusFailed    ImportStatus = "failed"
)

// ImportOutcome is the audit record kept for every processed row.
type ImportOutcome struct {
	Source     string
	Summary    string
	IssueID    string
	Item       WorkItem
	Status     ImportStatus
	Reason     string
	ImportedAt time.Time
}
