package row

import (
	"strings"
	"time"
)

// Layouts of the start timestamps each source exports.
const (
	ManicTimeLayout = "02/01/2006 15:04:05"
	TogglCSVLayout  = "2006-01-02 15:04:05"
	TogglAPILayout  = "2006-01-02T15:04:05"
)

// fields is a CSV record keyed by header name.
type fields map[string]string

func (f fields) get(key string) string { return f[key] }

// ManicTime is a row from a ManicTime tag export:
// Name, Start, End, Duration, Notes.
type ManicTime struct{ f fields }

func NewManicTime(record map[string]string) *ManicTime { return &ManicTime{f: record} }

func (r *ManicTime) Tags() string        { return r.f.get("Name") }
func (r *ManicTime) Description() string { return r.f.get("Notes") }
func (r *ManicTime) IssueText() string   { return r.Tags() }

func (r *ManicTime) Duration() (Duration, error) {
	return parseClockField("Duration", r.f.get("Duration"))
}

func (r *ManicTime) Start() (time.Time, error) {
	return parseStart("Start", r.f.get("Start"), ManicTimeLayout)
}

func (r *ManicTime) Summary() string { return csvSummary(r) }

// TogglCSV is a row from a Toggl detailed CSV export. The start is split over
// "Start date" and "Start time", and issue ids may appear in either the
// description or the tags.
type TogglCSV struct{ f fields }

func NewTogglCSV(record map[string]string) *TogglCSV { return &TogglCSV{f: record} }

func (r *TogglCSV) Tags() string        { return r.f.get("Tags") }
func (r *TogglCSV) Description() string { return r.f.get("Description") }

func (r *TogglCSV) IssueText() string {
	return strings.TrimSpace(r.Description() + " " + r.Tags())
}

func (r *TogglCSV) Duration() (Duration, error) {
	return parseClockField("Duration", r.f.get("Duration"))
}

func (r *TogglCSV) Start() (time.Time, error) {
	return parseStart("Start", r.f.get("Start date")+" "+r.f.get("Start time"), TogglCSVLayout)
}

func (r *TogglCSV) Summary() string { return csvSummary(r) }
