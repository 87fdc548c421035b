package row

import (
	"errors"
	"testing"
	"time"

	"github.com/harryrobbins/youtrack-time-importer/internal/domain"
)

func TestFindIssueID(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"Working on ABC-123 today", "ABC-123", true},
		{"no id here", "", false},
		{"", "", false},
		{"abc-7 and XYZ-9", "abc-7", true},
		{"fix P2-45", "P2-45", true},
	}
	for _, tt := range tests {
		got, ok := FindIssueID(tt.text)
		if got != tt.want || ok != tt.ok {
			t.Errorf("FindIssueID(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.ok)
		}
	}
}

func TestProjectIDOf(t *testing.T) {
	if got, ok := ProjectIDOf("ABC-123"); !ok || got != "ABC" {
		t.Fatalf("ProjectIDOf(ABC-123) = %q, %v", got, ok)
	}
	if _, ok := ProjectIDOf(""); ok {
		t.Fatalf("ProjectIDOf(\"\") should fail")
	}
}

func TestIsIgnored(t *testing.T) {
	for _, tags := range []string{"ignore", "Ignore me", "ABC-1, IGNORE", "please iGnOrE"} {
		if !IsIgnored(NewManicTime(map[string]string{"Name": tags})) {
			t.Errorf("IsIgnored(%q) = false, want true", tags)
		}
	}
	for _, tags := range []string{"", "ABC-1 meeting", "ign ore"} {
		if IsIgnored(NewManicTime(map[string]string{"Name": tags})) {
			t.Errorf("IsIgnored(%q) = true, want false", tags)
		}
	}
	api := NewTogglAPI(domain.TogglEntry{Description: "ABC-1", Tags: []string{"billable", "Ignore"}})
	if !IsIgnored(api) {
		t.Errorf("api entry tagged Ignore should be ignored")
	}
}

func TestManicTimeFields(t *testing.T) {
	r := NewManicTime(map[string]string{
		"Name":     "ABC-123 meeting",
		"Duration": "0:30:00",
		"Start":    "01/01/2020 09:00:00",
		"Notes":    "sync",
	})
	if got := r.Description(); got != "sync" {
		t.Errorf("Description = %q", got)
	}
	if got, _ := FindIssueID(r.IssueText()); got != "ABC-123" {
		t.Errorf("issue id = %q", got)
	}
	ms, err := StartMillis(r)
	if err != nil {
		t.Fatalf("StartMillis: %v", err)
	}
	if want := time.Date(2020, 1, 1, 9, 0, 0, 0, time.UTC).UnixMilli(); ms != want {
		t.Errorf("StartMillis = %d, want %d", ms, want)
	}
	if got, want := r.Summary(), "Wed, 01 Jan / 30m / sync"; got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}

func TestTogglCSVFields(t *testing.T) {
	r := NewTogglCSV(map[string]string{
		"Description": "Reviewing",
		"Tags":        "XYZ-42",
		"Duration":    "01:45:10",
		"Start date":  "2020-03-02",
		"Start time":  "13:15:00",
	})
	if got, _ := FindIssueID(r.IssueText()); got != "XYZ-42" {
		t.Errorf("issue id from tags = %q", got)
	}
	d, err := r.Duration()
	if err != nil || d.TotalMinutes() != 105 {
		t.Errorf("Duration = %+v, %v", d, err)
	}
	start, err := r.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if want := time.Date(2020, 3, 2, 13, 15, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("Start = %v, want %v", start, want)
	}
	if got, want := r.Summary(), "Mon, 02 Mar / 1h45m / Reviewing"; got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
}

func TestTogglCSVIssueFromDescription(t *testing.T) {
	r := NewTogglCSV(map[string]string{"Description": "DEV-9 standup", "Tags": ""})
	if got, ok := FindIssueID(r.IssueText()); !ok || got != "DEV-9" {
		t.Errorf("issue id = %q, %v", got, ok)
	}
}

func TestTogglAPIFields(t *testing.T) {
	r := NewTogglAPI(domain.TogglEntry{
		Description: "ABC-5 planning",
		Dur:         6_310_000,
		Start:       "2015-04-07T09:30:00+02:00",
		Tags:        []string{"billable"},
	})
	d, err := r.Duration()
	if err != nil || d.TotalMinutes() != 105 {
		t.Fatalf("Duration = %+v, %v", d, err)
	}
	start, err := r.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if want := time.Date(2015, 4, 7, 9, 30, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("Start = %v, want %v (offset must be dropped, not applied)", start, want)
	}
	if got, want := r.Summary(), "ABC-5 planning - 09:30 07/04/15"; got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
	if got := r.Tags(); got != "billable" {
		t.Errorf("Tags = %q", got)
	}
}

func TestStripOffset(t *testing.T) {
	tests := map[string]string{
		"2015-04-07T09:30:00+02:00": "2015-04-07T09:30:00",
		"2015-04-07T09:30:00-05:00": "2015-04-07T09:30:00",
		"2015-04-07T09:30:00Z":      "2015-04-07T09:30:00",
		"2015-04-07T09:30:00":       "2015-04-07T09:30:00",
	}
	for in, want := range tests {
		if got := stripOffset(in); got != want {
			t.Errorf("stripOffset(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatErrors(t *testing.T) {
	r := NewManicTime(map[string]string{"Duration": "30 min", "Start": "2020-01-01 09:00"})
	_, err := r.Duration()
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Field != "Duration" {
		t.Fatalf("Duration error = %v, want *FormatError on Duration", err)
	}
	_, err = r.Start()
	if !errors.As(err, &fe) || fe.Layout != ManicTimeLayout {
		t.Fatalf("Start error = %v, want *FormatError with ManicTime layout", err)
	}
	if got := r.Summary(); got != "? / ? / " {
		t.Errorf("Summary of malformed row = %q", got)
	}

	running := NewTogglAPI(domain.TogglEntry{Dur: -1})
	if _, err := running.Duration(); !errors.As(err, &fe) {
		t.Errorf("running entry duration error = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"manictime", "Toggl-CSV", " toggl-api "} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q): %v", in, err)
		}
	}
	if _, err := ParseFormat("harvest"); err == nil {
		t.Errorf("ParseFormat(harvest) should fail")
	}
	if _, err := FromRecord(FormatTogglAPI, nil); err == nil {
		t.Errorf("FromRecord(toggl-api) should fail")
	}
	rec, err := FromRecord(FormatTogglCSV, map[string]string{"Tags": "x"})
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if _, ok := rec.(*TogglCSV); !ok {
		t.Errorf("FromRecord(toggl-csv) = %T", rec)
	}
}
