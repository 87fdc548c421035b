package row

import (
	"fmt"
	"strings"
	"time"

	"github.com/harryrobbins/youtrack-time-importer/internal/domain"
)

// TogglAPI is an entry of the Toggl detailed report API.
type TogglAPI struct{ e domain.TogglEntry }

func NewTogglAPI(entry domain.TogglEntry) *TogglAPI { return &TogglAPI{e: entry} }

func (r *TogglAPI) Tags() string        { return strings.Join(r.e.Tags, ", ") }
func (r *TogglAPI) Description() string { return r.e.Description }
func (r *TogglAPI) IssueText() string   { return r.e.Description }

func (r *TogglAPI) Duration() (Duration, error) {
	if r.e.Dur < 0 {
		return Duration{}, &FormatError{Field: "dur", Value: fmt.Sprint(r.e.Dur), Layout: "milliseconds",
			Err: fmt.Errorf("entry is still running")}
	}
	return FromMillis(r.e.Dur), nil
}

// Start parses the local wall-clock start. The trailing UTC offset Toggl
// appends is dropped, not applied.
func (r *TogglAPI) Start() (time.Time, error) {
	return parseStart("start", stripOffset(r.e.Start), TogglAPILayout)
}

func (r *TogglAPI) Summary() string {
	t, err := r.Start()
	if err != nil {
		return r.e.Description
	}
	return fmt.Sprintf("%s - %s %s", r.e.Description, t.Format("15:04"), t.Format("02/01/06"))
}

// stripOffset removes a trailing "Z", "+hh:mm" or "-hh:mm" from an ISO 8601
// timestamp.
func stripOffset(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '+'); i >= 0 {
		return s[:i]
	}
	if strings.HasSuffix(s, "Z") {
		return s[:len(s)-1]
	}
	// A negative offset follows the time part, which starts after 'T'.
	if t := strings.IndexByte(s, 'T'); t >= 0 {
		if i := strings.LastIndexByte(s, '-'); i > t {
			return s[:i]
		}
	}
	return s
}
