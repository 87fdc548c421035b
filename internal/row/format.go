package row

import (
	"fmt"
	"strings"
)

// Format names a record source.
type Format string

const (
	FormatManicTime Format = "manictime"
	FormatTogglCSV  Format = "toggl-csv"
	FormatTogglAPI  Format = "toggl-api"
)

// ParseFormat accepts the names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatManicTime, FormatTogglCSV, FormatTogglAPI:
		return f, nil
	}
	return "", fmt.Errorf("unknown source %q (want %s, %s or %s)", s, FormatManicTime, FormatTogglCSV, FormatTogglAPI)
}

// FromRecord wraps a CSV record in the variant for its format.
func FromRecord(format Format, record map[string]string) (Record, error) {
	switch format {
	case FormatManicTime:
		return NewManicTime(record), nil
	case FormatTogglCSV:
		return NewTogglCSV(record), nil
	}
	return nil, fmt.Errorf("source %q does not read CSV records", format)
}
