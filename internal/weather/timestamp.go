package weather

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the layout written to CSV output.
const TimestampLayout = "2006-01-02 15:04:05"

var layouts = []string{
	time.RFC3339,
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	// day first, as written by the greenhouse loggers
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
}

// Timestamp is a CSV time field accepting the layouts seen in weather and
// sensor exports. Times without a zone are read as UTC.
type Timestamp struct {
	time.Time
}

func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *Timestamp) UnmarshalCSV(s string) error {
	v, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = v
	return nil
}

func (t Timestamp) MarshalCSV() (string, error) {
	return t.Time.Format(TimestampLayout), nil
}
