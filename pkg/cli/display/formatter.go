package display

import (
	"strings"
	"time"

	"scrape-client-go/pkg/models"
)

// BadgeKind is the visual category of a job status.
type BadgeKind int

const (
	BadgeNeutral BadgeKind = iota
	BadgeWarning
	BadgeInfo
	BadgeSuccess
	BadgeDanger
)

func (k BadgeKind) String() string {
	switch k {
	case BadgeWarning:
		return "warning"
	case BadgeInfo:
		return "info"
	case BadgeSuccess:
		return "success"
	case BadgeDanger:
		return "danger"
	default:
		return "neutral"
	}
}

// Badge maps a job status to its badge. Unknown statuses are neutral.
func Badge(status models.JobStatus) BadgeKind {
	switch status {
	case models.JobStatusPending:
		return BadgeWarning
	case models.JobStatusProcessing:
		return BadgeInfo
	case models.JobStatusCompleted:
		return BadgeSuccess
	case models.JobStatusFailed:
		return BadgeDanger
	default:
		return BadgeNeutral
	}
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the service's ISO-8601 strings. Values without a
// zone are read as local time. ok is false for empty or malformed input.
func ParseTimestamp(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Local(), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDateTime renders a timestamp with date and time, or "" when it
// cannot be parsed.
func FormatDateTime(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return ""
	}
	return t.Format("Jan 2, 2006, 3:04:05 PM")
}

// FormatDate renders a long-form date such as "March 1, 2024", or "".
func FormatDate(s string) string {
	t, ok := ParseTimestamp(s)
	if !ok {
		return ""
	}
	return t.Format("January 2, 2006")
}

// FormatClock renders the time of day of t.
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// HasAuthor reports whether an author should be shown.
func HasAuthor(author string) bool {
	return author != "" && author != models.AuthorUnknown
}

// TruncateURL truncates a URL to the specified max length
func TruncateURL(url string, maxLen int) string {
	if maxLen < 4 || len(url) <= maxLen {
		return url
	}
	return url[:maxLen-3] + "..."
}

// ShortenID returns the first 8 characters of an id followed by "...".
func ShortenID(id string) string {
	if len(id) <= 8 {
		return id + "..."
	}
	return id[:8] + "..."
}

// TitleOr returns the archive title, or a placeholder when it is empty.
func TitleOr(archive models.ProcessedArchive) string {
	if strings.TrimSpace(archive.Title) != "" {
		return archive.Title
	}
	return "(no title)"
}
