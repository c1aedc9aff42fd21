package tui

import (
	"fmt"
	"strings"
	"time"

	"scrape-client-go/pkg/cli/client"
	"scrape-client-go/pkg/cli/display"
	"scrape-client-go/pkg/cli/tui/views"
	"scrape-client-go/pkg/models"
)

// renderEmptyState renders a standard empty state message
func renderEmptyState(message string) string {
	return mutedStyle.Render(message) + "\n"
}

// renderLoadingState renders a standard loading message
func renderLoadingState(message string) string {
	return infoStyle.Render(message) + "\n"
}

// renderStatusBadge renders a job status in its badge color
func renderStatusBadge(status models.JobStatus) string {
	label := string(status)
	if label == "" {
		label = "unknown"
	}
	return badgeStyles[display.Badge(status)].Render("● " + label)
}

// renderLastUpdated renders the refresh timestamp line. interval is zero
// when no background refresh is running.
func renderLastUpdated(t time.Time, interval time.Duration) string {
	line := "Last updated: " + display.FormatClock(t)
	if interval > 0 {
		line += "  (Auto-refreshes " + describeInterval(interval) + ")"
	}
	return mutedStyle.Render(line) + "\n"
}

func describeInterval(d time.Duration) string {
	if d == time.Minute {
		return "every minute"
	}
	return "every " + d.String()
}

// renderJobList renders a selectable list of jobs. cursor is the highlighted
// row, openID the job whose details are shown.
func renderJobList(jobs []models.ScrapeJob, cursor int, openID string, focused bool) string {
	var b strings.Builder
	b.WriteString(renderSection(fmt.Sprintf("Recent Jobs (%d)", len(jobs))))

	if len(jobs) == 0 {
		b.WriteString(renderEmptyState(display.EmptyJobsMessage))
		return b.String()
	}

	for i, job := range jobs {
		marker := " "
		if focused && i == cursor {
			marker = selectedMarkerStyle.Render("→")
		}

		url := display.TruncateURL(job.URL, 60)
		if job.ID == openID {
			url = selectedStyle.Render(url)
		}

		b.WriteString(fmt.Sprintf("%s %s  %s\n", marker, url, renderStatusBadge(job.Status)))
		if created := display.FormatDateTime(job.CreatedAt); created != "" {
			b.WriteString(fmt.Sprintf("  %s\n", mutedStyle.Render(created)))
		}
	}
	return b.String()
}

// renderJobDetails renders the detail panel of one job
func renderJobDetails(job *models.ScrapeJob) string {
	if job == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(renderSection("Job Details"))

	b.WriteString(fieldLabelStyle.Render("Job ID:"))
	b.WriteString(fmt.Sprintf(" %s\n", jobIDStyle.Render(job.ID)))

	b.WriteString(fieldLabelStyle.Render("Status:"))
	b.WriteString(fmt.Sprintf(" %s\n", renderStatusBadge(job.Status)))

	b.WriteString(fieldLabelStyle.Render("URL:"))
	b.WriteString(fmt.Sprintf(" %s\n", job.URL))

	b.WriteString(fieldLabelStyle.Render("Created:"))
	b.WriteString(fmt.Sprintf(" %s\n", display.FormatDateTime(job.CreatedAt)))

	if updated := display.FormatDateTime(job.UpdatedAt); updated != "" {
		b.WriteString(fieldLabelStyle.Render("Updated:"))
		b.WriteString(fmt.Sprintf(" %s\n", updated))
	}

	if job.Error != "" {
		b.WriteString(alertStyle.Render("Error: "+job.Error) + "\n")
	}
	return b.String()
}

// renderSubjects renders subject tags on one line, or "" when there are none
func renderSubjects(subjects []string) string {
	if len(subjects) == 0 {
		return ""
	}
	tags := make([]string, 0, len(subjects))
	for _, s := range subjects {
		tags = append(tags, tagStyle.Render("#"+s))
	}
	return strings.Join(tags, " ")
}

// renderProcessedResult renders one processed archive of a job
func renderProcessedResult(archive models.ProcessedArchive, width int) string {
	var b strings.Builder

	b.WriteString(fieldLabelStyle.Render("Page Title:"))
	b.WriteString(fmt.Sprintf(" %s\n", docTitleStyle.Render(display.TitleOr(archive))))

	if archive.Description != "" {
		b.WriteString(fieldLabelStyle.Render("Description:") + "\n")
		b.WriteString(wrapText(archive.Description, width, "  "))
	}

	if display.HasAuthor(archive.Author) {
		b.WriteString(fieldLabelStyle.Render("Author:"))
		b.WriteString(fmt.Sprintf(" %s\n", archive.Author))
	}
	if published := display.FormatDate(archive.SubmittedDate); published != "" {
		b.WriteString(fieldLabelStyle.Render("Published:"))
		b.WriteString(fmt.Sprintf(" %s\n", published))
	}
	if tags := renderSubjects(archive.Subjects); tags != "" {
		b.WriteString(fieldLabelStyle.Render("Subjects:"))
		b.WriteString(" " + tags + "\n")
	}
	if archive.PDFLink != "" {
		b.WriteString(fieldLabelStyle.Render("PDF:"))
		b.WriteString(fmt.Sprintf(" %s\n", urlStyle.Render(archive.PDFLink)))
	}

	b.WriteString(fieldLabelStyle.Render(fmt.Sprintf("Links Found: %d", len(archive.ExtractedLinks))) + "\n")
	for i, link := range archive.ExtractedLinks {
		if i == views.MaxLinksShown {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  … %d more", len(archive.ExtractedLinks)-i)) + "\n")
			break
		}
		b.WriteString("  " + urlStyle.Render(link) + "\n")
	}
	return b.String()
}

// renderDocument renders one search result
func renderDocument(doc models.ProcessedArchive, selected bool, width int) string {
	var b strings.Builder

	marker := " "
	style := docTitleStyle
	if selected {
		marker = selectedMarkerStyle.Render("→")
		style = selectedStyle
	}
	b.WriteString(fmt.Sprintf("%s %s\n", marker, style.Render(display.TitleOr(doc))))
	b.WriteString("  " + urlStyle.Render(doc.URL) + "\n")
	if doc.Description != "" {
		b.WriteString(wrapText(doc.Description, width, "  "))
	}

	var meta []string
	if display.HasAuthor(doc.Author) {
		meta = append(meta, successStyle.Render("Author: "+doc.Author))
	}
	if published := display.FormatDate(doc.SubmittedDate); published != "" {
		meta = append(meta, tagStyle.Render("Published: "+published))
	}
	if doc.PDFLink != "" {
		meta = append(meta, errorStyle.Render("PDF Available"))
	}
	if len(meta) > 0 {
		b.WriteString("  " + strings.Join(meta, "  ") + "\n")
	}
	if tags := renderSubjects(doc.Subjects); tags != "" {
		b.WriteString("  " + tags + "\n")
	}

	b.WriteString("  " + mutedStyle.Render(fmt.Sprintf("Added: %s | Job ID: %s",
		display.FormatDate(doc.CreatedAt), display.ShortenID(doc.JobID))) + "\n")
	return b.String()
}

// wrapText wraps text to a specified width, breaking at word boundaries
func wrapText(text string, width int, indent string) string {
	if width <= len(indent) {
		width = views.DefaultWidth
	}
	width -= len(indent)

	words := strings.Fields(text)
	if len(words) == 0 {
		return indent + "\n"
	}

	var b strings.Builder
	line := ""
	for _, word := range words {
		if line != "" && len(line)+len(word)+1 > width {
			b.WriteString(fmt.Sprintf("%s%s\n", indent, line))
			line = word
		} else {
			if line != "" {
				line += " "
			}
			line += word
		}
	}
	if line != "" {
		b.WriteString(fmt.Sprintf("%s%s\n", indent, line))
	}
	return b.String()
}

// handleListNavigation handles common navigation keys for list views (up/down/j/k)
// Returns the new selected index and whether navigation occurred
func handleListNavigation(key string, selected int, total int) (newSelected int, handled bool) {
	switch key {
	case "up", "k":
		if selected > 0 {
			return selected - 1, true
		}
		return selected, true
	case "down", "j":
		if selected < total-1 {
			return selected + 1, true
		}
		return selected, true
	}
	return selected, false
}

// clampCursor keeps a list cursor inside [0, total).
func clampCursor(cursor, total int) int {
	if total == 0 || cursor < 0 {
		return 0
	}
	if cursor >= total {
		return total - 1
	}
	return cursor
}

// renderInlineError renders an error message inline, using the friendly
// message of API errors
func renderInlineError(err error) string {
	if err == nil {
		return ""
	}
	return renderError(client.UserMessage(err))
}
