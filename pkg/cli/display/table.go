// Package display turns jobs and processed documents into text, both as
// tables for one-shot commands and as small pure helpers for the TUI.
package display

import (
	"fmt"
	"io"
	"strings"

	"scrape-client-go/pkg/models"

	"github.com/olekukonko/tablewriter"
)

const (
	EmptyJobsMessage      = "No jobs available yet"
	EmptyDocumentsMessage = "No documents found matching your search."
	EmptyResultsMessage   = "No processed results available yet."
)

// WriteJobsTable writes jobs as a table followed by a total line.
func WriteJobsTable(w io.Writer, jobs []models.ScrapeJob) error {
	if len(jobs) == 0 {
		_, err := fmt.Fprintln(w, EmptyJobsMessage)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("ID", "URL", "Status", "Created", "Updated")
	for _, job := range jobs {
		if err := table.Append(
			ShortenID(job.ID),
			TruncateURL(job.URL, 50),
			string(job.Status),
			FormatDateTime(job.CreatedAt),
			FormatDateTime(job.UpdatedAt),
		); err != nil {
			return fmt.Errorf("append job row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render jobs table: %w", err)
	}

	_, err := fmt.Fprintf(w, "Total: %d job(s)\n", len(jobs))
	return err
}

// WriteJobDetails writes one job as a field/value table.
func WriteJobDetails(w io.Writer, job models.ScrapeJob) error {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	rows := [][]string{
		{"ID", job.ID},
		{"URL", job.URL},
		{"Status", string(job.Status)},
		{"Created", FormatDateTime(job.CreatedAt)},
	}
	if updated := FormatDateTime(job.UpdatedAt); updated != "" {
		rows = append(rows, []string{"Updated", updated})
	}
	if job.Error != "" {
		rows = append(rows, []string{"Error", job.Error})
	}
	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return fmt.Errorf("append job field: %w", err)
		}
	}
	return table.Render()
}

// WriteDocumentsTable writes search results as a table.
func WriteDocumentsTable(w io.Writer, docs []models.ProcessedArchive) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, EmptyDocumentsMessage)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Title", "URL", "Author", "Published", "Added", "Job ID")
	for _, doc := range docs {
		author := ""
		if HasAuthor(doc.Author) {
			author = doc.Author
		}
		if err := table.Append(
			TruncateURL(TitleOr(doc), 40),
			TruncateURL(doc.URL, 50),
			author,
			FormatDate(doc.SubmittedDate),
			FormatDate(doc.CreatedAt),
			ShortenID(doc.JobID),
		); err != nil {
			return fmt.Errorf("append document row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render documents table: %w", err)
	}

	_, err := fmt.Fprintf(w, "Search Results (%d)\n", len(docs))
	return err
}

// WriteArchiveDetails writes the full record of one processed document,
// including every extracted link.
func WriteArchiveDetails(w io.Writer, archive models.ProcessedArchive) error {
	if _, err := fmt.Fprintf(w, "\n%s\n%s\n", TitleOr(archive), archive.URL); err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	rows := [][]string{}
	if archive.Description != "" {
		rows = append(rows, []string{"Description", archive.Description})
	}
	if HasAuthor(archive.Author) {
		rows = append(rows, []string{"Author", archive.Author})
	}
	if published := FormatDate(archive.SubmittedDate); published != "" {
		rows = append(rows, []string{"Published", published})
	}
	if len(archive.Subjects) > 0 {
		rows = append(rows, []string{"Subjects", strings.Join(archive.Subjects, ", ")})
	}
	if archive.PDFLink != "" {
		rows = append(rows, []string{"PDF", archive.PDFLink})
	}
	rows = append(rows, []string{"Links found", fmt.Sprintf("%d", len(archive.ExtractedLinks))})
	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return fmt.Errorf("append archive field: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render archive: %w", err)
	}

	for _, link := range archive.ExtractedLinks {
		if _, err := fmt.Fprintf(w, "  - %s\n", link); err != nil {
			return err
		}
	}
	return nil
}

// FormatSubmitSuccess formats the confirmation for a queued job.
func FormatSubmitSuccess(resp *models.SubmitJobResponse, url string) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("✓ Scrape job started!\n")
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Job ID: %s\n", resp.JobID))
	b.WriteString(fmt.Sprintf("  URL:    %s\n", url))
	b.WriteString(fmt.Sprintf("  Status: %s\n", resp.Status))
	b.WriteString("\n")
	return b.String()
}

// FormatErrorMessage formats an error message consistently
func FormatErrorMessage(message string) string {
	return fmt.Sprintf("❌ Error: %s\n", message)
}
