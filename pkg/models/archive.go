package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// AuthorUnknown is the sentinel the service stores when no author was extracted.
const AuthorUnknown = "Unknown"

// ProcessedArchive is the structured result extracted from one page of a
// completed scrape job.
type ProcessedArchive struct {
	ID             string         `json:"_id"`
	URL            string         `json:"url"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	ExtractedLinks ExtractedLinks `json:"extracted_links"`
	PDFData        string         `json:"pdf_data,omitempty"`
	PDFLink        string         `json:"pdf_link,omitempty"`
	Author         string         `json:"author,omitempty"`
	Authors        string         `json:"authors,omitempty"`
	SubmittedDate  string         `json:"submitted_date,omitempty"`
	Subjects       []string       `json:"subjects"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
	JobID          string         `json:"job_id"`
}

// ExtractedLinks is the ordered list of links found on a processed page.
//
// The service has shipped two shapes for this field: a plain array of
// strings, and an object mapping a link category to its links. Both decode
// into a flat list; categories are flattened in sorted key order.
type ExtractedLinks []string

func (l *ExtractedLinks) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = nil
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var byCategory map[string][]string
	if err := json.Unmarshal(data, &byCategory); err != nil {
		return fmt.Errorf("extracted_links: expected array or object of arrays: %w", err)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	flat := make([]string, 0)
	for _, category := range categories {
		flat = append(flat, byCategory[category]...)
	}
	*l = flat
	return nil
}
