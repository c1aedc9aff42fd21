package client

import (
	"context"
	"net/url"

	"scrape-client-go/pkg/models"
)

// SearchDocuments searches processed documents. An empty query omits the
// query parameter and returns the service's unfiltered set.
func (c *Client) SearchDocuments(ctx context.Context, query string) ([]models.ProcessedArchive, error) {
	path := "/api/documents"
	if query != "" {
		path += "?query=" + url.QueryEscape(query)
	}

	docs := []models.ProcessedArchive{}
	if err := c.doGetRequest(ctx, path, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
