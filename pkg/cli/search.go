package cli

import (
	"context"
	"fmt"

	"scrape-client-go/pkg/cli/display"
)

// SearchDocuments prints the documents matching query. An empty query lists
// every processed document.
func (a *App) SearchDocuments(ctx context.Context, query string) error {
	apiClient, err := a.getClient()
	if err != nil {
		return err
	}

	docs, err := apiClient.SearchDocuments(ctx, query)
	if err != nil {
		return fmt.Errorf("error searching documents: %w", err)
	}
	return display.WriteDocumentsTable(a.out, docs)
}
