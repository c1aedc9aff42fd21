package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"scrape-client-go/pkg/cli/client"
	"scrape-client-go/pkg/cli/logger"
	"scrape-client-go/pkg/cli/tui"
	"scrape-client-go/pkg/config"
)

type App struct {
	cfg    *config.Config
	client *client.Client
	out    io.Writer
}

func NewApp(cfg *config.Config) *App {
	return &App{
		cfg: cfg,
		out: os.Stdout,
	}
}

// SetOutput redirects command output.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// getClient returns the HTTP client, creating it if necessary
func (a *App) getClient() (*client.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	if a.cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("API base URL not configured")
	}

	a.client = client.NewClient(a.cfg.API.BaseURL, a.cfg.Timeout(), client.WithLogger(logger.L()))
	return a.client, nil
}

// Run starts the interactive TUI.
func (a *App) Run(ctx context.Context) error {
	apiClient, err := a.getClient()
	if err != nil {
		return err
	}

	logger.L().Info("starting TUI", "base_url", apiClient.BaseURL(), "poll_interval", a.cfg.PollInterval())
	return tui.Run(ctx, apiClient, a.cfg.PollInterval())
}
