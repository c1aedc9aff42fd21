package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"scrape-client-go/pkg/cli/logger"
	"scrape-client-go/pkg/config"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the scrapectl command tree. Without a subcommand it
// launches the interactive TUI.
func NewRootCmd() *cobra.Command {
	var app *App

	rootCmd := &cobra.Command{
		Use:   "scrapectl",
		Short: "Terminal client for the web scraping service",
		Long: `scrapectl talks to the web scraping service over HTTP.

Run it without arguments to open the interactive monitor, where you can
submit URLs, watch jobs move through pending, processing and completed,
and search the processed documents. The subcommands run the same
operations once and print the result.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			app, err = initApp(cmd)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().String("env", ".env", "Path to a .env file loaded before the config")
	rootCmd.PersistentFlags().String("base-url", "", "Override the API base URL")
	rootCmd.PersistentFlags().String("log-level", "", "Override the log level (debug, info, warn, error)")

	appFn := func() *App { return app }
	rootCmd.AddCommand(
		newJobsCmd(appFn),
		newSubmitCmd(appFn),
		newStatusCmd(appFn),
		newResultsCmd(appFn),
		newSearchCmd(appFn),
		newConfigCmd(appFn),
	)
	return rootCmd
}

// Execute runs the root command until it finishes or the process is
// interrupted. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func initApp(cmd *cobra.Command) (*App, error) {
	envFile, err := cmd.Flags().GetString("env")
	if err != nil {
		return nil, fmt.Errorf("failed to read --env: %w", err)
	}
	if err := config.LoadEnv(envFile, cmd.Flags().Changed("env")); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	baseURL, err := cmd.Flags().GetString("base-url")
	if err != nil {
		return nil, fmt.Errorf("failed to read --base-url: %w", err)
	}
	if baseURL != "" {
		cfg.API.BaseURL = strings.TrimRight(baseURL, "/")
	}

	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to read --log-level: %w", err)
	}
	if level != "" {
		cfg.Log.Level = level
	}

	if _, err := logger.Init(cfg.Log.Dir, cfg.Log.Level); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}

	app := NewApp(cfg)
	app.SetOutput(cmd.OutOrStdout())
	return app, nil
}

func newJobsCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List scrape jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().ListJobs(cmd.Context())
		},
	}
}

func newSubmitCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <url>",
		Short: "Start a scrape job for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().SubmitJob(cmd.Context(), args[0])
		},
	}
}

func newStatusCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a scrape job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().ShowJob(cmd.Context(), args[0])
		},
	}
}

func newResultsCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "results <job-id>",
		Short: "Show the processed documents of a scrape job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().ShowResults(cmd.Context(), args[0])
		},
	}
}

func newSearchCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search processed documents",
		Long:  "Search processed documents by title, description or author. Without a query every document is listed.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().SearchDocuments(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func newConfigCmd(app func() *App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration file",
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app().ShowConfig()
			},
		},
		&cobra.Command{
			Use:   "set <section.key=value>",
			Short: "Set a configuration value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app().SetConfig(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration updated successfully")
				return nil
			},
		},
	)
	return configCmd
}
