// Package commands wires the docsentry CLI: the root command launches the
// TUI, subcommands expose every operation non-interactively.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsentry/docsentry/internal/api"
	"github.com/docsentry/docsentry/internal/config"
	"github.com/docsentry/docsentry/internal/store"
	"github.com/docsentry/docsentry/internal/tui"
)

var apiURL string

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docsentry",
		Short: "Analyze documents for security risks from your terminal",
		Long: `docsentry is a terminal client for a document security-analysis service.
Upload PDF documents, organize them into projects, chat with an AI assistant
about a document's contents, and view generated security breakdowns
(components, diagrams, API contracts, PII findings).`,
		RunE: runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Base URL of the analysis backend (overrides config)")
	rootCmd.AddCommand(NewShowCommand())
	rootCmd.AddCommand(NewDocumentsCommand())
	rootCmd.AddCommand(NewChatCommand())
	rootCmd.AddCommand(NewBreakdownCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration, opens the local store and builds the API
// client shared by every command.
func setup() (config.Config, *store.Store, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, err
	}
	if apiURL != "" {
		cfg.APIBaseURL = apiURL
	}

	st, err := store.Open(cfg.StatePath())
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("failed to open local store: %w", err)
	}

	return cfg, st, api.New(cfg.APIBaseURL, cfg.RequestTimeout()), nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, st, client, err := setup()
	if err != nil {
		return err
	}

	if err := tui.Run(cfg, st, client); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
