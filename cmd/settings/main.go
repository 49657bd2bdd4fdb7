package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spec-kit/slackbot-settings/internal/backend"
	"github.com/spec-kit/slackbot-settings/internal/config"
	"github.com/spec-kit/slackbot-settings/internal/observability"
	"github.com/spec-kit/slackbot-settings/internal/roster"
	"github.com/spec-kit/slackbot-settings/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "settings: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The terminal owns stdout, so logs go to a file.
	logCfg := cfg.Logger
	logCfg.OutputPath = cfg.Client.LogFile
	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	client := backend.NewClient(cfg.Client.APIBaseURL, cfg.Client.Timeout(), logger.Named("backend"))
	notifier := roster.NewChanNotifier(8)
	editor := roster.NewEditor(client, notifier, logger.Named("roster"))

	app := tui.NewApp(editor, client, notifier.C, logger, tui.WithTimeout(cfg.Client.Timeout()))
	logger.Info("settings page starting", zap.String("api", cfg.Client.APIBaseURL))

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
