// Package main is the entry point for langstats-tui. It wires configuration
// and services, then runs either the Bubble Tea program or one of the
// non-interactive subcommands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/j-veylop/langstats-tui/internal/app"
	"github.com/j-veylop/langstats-tui/internal/config"
	"github.com/j-veylop/langstats-tui/internal/logger"
	"github.com/j-veylop/langstats-tui/internal/services"
	"github.com/j-veylop/langstats-tui/internal/ui/tabs/history"
	"github.com/j-veylop/langstats-tui/internal/ui/tabs/info"
	"github.com/j-veylop/langstats-tui/internal/ui/tabs/profiles"
	"github.com/j-veylop/langstats-tui/internal/ui/tabs/skills"
	"github.com/j-veylop/langstats-tui/internal/version"
)

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:           version.Name,
		Usage:          "GitHub language stats grouped into skill categories",
		Version:        version.Short(),
		DefaultCommand: "tui",
		Commands: []*cli.Command{
			tuiCommand(),
			printCommand(),
			purgeCacheCommand(),
			versionCommand(),
		},
	}
}

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "start the interactive dashboard",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runTUI()
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintln(cmd.Root().Writer, version.Info())
			return err
		},
	}
}

// loadConfig loads the configuration. A login given on the command line
// stands in for GITHUB_USERNAME when none is configured.
func loadConfig(login string) (*config.Config, error) {
	if login != "" && os.Getenv("GITHUB_USERNAME") == "" {
		if err := os.Setenv("GITHUB_USERNAME", login); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openManager builds the service manager for the CLI subcommands, which log
// to stderr.
func openManager(login string) (*services.Manager, error) {
	cfg, err := loadConfig(login)
	if err != nil {
		return nil, err
	}
	logger.Setup(os.Stderr, logger.ParseLevel(cfg.LogLevel))

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return mgr, nil
}

func closeManager(mgr *services.Manager) {
	if err := mgr.Close(); err != nil {
		logger.Error("error closing services", "error", err)
	}
}

func runTUI() error {
	cfg, err := loadConfig("")
	if err != nil {
		return err
	}

	logFile, err := logger.SetupFile(cfg.LogFile, logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := logFile.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing log file: %v\n", closeErr)
		}
	}()

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer closeManager(mgr)
	mgr.Start()

	model := app.NewModel(mgr)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		skills.New(state),
		history.New(state, mgr),
		profiles.New(state, mgr),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		if _, ok := <-sigChan; ok {
			p.Send(tea.Quit())
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
