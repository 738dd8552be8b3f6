package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/agent"
	"github.com/jonathan/job-agent/internal/browser"
	"github.com/jonathan/job-agent/internal/messaging"
	"github.com/jonathan/job-agent/internal/registry"
)

var (
	watchConfigPath string
	watchRemoteURL  string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a browser session and print detection signals",
	Long:  "Attach page agents to every open tab and print a line whenever a tab's job posting state changes. Runs until interrupted.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchConfigPath, "config", "c", "", "Path to JSON config file")
	watchCmd.Flags().StringVar(&watchRemoteURL, "remote", "", "Chrome remote debugging URL (overrides config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(watchConfigPath)
	if err != nil {
		return err
	}
	if watchRemoteURL != "" {
		cfg.RemoteDebuggingURL = watchRemoteURL
	}
	if err := requireField(cfg.RemoteDebuggingURL, "remote debugging URL"); err != nil {
		return err
	}

	ctx := cmd.Context()
	session, err := browser.Connect(ctx, cfg.RemoteDebuggingURL, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer session.Close()

	hub := messaging.NewHub()
	reg := registry.New(browser.NewBadgeIndicator(session), cfg.Verbose)
	manager := browser.NewManager(session, hub, reg, agent.Config{Verbose: cfg.Verbose})

	events, cancel := reg.Subscribe()
	defer cancel()

	if err := manager.AttachAll(ctx); err != nil {
		return fmt.Errorf("failed to attach to tabs: %w", err)
	}

	go func() {
		for event := range events {
			switch {
			case event.Closed:
				fmt.Printf("%s  closed\n", event.TargetID)
			case event.IsJob:
				fmt.Printf("%s  job posting\n", event.TargetID)
			default:
				fmt.Printf("%s  not a job posting\n", event.TargetID)
			}
		}
	}()

	return manager.Run(ctx)
}
