package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/agent"
	"github.com/jonathan/job-agent/internal/browser"
	"github.com/jonathan/job-agent/internal/messaging"
	"github.com/jonathan/job-agent/internal/observability"
	"github.com/jonathan/job-agent/internal/profile"
	"github.com/jonathan/job-agent/internal/registry"
)

var (
	autofillConfigPath string
	autofillRemoteURL  string
	autofillProfile    string
	autofillURL        string
)

var autofillCmd = &cobra.Command{
	Use:   "autofill [target-id]",
	Short: "Fill an application form in a browser tab",
	Long:  "Attach to a tab (or open a fresh one with --url), detect the form and fill it from a profile JSON file.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAutofill,
}

func init() {
	autofillCmd.Flags().StringVarP(&autofillConfigPath, "config", "c", "", "Path to JSON config file")
	autofillCmd.Flags().StringVar(&autofillRemoteURL, "remote", "", "Chrome remote debugging URL (overrides config)")
	autofillCmd.Flags().StringVarP(&autofillProfile, "profile", "p", "", "Path to profile JSON file (required)")
	autofillCmd.Flags().StringVar(&autofillURL, "url", "", "Open this URL in a new tab instead of targeting an existing one")
	_ = autofillCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(autofillCmd)
}

func runAutofill(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && autofillURL == "" {
		return fmt.Errorf("provide a target id or --url")
	}

	cfg, err := loadConfig(autofillConfigPath)
	if err != nil {
		return err
	}
	if autofillRemoteURL != "" {
		cfg.RemoteDebuggingURL = autofillRemoteURL
	}
	if err := requireField(cfg.RemoteDebuggingURL, "remote debugging URL"); err != nil {
		return err
	}

	view, err := loadProfile(autofillProfile)
	if err != nil {
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

	targetID := ""
	if len(args) == 1 {
		targetID = args[0]
	} else {
		targetID, err = session.OpenTab(ctx, autofillURL)
		if err != nil {
			return fmt.Errorf("failed to open tab: %w", err)
		}
	}

	client := messaging.NewClient(hub, manager, messaging.DefaultRetryDelay)
	resp, err := client.Send(ctx, targetID, messaging.Request{
		Command: messaging.CmdAutofill,
		Profile: view,
	})
	if err != nil {
		return fmt.Errorf("autofill failed: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("autofill failed: %s", resp.Error)
	}

	observability.NewPrinter(os.Stdout).PrintAutofill(resp.Result)

	// The agent fills conditionally mounted fields in a delayed second
	// pass; exiting now would kill it.
	select {
	case <-ctx.Done():
	case <-time.After(agent.DefaultSecondPassDelay + time.Second):
	}
	return nil
}

// loadProfile reads and validates a profile JSON file.
func loadProfile(path string) (*profile.View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var view profile.View
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	if err := view.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return &view, nil
}
