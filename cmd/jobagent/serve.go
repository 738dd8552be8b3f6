package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/agent"
	"github.com/jonathan/job-agent/internal/browser"
	"github.com/jonathan/job-agent/internal/compilesvc"
	"github.com/jonathan/job-agent/internal/messaging"
	"github.com/jonathan/job-agent/internal/registry"
	"github.com/jonathan/job-agent/internal/resume"
	"github.com/jonathan/job-agent/internal/server"
	"github.com/jonathan/job-agent/internal/store"
)

var (
	serveConfigPath   string
	servePort         int
	serveRemoteURL    string
	serveDocumentsDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the control server",
	Long:  "Attach to a running Chrome session, watch its tabs for job postings, and expose the REST control surface.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "", "Path to JSON config file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveRemoteURL, "remote", "", "Chrome remote debugging URL (overrides config)")
	serveCmd.Flags().StringVar(&serveDocumentsDir, "documents-dir", "documents", "Directory for generated PDFs")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	if serveRemoteURL != "" {
		cfg.RemoteDebuggingURL = serveRemoteURL
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	agentCfg := agent.Config{
		Debounce:        time.Duration(cfg.DebounceMillis) * time.Millisecond,
		SecondPassDelay: time.Duration(cfg.SecondPassMillis) * time.Millisecond,
		Verbose:         cfg.Verbose,
	}

	hub := messaging.NewHub()

	// The browser session is optional. Without one the tab endpoints answer
	// with no-receiver errors but the tracker endpoints still work.
	var attacher messaging.Attacher
	reg := registry.New(nil, cfg.Verbose)
	if cfg.RemoteDebuggingURL != "" {
		session, err := browser.Connect(ctx, cfg.RemoteDebuggingURL, cfg.Verbose)
		if err != nil {
			return fmt.Errorf("failed to connect to browser: %w", err)
		}
		defer session.Close()

		reg = registry.New(browser.NewBadgeIndicator(session), cfg.Verbose)
		manager := browser.NewManager(session, hub, reg, agentCfg)
		if err := manager.AttachAll(ctx); err != nil {
			log.Printf("initial tab attach failed: %v", err)
		}
		go func() {
			if err := manager.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("tab watcher stopped: %v", err)
			}
		}()
		attacher = manager
	}

	deps := server.Deps{
		Messenger: messaging.NewClient(hub, attacher, messaging.DefaultRetryDelay),
		Registry:  reg,
	}

	if cfg.DatabaseURL != "" {
		st, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer st.Close()
		deps.Store = st
	}

	if cfg.GeminiAPIKey != "" {
		rc, err := resume.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create generation client: %w", err)
		}
		defer func() { _ = rc.Close() }()
		deps.Resume = rc
		deps.Compiler = compilesvc.New(cfg.CompileServiceURL)
	}

	srv, err := server.New(server.Config{
		Port:         cfg.Port,
		DocumentsDir: serveDocumentsDir,
		Verbose:      cfg.Verbose,
	}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
