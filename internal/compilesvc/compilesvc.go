// Package compilesvc turns generated LaTeX into a PDF, either through a
// remote compile service or a local pdflatex install.
package compilesvc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds a single compile round trip.
	DefaultTimeout = 60 * time.Second

	// localTimeout is the maximum time to wait for a local pdflatex run.
	localTimeout = 30 * time.Second
)

// Error represents a failed compilation attempt.
type Error struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("compile error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("compile error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client compiles LaTeX documents. When BaseURL is empty it falls back to a
// local pdflatex binary.
type Client struct {
	BaseURL string
	http    *http.Client
}

// New returns a Client pointed at a remote compile service. Pass an empty
// baseURL to compile locally.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// Compile renders a LaTeX document and returns the PDF bytes.
func (c *Client) Compile(ctx context.Context, latex string) ([]byte, error) {
	if c.BaseURL == "" {
		return compileLocal(ctx, latex)
	}
	return c.compileRemote(ctx, latex)
}

func (c *Client) compileRemote(ctx context.Context, latex string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/compile", strings.NewReader(latex))
	if err != nil {
		return nil, &Error{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-latex")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{
			Message:   fmt.Sprintf("compile service returned HTTP %d", resp.StatusCode),
			LogOutput: string(body),
		}
	}

	return body, nil
}

// compileLocal runs pdflatex in a temporary directory and returns the PDF.
func compileLocal(ctx context.Context, latex string) ([]byte, error) {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return nil, &Error{
			Message: "pdflatex not found in PATH and no compile service configured",
			Cause:   err,
		}
	}

	workDir, err := os.MkdirTemp("", "jobagent-compile-*")
	if err != nil {
		return nil, &Error{Message: "failed to create working directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	texPath := filepath.Join(workDir, "resume.tex")
	if err := os.WriteFile(texPath, []byte(latex), 0644); err != nil {
		return nil, &Error{Message: "failed to write LaTeX source", Cause: err}
	}

	runCtx, cancel := context.WithTimeout(ctx, localTimeout)
	defer cancel()

	// -interaction=nonstopmode prevents interactive prompts.
	cmd := exec.CommandContext(runCtx, "pdflatex", "-interaction=nonstopmode", "-output-directory", workDir, texPath)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	logOutput := stdout.String() + stderr.String()

	// LaTeX can emit a usable PDF even when it exits nonzero, so the PDF on
	// disk is the source of truth.
	pdfPath := filepath.Join(workDir, "resume.pdf")
	pdf, readErr := os.ReadFile(pdfPath)
	if readErr != nil {
		return nil, &Error{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	return pdf, nil
}
