package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/detect"
	"github.com/jonathan/job-agent/internal/fetch"
	"github.com/jonathan/job-agent/internal/jobid"
	"github.com/jonathan/job-agent/internal/observability"
)

var detectJSON bool

var detectCmd = &cobra.Command{
	Use:   "detect <url>",
	Short: "Run job posting detection against a URL",
	Long:  "Fetch a page (rendering it in a headless browser when needed), run detection and extraction, and print the result.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().BoolVar(&detectJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	pageURL := args[0]

	result, err := fetch.Page(cmd.Context(), pageURL, nil, verbose)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	detection := detect.Run(doc, pageURL)

	if detectJSON {
		out := map[string]any{
			"is_job":   detection.IsJob,
			"rendered": result.Rendered,
		}
		if detection.IsJob {
			out["info"] = detection.Info
			if id, err := jobid.FromURL(pageURL); err == nil {
				out["job_id"] = id
			}
		}
		if detection.LastError != "" {
			out["last_error"] = detection.LastError
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if !detection.IsJob {
		fmt.Println("Not a job posting page.")
		return nil
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintJobInfo(detection.Info)

	if id, err := jobid.FromURL(pageURL); err == nil {
		fmt.Printf("Job ID: %s\n", id)
	}
	return nil
}
