package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/jobid"
)

var hashCmd = &cobra.Command{
	Use:   "hash <url>",
	Short: "Print the deterministic job ID for a posting URL",
	Long:  "Normalize a posting URL (dropping tracking parameters and fragments) and print the job ID it hashes to.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(_ *cobra.Command, args []string) error {
	id, err := jobid.FromURL(args[0])
	if err != nil {
		return fmt.Errorf("cannot hash URL: %w", err)
	}
	fmt.Println(id)
	return nil
}
