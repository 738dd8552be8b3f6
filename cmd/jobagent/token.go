package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/config"
	"github.com/jonathan/job-agent/internal/server"
)

var tokenUserID string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed API token",
	Long:  "Sign a bearer token for the control server using JWT_SECRET. Meant for local use; production issuance lives in the auth service.",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUserID, "user", "u", "", "User UUID to embed in the token (required)")
	_ = tokenCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(tokenUserID)
	if err != nil {
		return fmt.Errorf("invalid user UUID: %w", err)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtConfig, nil).GenerateToken(userID)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
