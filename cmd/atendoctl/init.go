package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abarbosa/atendo/internal/config"
	"github.com/abarbosa/atendo/internal/profile"
)

func newInitCmd() *cobra.Command {
	var apiURL, token, defaultProfile string
	var batchSize int

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write ~/.atendo/config.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				return fmt.Errorf("--api-url is required")
			}
			if defaultProfile != "" {
				if err := profile.ValidateName(defaultProfile); err != nil {
					return err
				}
			}
			cfg := &config.Config{
				APIBaseURL:     apiURL,
				AuthToken:      token,
				DefaultProfile: defaultProfile,
				BatchSize:      batchSize,
			}
			if err := config.Save(profile.ConfigPath(), cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", profile.ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "CRM backend base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	cmd.Flags().StringVar(&defaultProfile, "default-profile", "", "default profile name")
	cmd.Flags().IntVar(&batchSize, "batch-size", config.DefaultBatchSize, "loader batch size")
	return cmd
}
