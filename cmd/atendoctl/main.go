// atendoctl is the scripting companion of the atendo dashboard: it drives
// the same data-access layer against the CRM backend from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abarbosa/atendo/internal/config"
	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/logging"
	"github.com/abarbosa/atendo/internal/profile"
)

var (
	profileFlag string
	jsonFlag    bool
)

func main() {
	root := &cobra.Command{
		Use:           "atendoctl",
		Short:         "Control the atendo CRM dashboard from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&profileFlag, "profile", "", "profile name (overrides config default)")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "machine-readable JSON output")

	root.AddCommand(
		newInitCmd(),
		newStatusCmd(),
		newContactsCmd(),
		newLeadsCmd(),
		newSendCmd(),
		newCallCmd(),
		newCampaignCmd(),
		newOutboxCmd(),
		newMessagesCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env assembles the profile, config, client and file logger shared by all
// subcommands.
type env struct {
	profile string
	cfg     *config.Config
	client  *crm.Client
	logger  *zap.Logger
}

func newEnv() (*env, error) {
	name := profile.Resolve(profileFlag)
	if err := profile.ValidateName(name); err != nil {
		return nil, err
	}

	cfg, err := config.Load(profile.ConfigPath())
	if err != nil {
		cfg = &config.Config{BatchSize: config.DefaultBatchSize}
	}
	config.ApplyEnv(cfg)
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("api_base_url is not configured (run 'atendoctl init' or set ATENDO_API_URL)")
	}

	logger, err := logging.NewFileOnly(profile.LogPath(name), name)
	if err != nil {
		return nil, err
	}

	return &env{
		profile: name,
		cfg:     cfg,
		client:  crm.New(cfg.APIBaseURL, cfg.AuthToken, logger),
		logger:  logger,
	}, nil
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}
