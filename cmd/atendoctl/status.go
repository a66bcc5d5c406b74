package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abarbosa/atendo/internal/cache"
	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/profile"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend reachability and cache state",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()

			backend := "ok"
			if err := e.client.Health(ctx); err != nil {
				backend = "unreachable"
				if errors.Is(err, crm.ErrUnauthorized) {
					backend = "auth required"
				}
			}

			var contacts, leads int64
			var pending int
			if db, err := cache.Open(profile.CacheDBPath(e.profile)); err == nil {
				if _, err := db.Migrate(); err == nil {
					contacts, _ = db.ContactCount()
					leads, _ = db.LeadCount()
					if actions, err := db.PendingActions(); err == nil {
						pending = len(actions)
					}
				}
				_ = db.Close()
			}

			if jsonFlag {
				return json.NewEncoder(os.Stdout).Encode(map[string]any{
					"profile":         e.profile,
					"backend":         backend,
					"api_url":         e.cfg.APIBaseURL,
					"cached_contacts": contacts,
					"cached_leads":    leads,
					"pending_actions": pending,
				})
			}

			fmt.Printf("profile:  %s\n", e.profile)
			fmt.Printf("backend:  %s (%s)\n", backend, e.cfg.APIBaseURL)
			fmt.Printf("cache:    %d contacts, %d leads\n", contacts, leads)
			fmt.Printf("outbox:   %d pending\n", pending)
			return nil
		},
	}
}
