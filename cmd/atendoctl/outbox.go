package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/cache"
	"github.com/abarbosa/atendo/internal/lock"
	"github.com/abarbosa/atendo/internal/outbox"
	"github.com/abarbosa/atendo/internal/profile"
)

func newOutboxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and flush queued offline actions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List actions still waiting to be sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			db, err := openCacheDB(e.profile)
			if err != nil {
				return err
			}
			defer db.Close()

			actions, err := db.PendingActions()
			if err != nil {
				return err
			}
			if jsonFlag {
				return json.NewEncoder(os.Stdout).Encode(actions)
			}
			if len(actions) == 0 {
				fmt.Println("outbox is empty")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tKIND\tSTATUS\tERROR")
			for _, a := range actions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					a.ClientActionID, a.Kind, a.Status, a.ErrorMessage)
			}
			return w.Flush()
		},
	}

	flush := &cobra.Command{
		Use:   "flush",
		Short: "Dispatch all pending actions to the backend now",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()

			// A running dashboard already drains this outbox; do not
			// compete with it.
			lk, err := lock.Acquire(profile.Dir(e.profile))
			if err != nil {
				return err
			}
			defer lk.Release()

			db, err := openCacheDB(e.profile)
			if err != nil {
				return err
			}
			defer db.Close()

			before, err := db.PendingActions()
			if err != nil {
				return err
			}
			if len(before) == 0 {
				fmt.Println("outbox is empty")
				return nil
			}

			sender := outbox.NewSender(db, e.client, bus.New(), e.logger)
			sender.ProcessPending(ctx)

			after, _ := db.PendingActions()
			fmt.Printf("flushed %d of %d pending actions\n", len(before)-len(after), len(before))
			if len(after) > 0 {
				fmt.Printf("%d actions remain queued; see 'atendoctl outbox list'\n", len(after))
			}
			return nil
		},
	}

	cmd.AddCommand(list, flush)
	return cmd
}

func openCacheDB(name string) (*cache.DB, error) {
	if err := profile.EnsureDir(name); err != nil {
		return nil, err
	}
	db, err := cache.Open(profile.CacheDBPath(name))
	if err != nil {
		return nil, err
	}
	if _, err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
