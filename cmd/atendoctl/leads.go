package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abarbosa/atendo/internal/app"
	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/filter"
	"github.com/abarbosa/atendo/internal/tui/model"
)

func newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "List chat leads",
	}

	var search string
	var platforms []string

	list := &cobra.Command{
		Use:   "list",
		Short: "List chat leads passing the given filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()

			ld := app.NewLeadsLoader(e.cfg, e.client, bus.New(), e.logger)
			if search != "" {
				ld.SetSearchNow(search)
			}
			if err := ld.LoadInitial(ctx); err != nil {
				return err
			}
			stalls := 0
			for ld.State().HasMore && stalls < 5 {
				before := ld.State().Count
				ld.LoadMore(ctx)
				st := ld.State()
				if st.Err != nil {
					return st.Err
				}
				if st.Count == before {
					stalls++
				} else {
					stalls = 0
				}
			}

			set := filter.NewSet(model.LeadDimensions()...)
			set.Select("platform", platforms...)
			visible := set.Apply(ld.Snapshot())

			if jsonFlag {
				return json.NewEncoder(os.Stdout).Encode(visible)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPHONE\tPLATFORMS\tUNREAD\tLAST MESSAGE\tWHEN")
			for _, l := range visible {
				when := ""
				if l.LastMessageAt > 0 {
					when = time.UnixMilli(l.LastMessageAt).Format("2006-01-02 15:04")
				}
				preview := l.LastMessage
				if len(preview) > 40 {
					preview = preview[:39] + "…"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
					l.Name, l.Phone, strings.Join(l.Platforms, ","), l.UnreadCount, preview, when)
			}
			return w.Flush()
		},
	}
	list.Flags().StringVar(&search, "search", "", "free-text search")
	list.Flags().StringSliceVar(&platforms, "platform", nil, "filter by platform")

	cmd.AddCommand(list)
	return cmd
}
