package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abarbosa/atendo/internal/app"
	"github.com/abarbosa/atendo/internal/bus"
	"github.com/abarbosa/atendo/internal/crm"
	"github.com/abarbosa/atendo/internal/filter"
	"github.com/abarbosa/atendo/internal/tui/model"
)

// loadAllContacts drives the incremental loader to the end of the list,
// exactly as the dashboard does batch by batch.
func loadAllContacts(ctx context.Context, e *env, search string) ([]crm.Contact, error) {
	ld := app.NewContactsLoader(e.cfg, e.client, bus.New(), e.logger)
	if search != "" {
		ld.SetSearchNow(search)
	}
	if err := ld.LoadInitial(ctx); err != nil {
		return nil, err
	}

	// An empty batch with hasMore=true means a transient gap; give it a
	// bounded number of retries instead of spinning.
	stalls := 0
	for ld.State().HasMore && stalls < 5 {
		before := ld.State().Count
		ld.LoadMore(ctx)
		st := ld.State()
		if st.Err != nil {
			return nil, st.Err
		}
		if st.Count == before {
			stalls++
		} else {
			stalls = 0
		}
	}
	return ld.Snapshot(), nil
}

func contactFilterSet(stages, tags, sources, cities []string) *filter.Set[crm.Contact] {
	set := filter.NewSet(model.ContactDimensions()...)
	set.Select("stage", stages...)
	set.Select("tags", tags...)
	set.Select("source", sources...)
	set.Select("city", cities...)
	return set
}

func newContactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List and export contacts",
	}

	var search string
	var stages, tags, sources, cities []string

	addFilters := func(c *cobra.Command) {
		c.Flags().StringVar(&search, "search", "", "free-text search")
		c.Flags().StringSliceVar(&stages, "stage", nil, "filter by lead stage")
		c.Flags().StringSliceVar(&tags, "tag", nil, "filter by tag")
		c.Flags().StringSliceVar(&sources, "source", nil, "filter by source")
		c.Flags().StringSliceVar(&cities, "city", nil, "filter by city")
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List contacts passing the given filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()

			all, err := loadAllContacts(ctx, e, search)
			if err != nil {
				return err
			}
			visible := contactFilterSet(stages, tags, sources, cities).Apply(all)

			if jsonFlag {
				return json.NewEncoder(os.Stdout).Encode(visible)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOMPANY\tPHONE\tSTAGE\tTAGS\tCITY\tLAST CALL")
			for _, c := range visible {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					c.Name, c.Company, c.Phone, c.LeadStage, strings.Join(c.Tags, ","), c.City, c.LastCallStatus)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("%d of %d contacts\n", len(visible), len(all))
			return nil
		},
	}
	addFilters(list)

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export contacts passing the given filters as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()

			all, err := loadAllContacts(ctx, e, search)
			if err != nil {
				return err
			}
			visible := contactFilterSet(stages, tags, sources, cities).Apply(all)

			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			w := csv.NewWriter(out)
			if err := w.Write([]string{"id", "name", "phone", "email", "company", "tags", "stage", "source", "city", "country", "last_call_status", "call_attempts"}); err != nil {
				return err
			}
			for _, c := range visible {
				rec := []string{
					c.ID, c.Name, c.Phone, c.Email, c.Company,
					strings.Join(c.Tags, ";"), c.LeadStage, c.Source,
					c.City, c.Country, c.LastCallStatus, strconv.Itoa(c.CallAttempts),
				}
				if err := w.Write(rec); err != nil {
					return err
				}
			}
			w.Flush()
			return w.Error()
		},
	}
	addFilters(export)
	export.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	cmd.AddCommand(list, export)
	return cmd
}
