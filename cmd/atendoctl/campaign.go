package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abarbosa/atendo/internal/crm"
)

func newCampaignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Start and inspect bulk campaigns",
	}

	var name, kind, template, search string
	var stages, tags, sources, cities []string
	start := &cobra.Command{
		Use:   "start",
		Short: "Start a campaign over the contacts matching the given filters",
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
			if len(visible) == 0 {
				return fmt.Errorf("no contacts match the given filters")
			}
			ids := make([]string, 0, len(visible))
			for _, c := range visible {
				ids = append(ids, c.ID)
			}

			st, err := e.client.StartCampaign(ctx, crm.CampaignRequest{
				Name:       name,
				Kind:       kind,
				ContactIDs: ids,
				Template:   template,
			})
			if err != nil {
				return err
			}
			return printCampaign(st)
		},
	}
	start.Flags().StringVar(&name, "name", "", "campaign name")
	start.Flags().StringVar(&kind, "kind", "call", "campaign kind: call, whatsapp or email")
	start.Flags().StringVar(&template, "template", "", "message template for whatsapp/email campaigns")
	start.Flags().StringVar(&search, "search", "", "free-text search")
	start.Flags().StringSliceVar(&stages, "stage", nil, "filter by lead stage")
	start.Flags().StringSliceVar(&tags, "tag", nil, "filter by tag")
	start.Flags().StringSliceVar(&sources, "source", nil, "filter by source")
	start.Flags().StringSliceVar(&cities, "city", nil, "filter by city")
	_ = start.MarkFlagRequired("name")

	status := &cobra.Command{
		Use:   "status <campaign-id>",
		Short: "Show progress of a running campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			ctx, cancel := cmdContext()
			defer cancel()

			st, err := e.client.GetCampaignStatus(ctx, args[0])
			if err != nil {
				return err
			}
			return printCampaign(st)
		},
	}

	cmd.AddCommand(start, status)
	return cmd
}

func printCampaign(st *crm.CampaignStatus) error {
	if jsonFlag {
		return json.NewEncoder(os.Stdout).Encode(st)
	}
	fmt.Printf("campaign:  %s (%s)\n", st.Name, st.ID)
	fmt.Printf("state:     %s\n", st.State)
	fmt.Printf("progress:  %d/%d done, %d failed\n", st.Completed, st.Total, st.Failed)
	return nil
}
