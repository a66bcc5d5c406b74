package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Search the offline message cache",
	}

	var (
		leadPhone string
		limit     int
	)
	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over cached message bodies",
		Args:  cobra.ExactArgs(1),
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

			results, err := db.SearchMessages(args[0], leadPhone, limit)
			if err != nil {
				return err
			}
			if jsonFlag {
				return json.NewEncoder(os.Stdout).Encode(results)
			}
			if len(results) == 0 {
				fmt.Println("no cached messages match")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LEAD\tSENDER\tWHEN\tMATCH")
			for _, r := range results {
				when := time.UnixMilli(r.Message.Timestamp).Format("2006-01-02 15:04")
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					r.Message.LeadPhone, r.Message.Sender, when, r.Snippet)
			}
			return w.Flush()
		},
	}
	search.Flags().StringVar(&leadPhone, "lead", "", "restrict the search to one lead's thread")
	search.Flags().IntVar(&limit, "limit", 50, "maximum number of matches")

	cmd.AddCommand(search)
	return cmd
}
