package commands

import (
	"os"
	"time"

	"maeto-catalog/internal/catalog"
	"maeto-catalog/internal/session"
	"maeto-catalog/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	listTerm  string
	listSince time.Duration
	listLimit int
)

func init() {
	listCmd.Flags().StringVar(&listTerm, "term", "", "Only products last found by this search term.")
	listCmd.Flags().DurationVar(&listSince, "since", 0, "Only products updated within this long (ex. 24h).")
	listCmd.Flags().IntVar(&listLimit, "limit", 50, "The maximum amount of products to show, 0 shows all of them.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--term <term>] [--since <duration>] [--limit <n>]",
	Short: "Lists stored products, most recently updated first.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		database, store := openStore()
		defer database.Close()

		filter := catalog.ListFilter{
			Term:  listTerm,
			Limit: listLimit,
		}
		if listSince > 0 {
			filter.Since = time.Now().Add(-listSince)
		}

		records, err := store.List(cmd.Context(), filter)
		if err != nil {
			serviceutil.Fatal("failed to list products", err)
		}
		session.RenderRecords(os.Stdout, records)
	},
}
