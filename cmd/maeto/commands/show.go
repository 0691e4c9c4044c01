package commands

import (
	"errors"
	"fmt"
	"os"

	"maeto-catalog/internal/catalog"
	"maeto-catalog/internal/session"
	"maeto-catalog/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <sku>",
	Short: "Shows a stored product and its technical specifications.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		database, store := openStore()
		defer database.Close()

		record, err := store.Get(cmd.Context(), args[0])
		if errors.Is(err, catalog.ErrProductNotFound) {
			fmt.Fprintf(os.Stderr, "There is no product with SKU '%s'.\n", args[0])
			return
		}
		if err != nil {
			serviceutil.Fatal("failed to get product", err)
		}
		session.RenderRecord(os.Stdout, record)
	},
}
