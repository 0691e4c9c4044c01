package commands

import (
	"os"

	"maeto-catalog/internal/session"
	"maeto-catalog/lib/serviceutil"

	"github.com/spf13/cobra"
)

var noSpinner bool

func init() {
	searchCmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Do not animate while searching.")
	rootCmd.Flags().BoolVar(&noSpinner, "no-spinner", false, "Do not animate while searching.")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [--no-spinner]",
	Short: "Interactively searches for products and stores the results.",
	Args:  cobra.NoArgs,
	Run:   runSearch,
}

func runSearch(cmd *cobra.Command, args []string) {
	a := newApp()
	defer a.Close()

	s := session.New(
		a.crawler,
		a.store,
		session.NewInputPrompter(os.Stdin, os.Stdout),
		os.Stdout,
		tel,
		session.Options{Spinner: !noSpinner},
	)
	err := s.Run(cmd.Context())
	if err != nil {
		serviceutil.Fatal("search session failed", err)
	}
}
