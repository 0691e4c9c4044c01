package commands

import (
	"errors"
	"log/slog"

	"maeto-catalog/internal/db"
	"maeto-catalog/lib/serviceutil"

	"github.com/spf13/cobra"
)

var force bool

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Replace an existing database, losing everything in it.")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [--force]",
	Short: "Creates the product database.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		database, err := db.Create(cfg.DB, force)
		if errors.Is(err, db.ErrAlreadyExists) {
			serviceutil.Fatal("the product database already exists, pass --force to replace it", err)
		}
		if err != nil {
			serviceutil.Fatal("failed to create product database", err)
		}
		defer database.Close()

		slog.Info("product database created", "path", cfg.DB)
	},
}
