package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"maeto-catalog/internal/components/telemetry"
	"maeto-catalog/internal/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	dbPath     string
	verbose    bool
	dumpHTTP   string
)

// set up by the root command before any subcommand runs
var (
	cfg  config.Config
	otel telemetry.Otel
	tel  telemetry.API
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "The config file to read.")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "The product database, overrides the config file.")
	rootCmd.PersistentFlags().StringVar(&dumpHTTP, "dump-http", "", "Write every http response to this directory.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug information.")
}

var rootCmd = &cobra.Command{
	Use:   "maeto",
	Short: "maeto searches the lojamaeto.com catalog and keeps what it finds in a local database.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DB = dbPath
		}
		if dumpHTTP != "" {
			cfg.DumpHTTPDir = dumpHTTP
		}

		otel, err = telemetry.SetupOtel(cmd.Context(), "maeto", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		tel = telemetry.NewSlogAPI()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := otel.Shutdown(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "flush telemetry:", err)
		}
	},
	// searching is what people run this for
	Run: runSearch,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
