package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"tenttiarkisto-uploader/internal/components/telemetry"
	"tenttiarkisto-uploader/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	dumpHttp   string
)

// set up by the root command before any subcommand runs
var (
	cfg Config
	tel telemetry.API = telemetry.SlogAPI{}
	otl telemetry.Telemetry
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigName, "The json5 config file to read.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	rootCmd.PersistentFlags().StringVar(&dumpHttp, "dump-http", "", "Write every http request/response pair into this directory.")
}

var rootCmd = &cobra.Command{
	Use:   "exam-upload",
	Short: "exam-upload submits staged exam pdfs to the exam archive.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)

		var err error
		cfg, err = loadConfig(configPath, configPath == defaultConfigName)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		otl, err = telemetry.Setup(cmd.Context(), "exam-upload", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		if otl.MeterProvider != nil {
			metered, err := telemetry.NewMeteredAPI(tel, "exam-upload")
			if err != nil {
				serviceutil.Fatal("failed to setup metrics", err)
			}
			tel = metered
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := otl.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
