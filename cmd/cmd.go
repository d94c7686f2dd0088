package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/auditforge/paygate/internal/config"
	"github.com/auditforge/paygate/pkg/logger"
	"github.com/auditforge/paygate/pkg/logger/slogx"
)

var rootCmd = &cobra.Command{
	Use:  "paygate",
	Long: `Paygate verifies on-chain stablecoin payments and manages subscription tiers`,
}

func init() {
	var configFile string

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file, E.g. `./config.yaml`")

	// Initialize configuration and logger on start command
	cobra.OnInitialize(func() {
		conf := config.Parse(configFile)

		if err := logger.Init(conf.Logger); err != nil {
			logger.Panic("Failed to initialize logger", slogx.Error(err), slog.Any("config", conf.Logger))
		}
	})
}

func Execute(ctx context.Context) {
	// Register sub-commands
	rootCmd.AddCommand(
		NewRunCommand(),
		NewVersionCommand(),
		NewMigrateCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Panic("Failed to execute root command", slogx.Error(err))
	}
}
