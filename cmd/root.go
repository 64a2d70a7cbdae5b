package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dbt-metabase/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "dbt-metabase",
	Short: "Push dbt manifest metadata to Metabase",
	Long: `dbt-metabase reads a dbt manifest and makes the Metabase data model mirror it:
table and column descriptions, visibility, semantic types, foreign keys and field order.
It runs once from the command line or as an HTTP service.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Interrupts cancel the running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// Console format with ISO8601 timestamps reads best in a terminal
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
