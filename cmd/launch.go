package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sol-strategies/geth-launch-config/internal/launcher"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Initialise the data dir if needed and run geth until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		skipInit, _ := cmd.Flags().GetBool("skip-init")
		if skipInit {
			cfg.Geth.Init = false
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return launcher.New(cfg).Launch(ctx)
	},
}

func init() {
	launchCmd.Flags().Bool("skip-init", false, "do not run geth init (overrides geth.init)")
	rootCmd.AddCommand(launchCmd)
}
