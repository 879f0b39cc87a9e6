package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sol-strategies/geth-launch-config/internal/genesis"
)

var errNoGenesis = errors.New("no geth.genesis in config")

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Render the configured genesis data with defaults applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Geth.ParsedGenesis == nil {
			return errNoGenesis
		}
		data, err := genesis.Marshal(cfg.Geth.ParsedGenesis)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var genesisWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write the genesis file geth init reads (geth.genesis_file unless --output is set)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Geth.ParsedGenesis == nil {
			return errNoGenesis
		}
		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = cfg.Geth.GenesisFile
		}
		if path == "-" {
			data, err := genesis.Marshal(cfg.Geth.ParsedGenesis)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		return genesis.WriteFile(path, cfg.Geth.ParsedGenesis)
	},
}

func init() {
	genesisWriteCmd.Flags().StringP("output", "o", "", "path to write to, - for stdout")
	genesisCmd.AddCommand(genesisWriteCmd)
	rootCmd.AddCommand(genesisCmd)
}
