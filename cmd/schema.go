package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sol-strategies/geth-launch-config/internal/constants"
	"github.com/sol-strategies/geth-launch-config/internal/gethconfig"
)

var schemaKeyStyle = lipgloss.NewStyle().Bold(true)

var schemaCmd = &cobra.Command{
	Use:       "schema [launch|genesis|config]",
	Short:     "List the keys accepted in launch options, genesis data or the genesis fork config",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"launch", "genesis", "config"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var keys []string
		switch args[0] {
		case "launch":
			keys = gethconfig.LaunchOptionKeys()
		case "genesis":
			keys = gethconfig.GenesisKeys()
		case "config":
			keys = gethconfig.ForkConfigKeys()
		}

		out := cmd.OutOrStdout()
		for _, key := range keys {
			line := schemaKeyStyle.Render(key)
			if key == "gcmode" {
				line += " (" + strings.Join(constants.ValidGCModes, ", ") + ")"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
