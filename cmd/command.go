package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sol-strategies/geth-launch-config/internal/gethcmd"
)

var commandCmd = &cobra.Command{
	Use:   "command",
	Short: "Print the geth command line built from the configured launch options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		initOnly, _ := cmd.Flags().GetBool("init")

		var argv []string
		if initOnly {
			argv = gethcmd.InitArgs(cfg.Geth.ParsedLaunchOptions, cfg.Geth.GenesisFile)
		} else {
			var err error
			if argv, err = gethcmd.Build(cfg.Geth.ParsedLaunchOptions); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), shellJoin(argv))
		return nil
	},
}

func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'\\$*?") {
			arg = strconv.Quote(arg)
		}
		quoted[i] = arg
	}
	return strings.Join(quoted, " ")
}

func init() {
	commandCmd.Flags().Bool("init", false, "print the \"geth init\" command instead")
	rootCmd.AddCommand(commandCmd)
}
