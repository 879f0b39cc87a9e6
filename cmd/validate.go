package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sol-strategies/geth-launch-config/internal/gethconfig"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the config file, or a standalone launch options or genesis document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// the config was already loaded and validated before we got here
		log.Info("config is valid", "file", cfg.File)
		return nil
	},
}

var validateLaunchCmd = &cobra.Command{
	Use:   "launch FILE",
	Short: "Validate a YAML or JSON document of geth launch options",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateFile(args[0], gethconfig.StageLaunchOptions, gethconfig.ValidateLaunchOptions)
	},
}

var validateGenesisCmd = &cobra.Command{
	Use:   "genesis FILE",
	Short: "Validate a YAML or JSON genesis document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateFile(args[0], gethconfig.StageGenesis, gethconfig.ValidateGenesisData)
	},
}

func validateFile(path, stage string, validate func(map[string]any) (bool, error)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := gethconfig.ParseDocument(stage, data)
	if err != nil {
		return err
	}
	if _, err := validate(doc); err != nil {
		return err
	}

	log.Info("document is valid", "file", path, "keys", len(doc))
	return nil
}

func init() {
	validateCmd.AddCommand(validateLaunchCmd, validateGenesisCmd)
	rootCmd.AddCommand(validateCmd)
}
