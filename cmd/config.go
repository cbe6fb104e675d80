package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/datagen/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration or write it to a file",
	Long: `Print the configuration after merging --config over the built-in defaults.

With --write the effective configuration is saved instead. Paths ending in
.yaml or .yml are written as YAML, anything else as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("write")
		if path != "" {
			saved, err := config.Save(appCfg, path)
			if err != nil {
				return err
			}
			logger.Info("configuration saved", zap.String("path", saved))
			fmt.Fprintln(cmd.OutOrStdout(), saved)
			return nil
		}

		out, err := yaml.Marshal(appCfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configCmd.Flags().String("write", "", "Save the effective configuration to this path")
}
