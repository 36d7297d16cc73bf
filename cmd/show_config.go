package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pixelgate/pixelgate/internal/config"
)

var showConfigCmd = &cobra.Command{
	Use:   "show-config",
	Short: "Display current suite configuration",
	Long:  `Shows the resolved configuration after defaults and environment overrides are applied.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		fmt.Println(cfg.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showConfigCmd)
}
