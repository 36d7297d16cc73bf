package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pixelgate/pixelgate/internal/browser"
	"github.com/pixelgate/pixelgate/internal/config"
)

var (
	forceInit bool

	errConfigExists = errors.New("configuration file already exists")
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a suite configuration interactively",
	Long: `Walks through the suite setup questions and writes pixelgate.yaml.

An existing configuration file is never overwritten unless --force is
passed.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultConfigFile
		}

		if _, err := os.Stat(path); err == nil && !forceInit {
			return fmt.Errorf("%w: %s (use --force to overwrite)", errConfigExists, path)
		}

		cfg, err := askSuiteConfig()
		if err != nil {
			return err
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}

		fmt.Printf("\n✅ Wrote %s\n", path)
		fmt.Println("Run 'pixelgate update' to capture the initial baselines.")
		return nil
	},
}

func askSuiteConfig() (*config.Config, error) {
	var sourceType string
	if err := survey.AskOne(&survey.Select{
		Message: "Where do your test cases come from?",
		Options: []string{"storybook", "pages"},
		Default: "storybook",
	}, &sourceType); err != nil {
		return nil, err
	}

	var sourceURL string
	prompt := "Storybook URL:"
	if sourceType == "pages" {
		prompt = "Base URL of the site under test:"
	}
	if err := survey.AskOne(&survey.Input{
		Message: prompt,
		Default: "http://localhost:6006",
	}, &sourceURL, survey.WithValidator(survey.Required)); err != nil {
		return nil, err
	}

	var browsers []string
	if err := survey.AskOne(&survey.MultiSelect{
		Message: "Browsers to capture with:",
		Options: browser.Names(),
		Default: []string{config.DefaultBrowser},
	}, &browsers, survey.WithValidator(survey.MinItems(1))); err != nil {
		return nil, err
	}

	var threshold float64
	if err := survey.AskOne(&survey.Input{
		Message: "Maximum allowed diff percentage (0 = pixel perfect):",
		Default: "0",
	}, &threshold); err != nil {
		return nil, err
	}

	src := config.Source{Type: sourceType}
	if sourceType == "pages" {
		src.BaseURL = sourceURL
	} else {
		src.URL = sourceURL
	}

	cfg := &config.Config{
		Sources:   []config.Source{src},
		Browsers:  browsers,
		Threshold: threshold,
	}
	cfg.ApplyDefaults()

	return cfg, nil
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}
