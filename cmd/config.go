/*
Copyright © 2023 sanix-darker <s4nixd@gmail.com>
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sanix-darker/reviewbot/internal/config"
	"github.com/sanix-darker/reviewbot/internal/linter"
	"github.com/sanix-darker/reviewbot/internal/provider"
)

// configCmd prints the effective configuration: which providers have a
// credential, which one selection would pick, and the pipeline tunables.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration.",
	Run: func(cmd *cobra.Command, args []string) {
		conf := config.NewDefaultConfig()

		configured := provider.Configured(conf.Viper)
		selectedName := "none (linter-only)"
		if len(configured) > 0 {
			selectedName = configured[0]
		}

		fmt.Fprintf(conf.OutWriter, "providers configured: %s\n", orNone(strings.Join(configured, ", ")))
		fmt.Fprintf(conf.OutWriter, "provider selected:    %s\n", selectedName)
		fmt.Fprintf(conf.OutWriter, "github token:         %s\n", present(conf.Viper.GetString("github.token")))
		fmt.Fprintf(conf.OutWriter, "concurrency:          %d\n", conf.Concurrency)
		fmt.Fprintf(conf.OutWriter, "lint timeout:         %s\n", conf.LintTimeout)
		fmt.Fprintf(conf.OutWriter, "max prompt bytes:     %d\n", conf.MaxPromptBytes)
		fmt.Fprintf(conf.OutWriter, "max findings/comment: %d\n", conf.MaxFindingsPerFile)
		fmt.Fprintf(conf.OutWriter, "max file size:        %d\n", conf.MaxFileSize)
		fmt.Fprintf(conf.OutWriter, "include:              %s\n", strings.Join(conf.Include, ", "))
		fmt.Fprintf(conf.OutWriter, "exclude:              %s\n", strings.Join(conf.Exclude, ", "))
		fmt.Fprintf(conf.OutWriter, "linted extensions:    %s\n", strings.Join(linter.SupportedExtensions(), ", "))

		if path, err := config.GetConfigFilePath(); err == nil {
			fmt.Fprintf(conf.OutWriter, "config file:          %s\n", path)
		}
	},
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func present(s string) string {
	if s == "" {
		return "missing"
	}
	return "present"
}

func init() {
	rootCmd.AddCommand(configCmd)
}
