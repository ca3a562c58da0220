/*
Copyright © 2023 sanix-darker <s4nixd@gmail.com>

*/

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/sanix-darker/reviewbot/internal/provider/init"
	_ "github.com/sanix-darker/reviewbot/internal/vcs/init"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reviewbot",
	Short: "An automated code reviewer for pull requests.",
	Long: `Review the changed files of a pull request with static linters and AI,
then post the findings back to the PR as comments. Built to run once per CI
trigger; degrades gracefully when linters or AI credentials are missing.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
