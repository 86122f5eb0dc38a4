package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "todo-e2e",
	Short: "Browser end-to-end checks for the todo application",
	Long: `todo-e2e opens the todo application in Chrome and runs UI scenarios
against it. Every scenario starts and ends with an empty list.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}
