package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thesyncim/todo-e2e/pkg/todo"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scenario names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, s := range todo.Scenarios() {
			fmt.Fprintln(cmd.OutOrStdout(), s.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
