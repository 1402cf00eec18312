package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rickchristie/reactqa/toolchain"
	"github.com/rickchristie/reactqa/tools"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the agent can use",
		Args:  cobra.NoArgs,
		// The catalog does not need a model credential.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := tools.ByName(tools.Available())
			if err != nil {
				return err
			}
			registry := toolchain.New()
			for _, tool := range all {
				if err := registry.Register(tool); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), registry.CatalogPrompt())
			return nil
		},
	}
}
