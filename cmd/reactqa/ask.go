package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rickchristie/reactqa/agents/react"
)

func newAskCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := newSession(ctx, a.cfg, newMetricsRegistry(ctx, a.cfg.MetricsAddr))
			if err != nil {
				return err
			}

			result := sess.Ask(ctx, strings.Join(args, " "))
			out := cmd.OutOrStdout()
			if verbose && len(result.Scratchpad) > 0 {
				fmt.Fprintf(out, "%s%s%s\n", colorDim, react.RenderScratchpad(result.Scratchpad), colorReset)
			}
			fmt.Fprintln(out, result.Answer)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the reasoning trace before the answer")
	return cmd
}
