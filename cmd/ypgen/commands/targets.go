package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/ypgen/target"
)

// TargetsCmd lists the available targets
var TargetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the page targets",
	Long:  "List every target in registry order. Targets outside the grid are only generated when named with --targets.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return renderTargets(cmd.OutOrStdout(), target.NewRegistry())
	},
}
