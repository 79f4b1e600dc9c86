package commands

import (
	"github.com/spf13/cobra"
)

// StatusCmd shows the grid of page states
var StatusCmd = newStatusCmd()

func newStatusCmd() *cobra.Command {
	opts := &selection{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which pages exist in the store",
		Long: `Show a topic by target grid of page states:

  ✅ page exists   ❌ page missing or empty
  ⓘ not compared   ❗ store could not be read

Pages are fetched concurrently (generate.status_concurrency). Nothing is
generated or written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openSession(cfg, opts, sessionOptions{withStore: true})
			if err != nil {
				return err
			}
			defer s.Close()

			cells, err := s.gen.Status(commandContext(cmd), opts.topics, opts.targets, s.cfg.Generate.StatusConcurrency)
			if err != nil {
				return err
			}
			return renderGrid(cmd.OutOrStdout(), cells)
		},
	}
	opts.addFlags(cmd)
	return cmd
}
