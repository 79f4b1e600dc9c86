package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/ypgen/am"
	"github.com/teranos/ypgen/cmd/ypgen/commands"
	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "ypgen",
	Short: "ypgen - generate Semantic MediaWiki pages from a context description",
	Long: `ypgen - generate Semantic MediaWiki pages from a context description.

A context describes topics, their properties and the links between topics.
ypgen derives one page per (topic, target) pair: categories, concepts, forms,
help pages, list pages, templates, property pages and Python dataclasses.
Pages are reconciled with the wiki and only written when they differ.

Available commands:
  generate - Generate pages into the wiki or into files
  check    - Check whether the stored pages are up to date
  status   - Show which pages exist
  targets  - List the page targets
  am       - Show the ypgen configuration ("I am")
  version  - Show version information

Examples:
  ypgen status                              # Grid of page states
  ypgen generate --topics City              # Dry run for one topic
  ypgen generate --dry-run=false            # Write every changed page
  ypgen check                               # Exit non-zero if pages are stale`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			am.SetConfigFile(path)
		}

		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonOutput, _ := cmd.Flags().GetBool("log-json")
		if !cmd.Flags().Changed("log-json") {
			// a broken config is reported by the command that needs it
			if cfg, err := am.Load(); err == nil {
				jsonOutput = cfg.Log.JSON
			}
		}
		if err := logger.Initialize(jsonOutput, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Log as JSON (default: log.json)")
	rootCmd.PersistentFlags().String("config", "", "Read only this config file instead of searching for am.toml")

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.StatusCmd)
	rootCmd.AddCommand(commands.TargetsCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		stop()
		os.Exit(1)
	}
}
