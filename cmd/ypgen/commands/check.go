package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/ypgen/cell"
	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/genapi"
)

// CheckCmd checks whether the stored pages are up to date
var CheckCmd = newCheckCmd()

type checkOptions struct {
	selection
	dir string
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check if generated pages are up to date",
		Long: `Check if the stored pages match what would be generated now.

Runs a dry run over the selected pairs and lists every page that is
missing or differs. Nothing is written.

Exit codes:
  0 - Pages are up to date
  1 - Pages are out of date or could not be checked

Examples:
  ypgen check                        # Compare against the wiki
  ypgen check --dir ~/wikibackup/cr  # Compare against exported files`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Compare against files in this directory instead of the wiki")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *checkOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	toFile := opts.dir != ""
	s, err := openSession(cfg, &opts.selection, sessionOptions{withStore: !toFile})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	req := genapi.Request{Topics: opts.topics, Targets: opts.targets, DryRun: true}

	var results []*cell.Result
	if toFile {
		results, err = s.gen.GenerateToFile(ctx, opts.dir, req)
	} else {
		results, err = s.gen.GenerateViaStore(ctx, req)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stale := genapi.Stale(results)
	failed := genapi.Failures(results)
	if len(stale) == 0 && len(failed) == 0 {
		fmt.Fprint(out, pterm.Success.Sprintln("Pages are up to date"))
		return nil
	}

	for _, r := range stale {
		state := "differs"
		if r.Prior == nil {
			state = "missing"
		}
		fmt.Fprintf(out, "  - %s (%s, %s) %s\n", r.PageTitle, state, r.Stat, r.Location())
	}
	for _, r := range failed {
		fmt.Fprint(out, pterm.Error.Sprintf("%s: %s\n", r.PageTitle, r.Reason()))
	}

	if len(failed) > 0 {
		return errors.Newf("%d pages out of date, %d could not be checked", len(stale), len(failed))
	}
	return errors.WithHint(
		errors.Newf("%d pages out of date", len(stale)),
		"run 'ypgen generate --dry-run=false' to update them")
}
