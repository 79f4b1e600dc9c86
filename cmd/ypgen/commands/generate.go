package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/teranos/ypgen/cell"
	"github.com/teranos/ypgen/editor"
	"github.com/teranos/ypgen/errors"
	"github.com/teranos/ypgen/genapi"
	"github.com/teranos/ypgen/logger"
	"github.com/teranos/ypgen/metamodel"
)

// GenerateCmd generates wiki pages for the selected topics and targets
var GenerateCmd = newGenerateCmd()

type generateOptions struct {
	selection
	dryRun     bool
	withEditor bool
	toFile     bool
	dir        string
	watch      bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate pages from the context description",
		Long: `Generate wiki pages for every selected (topic, target) pair.

Every page is compared with its stored copy first: pages that already match
are not written. Generation is a dry run unless --dry-run=false is given or
generate.dry_run is false in the configuration.

With --to-file the pages are written to {dir}/{page title}{extension} instead
of the wiki; --watch then regenerates them whenever the context changes.

Examples:
  ypgen generate --topics City                  # Dry run for one topic
  ypgen generate --targets form,template --dry-run=false
  ypgen generate --to-file --dir /tmp/wiki --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", true, "Compute and diff pages without writing (default: generate.dry_run)")
	cmd.Flags().BoolVarP(&opts.withEditor, "editor", "e", false, "Open each diff or new page in $EDITOR (default: generate.editor)")
	cmd.Flags().BoolVar(&opts.toFile, "to-file", false, "Write pages to files instead of the wiki")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Directory for --to-file (default: generate.backup_dir)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "With --to-file, regenerate when the context changes")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	if opts.watch && !opts.toFile {
		return errors.NewInvalidRequestError("--watch requires --to-file")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	req := genapi.Request{
		Topics:     opts.topics,
		Targets:    opts.targets,
		DryRun:     boolFlag(cmd, "dry-run", cfg.Generate.DryRun),
		WithEditor: boolFlag(cmd, "editor", cfg.Generate.Editor),
	}

	sessOpts := sessionOptions{withStore: !opts.toFile}
	if req.WithEditor {
		if sessOpts.viewer, err = editor.FromEnv(); err != nil {
			return err
		}
	}
	s, err := openSession(cfg, &opts.selection, sessOpts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if !opts.toFile {
		results, err := s.gen.GenerateViaStore(ctx, req)
		if reportErr := report(out, results); reportErr != nil {
			return reportErr
		}
		if err != nil {
			return err
		}
		return failuresError(results)
	}

	dir := opts.dir
	if dir == "" {
		dir = s.cfg.ExportDir()
	}
	results, err := s.gen.GenerateToFile(ctx, dir, req)
	if err != nil {
		return err
	}
	if err := report(out, results); err != nil {
		return err
	}
	if !opts.watch {
		return failuresError(results)
	}
	return watchContext(ctx, out, s, dir, req, sessOpts)
}

// watchContext regenerates the files after every change of the context
// description until ctx is cancelled
func watchContext(ctx context.Context, out io.Writer, s *session, dir string, req genapi.Request, sessOpts sessionOptions) error {
	watcher, err := metamodel.NewContextWatcher(s.contextPath)
	if err != nil {
		return err
	}
	watcher.OnReload(func(mm *metamodel.Context) error {
		gen := s.newGenerator(mm, sessOpts)
		results, err := gen.GenerateToFile(ctx, dir, req)
		if err != nil {
			return err
		}
		return report(out, results)
	})
	logger.Infow("Watching context", logger.FieldFile, s.contextPath, logger.FieldPath, dir)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func report(out io.Writer, results []*cell.Result) error {
	if len(results) == 0 {
		return nil
	}
	if err := renderResults(out, results); err != nil {
		return err
	}
	renderSummary(out, genapi.Summarize(results))
	return nil
}

func failuresError(results []*cell.Result) error {
	if failed := genapi.Failures(results); len(failed) > 0 {
		return errors.Newf("%d pages failed", len(failed))
	}
	return nil
}
