package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/boxdef/bmff/parser"
	"github.com/dhamidi/boxdef/bmff/registry"
)

func newCheckCmd() *cobra.Command {
	var strict bool
	var known []string
	var workers int
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "check <file|dir>...",
		Short: "Parse definition files and link the classes they reference",
		Long: `Parse definition files and report parse errors, duplicate classes and
references to classes that are not defined in any of the files.

A single directory argument checks every ` + registry.Ext + ` file below it. With
--watch the directory is polled and rechecked whenever a file changes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := registry.Options{Workers: workers}
			ctx := cmd.Context()

			ws, err := openWorkspace(ctx, args, opts)
			if err != nil {
				return err
			}

			c := &checker{out: cmd.OutOrStdout(), strict: strict, known: known}
			if !watch {
				if n := c.report(ws); n > 0 {
					return fmt.Errorf("check: %d problems", n)
				}
				return nil
			}

			if len(args) != 1 {
				return fmt.Errorf("--watch needs exactly one directory")
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			c.report(ws)
			fw := registry.NewFileWatcher(ws, interval)
			fw.OnChange = func(changed []string) {
				fmt.Fprintf(c.out, "--- %d files changed\n", len(changed))
				c.report(ws)
			}
			fw.Start(ctx)
			<-ctx.Done()
			fw.Stop()
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().StringSliceVar(&known, "known", nil, "class names defined elsewhere, e.g. Box,FullBox")
	cmd.Flags().IntVar(&workers, "workers", 0, "definitions parsed at once (0: one per CPU)")
	cmd.Flags().BoolVar(&watch, "watch", false, "recheck when files change")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval for --watch")

	return cmd
}

// openWorkspace loads a single directory argument recursively and
// otherwise every argument as one file.
func openWorkspace(ctx context.Context, args []string, opts registry.Options) (*registry.Workspace, error) {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && info.IsDir() {
			ws := registry.NewWorkspace(args[0], opts)
			if err := ws.ScanAll(ctx); err != nil {
				return nil, fmt.Errorf("scan %s: %w", args[0], err)
			}
			return ws, nil
		}
	}
	ws := registry.NewWorkspace(".", opts)
	for _, path := range args {
		if err := ws.ScanFile(ctx, path); err != nil {
			return nil, fmt.Errorf("read definition file: %w", err)
		}
	}
	return ws, nil
}

type checker struct {
	out    io.Writer
	strict bool
	known  []string
}

// report prints the problems of every file in ws and returns how many
// count as errors.
func (c *checker) report(ws *registry.Workspace) int {
	problems := 0
	classes := 0
	for _, path := range ws.Paths() {
		f := ws.GetFile(path)
		if f.LoadErr != nil {
			fmt.Fprintf(c.out, "error: %v\n", f.LoadErr)
			problems++
			continue
		}
		classes += len(f.Result.Classes)
		for _, derr := range ws.Errors(path) {
			fmt.Fprintf(c.out, "error: %s\n", describe(derr))
			problems++
		}
		for _, d := range f.Result.Diagnostics {
			fmt.Fprintf(c.out, "%s: %s: %s\n", d.Severity, d.Span.Start, d.Message)
			if c.strict {
				problems++
			}
		}
		for _, u := range ws.Unresolved(path, c.known...) {
			fmt.Fprintf(c.out, "error: %s\n", u)
			problems++
		}
	}
	fmt.Fprintf(c.out, "%d files, %d classes, %d problems\n", len(ws.Paths()), classes, problems)
	return problems
}

// describe renders a definition error with a position in front, also for
// failures that are not parse errors such as duplicate classes.
func describe(derr *registry.DefinitionError) string {
	var perr *parser.Error
	if errors.As(derr, &perr) || derr.Span.Start.Line == 0 {
		return derr.Error()
	}
	return derr.Span.Start.String() + ": " + derr.Error()
}
