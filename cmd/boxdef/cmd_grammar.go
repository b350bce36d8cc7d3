package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/boxdef/bmff/grammar"
)

func newGrammarCmd() *cobra.Command {
	var verify bool
	var productions bool
	var keywords bool
	var check bool

	cmd := &cobra.Command{
		Use:   "grammar [--check file...]",
		Short: "Print the EBNF grammar of the definition language",
		Long: `Print the EBNF grammar of the definition language.

With --check, every class definition in the given files is matched
against the grammar instead of the parser. Definitions the parser rejects
for semantic reasons, such as an unsupported width, are still accepted.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if check {
				return cobra.MinimumNArgs(1)(cmd, args)
			}
			return cobra.NoArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if check {
				return checkGrammar(cmd, args)
			}
			if !verify && !productions && !keywords {
				_, err := io.WriteString(out, grammar.Source())
				return err
			}

			g, err := grammar.Load()
			if err != nil {
				printErrors(cmd.ErrOrStderr(), err)
				return err
			}
			if verify {
				if err := grammar.Verify(); err != nil {
					printErrors(cmd.ErrOrStderr(), err)
					return fmt.Errorf("verify grammar: %d errors", len(grammar.Errors(err)))
				}
				fmt.Fprintf(out, "grammar ok: %d productions, start %s\n", len(g), grammar.Start)
			}
			if productions {
				for _, name := range grammar.Productions(g) {
					fmt.Fprintln(out, name)
				}
			}
			if keywords {
				for _, kw := range grammar.Keywords(g) {
					fmt.Fprintln(out, kw)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "check that every production is defined and reachable")
	cmd.Flags().BoolVar(&productions, "productions", false, "list production names")
	cmd.Flags().BoolVar(&keywords, "keywords", false, "list the literal tokens of the grammar")
	cmd.Flags().BoolVar(&check, "check", false, "match the definitions in the given files against the grammar")

	return cmd
}

func checkGrammar(cmd *cobra.Command, files []string) error {
	failed := 0
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		errs, err := grammar.AcceptSource(file, src)
		if err != nil {
			return err
		}
		for _, e := range errs {
			fmt.Fprintln(cmd.ErrOrStderr(), e)
		}
		failed += len(errs)
	}
	if failed > 0 {
		return fmt.Errorf("%d definitions do not match the grammar", failed)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d files match the grammar\n", len(files))
	return nil
}

func printErrors(w io.Writer, err error) {
	for _, e := range grammar.Errors(err) {
		fmt.Fprintln(w, e)
	}
}
