package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/boxdef/bmff/registry"
	"github.com/dhamidi/boxdef/format"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var workers int

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a box definition file and dump its classes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			encoder, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read definition file: %w", err)
			}
			res, err := registry.Load(cmd.Context(), filename, data, registry.Options{Workers: workers})
			if err != nil {
				return fmt.Errorf("parse definition file: %w", err)
			}

			for _, class := range res.Classes {
				if err := encoder.Encode(class); err != nil {
					return fmt.Errorf("encode %s: %w", class.Name(), err)
				}
			}

			stderr := cmd.ErrOrStderr()
			for _, d := range res.Diagnostics {
				fmt.Fprintln(stderr, d)
			}
			for _, derr := range res.Errors {
				fmt.Fprintln(stderr, describe(derr))
			}
			if len(res.Errors) > 0 {
				return fmt.Errorf("%s: %d of %d definitions failed", filename, len(res.Errors), len(res.Errors)+len(res.Classes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format ("+strings.Join(format.Names, ", ")+")")
	cmd.Flags().IntVar(&workers, "workers", 0, "definitions parsed at once (0: one per CPU)")

	return cmd
}
