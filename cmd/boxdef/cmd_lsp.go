package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/boxdef/bmff/lsp"
	"github.com/dhamidi/boxdef/bmff/registry"
)

func newLSPCmd() *cobra.Command {
	var known []string
	var workers int

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := lsp.NewServer(version, registry.Options{Workers: workers}, known...)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringSliceVar(&known, "known", nil, "class names defined elsewhere")
	cmd.Flags().IntVar(&workers, "workers", 0, "definitions parsed at once (0: one per CPU)")

	return cmd
}
