package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dhamidi/boxdef/bmff/registry"
	"github.com/dhamidi/boxdef/format"
)

func newFmtCmd() *cobra.Command {
	var fmtOverwrite bool
	var force bool

	cmd := &cobra.Command{
		Use:   "fmt [file]",
		Short: "Reprint a box definition file in canonical form",
		Long: `Reprint a box definition file to stdout.

If a file is provided, it must have a ` + registry.Ext + ` extension.
If no file is provided, reads definitions from stdin.

Comments, bookkeeping declarations such as "int i, j;" and default
values written as { ... } blocks are not kept. Use -w to overwrite the
file in place; it refuses to drop default blocks unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var source []byte
			var err error
			filename := "<stdin>"

			if len(args) == 0 {
				if fmtOverwrite {
					return fmt.Errorf("-w requires a file argument")
				}
				source, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			} else {
				filename = args[0]
				if ext := filepath.Ext(filename); ext != registry.Ext {
					return fmt.Errorf("expected %s file, got %s", registry.Ext, ext)
				}
				source, err = os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read file: %w", err)
				}
			}

			res, err := registry.Load(cmd.Context(), filename, source, registry.Options{})
			if err != nil {
				return fmt.Errorf("format: %w", err)
			}
			if err := res.Err(); err != nil {
				return fmt.Errorf("format: %w", err)
			}
			if fmtOverwrite && len(res.Diagnostics) > 0 && !force {
				for _, d := range res.Diagnostics {
					fmt.Fprintln(cmd.ErrOrStderr(), d)
				}
				return fmt.Errorf("%s: %d default blocks would be lost; use --force", filename, len(res.Diagnostics))
			}

			var out bytes.Buffer
			enc := format.NewTextEncoder(&out)
			for _, class := range res.Classes {
				if err := enc.Encode(class); err != nil {
					return fmt.Errorf("format %s: %w", class.Name(), err)
				}
			}

			if fmtOverwrite {
				return os.WriteFile(filename, out.Bytes(), 0644)
			}
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}

	cmd.Flags().BoolVarP(&fmtOverwrite, "write", "w", false, "overwrite the file in place")
	cmd.Flags().BoolVar(&force, "force", false, "with -w, drop default blocks that cannot be reprinted")

	return cmd
}
