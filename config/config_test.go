package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

type flagValues struct {
	format  string
	workers int
	strict  bool
	verbose int
	logFile string
	known   []string
}

func newFlags(vals *flagValues) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringVar(&vals.format, "format", "json", "")
	fs.IntVar(&vals.workers, "workers", 0, "")
	fs.BoolVar(&vals.strict, "strict", false, "")
	fs.CountVarP(&vals.verbose, "verbose", "v", "")
	fs.StringVar(&vals.logFile, "log-file", "", "")
	fs.StringSliceVar(&vals.known, "known", nil, "")
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestApply(t *testing.T) {
	dir := writeConfig(t, "strict: true\nworkers: 7\nknown:\n  - Box\n  - FullBox\nlog-file: from-file.log\n")
	t.Setenv("BOXDEF_FORMAT", "yaml")
	t.Setenv("BOXDEF_WORKERS", "9")
	t.Setenv("BOXDEF_LOG_FILE", "from-env.log")
	t.Setenv("BOXDEF_VERBOSE", "2")

	var vals flagValues
	fs := newFlags(&vals)
	if err := fs.Parse([]string{"--workers=3"}); err != nil {
		t.Fatal(err)
	}
	used, err := Apply(fs, dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(used) != dir {
		t.Errorf("got config file %q, want one in %s", used, dir)
	}

	want := flagValues{
		format:  "yaml",
		workers: 3,
		strict:  true,
		verbose: 2,
		logFile: "from-env.log",
		known:   []string{"Box", "FullBox"},
	}
	if diff := cmp.Diff(want, vals, cmp.AllowUnexported(flagValues{})); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyNoConfigFile(t *testing.T) {
	var vals flagValues
	fs := newFlags(&vals)
	used, err := Apply(fs, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if used != "" || vals.format != "json" {
		t.Errorf("got file %q and format %q", used, vals.format)
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr string
	}{
		{"malformed file", "strict: [\n", "read config"},
		{"bad value", "workers: many\n", "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var vals flagValues
			_, err := Apply(newFlags(&vals), writeConfig(t, tt.config))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want an error containing %q", err, tt.wantErr)
			}
		})
	}
}
