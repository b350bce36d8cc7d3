// Package config fills command line flags from BOXDEF_* environment
// variables and a .boxdef.yaml file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"
)

const (
	// EnvPrefix prefixes environment variables: --log-file is read from
	// BOXDEF_LOG_FILE.
	EnvPrefix = "boxdef"

	// FileName is the config file name without extension.
	FileName = ".boxdef"
)

var log = commonlog.GetLogger("boxdef.config")

// Apply sets every flag of flags that was not given on the command line
// from the environment or, failing that, from the first config file found
// in dirs. A missing config file is not an error. It returns the config
// file used, if any.
func Apply(flags *pflag.FlagSet, dirs ...string) (string, error) {
	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	if len(dirs) > 0 {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return "", fmt.Errorf("read config: %w", err)
			}
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var errs []string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		var err error
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			err = sv.Replace(v.GetStringSlice(f.Name))
		} else {
			err = flags.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.Name, err))
		}
	})

	used := v.ConfigFileUsed()
	if used != "" {
		log.Debugf("using config file %s", used)
	}
	if len(errs) > 0 {
		return used, fmt.Errorf("apply config: %s", strings.Join(errs, "; "))
	}
	return used, nil
}
