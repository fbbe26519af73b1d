// Package config resolves settings from configuration files and environment
// variables into cobra flag sets. Precedence is flags over environment over
// file over built-in defaults; a flag the user set on the command line is
// never overridden.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// EnvPrefix namespaces the environment variables read for settings.
const EnvPrefix = "LLMD_XKS_"

// DefaultFileName is the base name of the configuration file searched for in
// the standard locations.
const DefaultFileName = "xks-validate.conf"

// Source holds the values read from one configuration file, if any was found.
type Source struct {
	// Path is the file the values came from, "" when no file was found.
	Path string

	fileValues map[string]string
}

// candidatePaths lists the default configuration file locations, in
// precedence order.
func candidatePaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "."+DefaultFileName))
	}
	paths = append(paths,
		DefaultFileName,
		filepath.Join("/etc", DefaultFileName),
	)
	return paths
}

// Load reads the configuration file. With an explicit path the file must
// exist and parse; otherwise the standard locations are tried in order and
// having no file at all is fine. Files are flat KEY=VALUE lines.
func Load(explicitPath string) (*Source, error) {
	if explicitPath != "" {
		values, err := godotenv.Read(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", explicitPath, err)
		}
		return &Source{Path: explicitPath, fileValues: values}, nil
	}

	for _, path := range candidatePaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return &Source{Path: path, fileValues: values}, nil
	}
	return &Source{}, nil
}

// envKey maps a flag name to its environment variable,
// e.g. "cloud-provider" to "LLMD_XKS_CLOUD_PROVIDER".
func envKey(flagName string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// Lookup resolves one setting by flag name. Environment wins over the file;
// file keys may carry the prefix or omit it.
func (s *Source) Lookup(flagName string) (string, bool) {
	key := envKey(flagName)
	if value, ok := os.LookupEnv(key); ok {
		return value, true
	}
	if s.fileValues == nil {
		return "", false
	}
	if value, ok := s.fileValues[key]; ok {
		return value, true
	}
	value, ok := s.fileValues[strings.TrimPrefix(key, EnvPrefix)]
	return value, ok
}

// Apply fills in every flag the user did not set on the command line from
// the environment or the file.
func (s *Source) Apply(flags *pflag.FlagSet) error {
	var applyErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if applyErr != nil || f.Changed {
			return
		}
		value, ok := s.Lookup(f.Name)
		if !ok {
			return
		}
		if err := flags.Set(f.Name, value); err != nil {
			applyErr = fmt.Errorf("invalid value for %s from config: %w", f.Name, err)
		}
	})
	return applyErr
}
