// Package config loads tmplgen settings from flags, the environment and an
// optional .tmplgen.yml file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/crunch/tmplgen/internal/generation"
)

// Config keys. Flag names match the keys so viper.BindPFlag can map them 1:1.
const (
	KeyBaseURL        = "base-url"
	KeyAPIPath        = "api-path"
	KeyTimeout        = "timeout"
	KeyDebug          = "debug"
	KeyLogFile        = "log-file"
	KeyValidateSchema = "validate-schema"
	KeyCatalogURL     = "catalog-url"
)

const (
	// EnvPrefix is prepended to keys for environment overrides, e.g.
	// TMPLGEN_BASE_URL.
	EnvPrefix = "tmplgen"

	configName     = ".tmplgen"
	defaultTimeout = 2 * time.Minute
)

// Settings is the resolved runtime configuration.
type Settings struct {
	BaseURL        string
	APIPath        string
	Timeout        time.Duration
	Debug          bool
	LogFile        string
	ValidateSchema bool
	CatalogURL     string
}

// SetDefaults registers default values and environment overrides on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyBaseURL, generation.DefaultBaseURL)
	v.SetDefault(KeyAPIPath, generation.DefaultAPIPath)
	v.SetDefault(KeyTimeout, defaultTimeout)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyLogFile, filepath.Join(os.TempDir(), "tmplgen.log"))
	v.SetDefault(KeyValidateSchema, false)
	v.SetDefault(KeyCatalogURL, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Init loads configuration into v. An explicit configFile must exist;
// otherwise .tmplgen.{yml,yaml,json} is looked up in the current directory
// and then in the home directory, and a missing file is not an error. It
// returns the path of the file that was loaded, if any.
func Init(v *viper.Viper, configFile string) (string, error) {
	SetDefaults(v)

	if configFile != "" {
		if err := LoadFile(v, configFile); err != nil {
			return "", err
		}
		return configFile, nil
	}

	// Current directory has higher priority than home directory.
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}
	v.SetConfigName(configName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}

	// Re-read the file through substitution now that we know where it is.
	path := v.ConfigFileUsed()
	if err := LoadFile(v, path); err != nil {
		return "", err
	}
	return path, nil
}

// LoadFile reads a config file, expands ${env://...} references and merges
// the result into v. The format is JSON for .json files and YAML otherwise.
func LoadFile(v *viper.Viper, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	content, err := (&EnvSubstituter{}).Substitute(string(raw))
	if err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	configType := "yaml"
	if strings.HasSuffix(path, ".json") {
		configType = "json"
	}
	v.SetConfigType(configType)
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Load materialises and validates Settings from v.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		BaseURL:        strings.TrimSpace(v.GetString(KeyBaseURL)),
		APIPath:        strings.TrimSpace(v.GetString(KeyAPIPath)),
		Timeout:        v.GetDuration(KeyTimeout),
		Debug:          v.GetBool(KeyDebug),
		LogFile:        strings.TrimSpace(v.GetString(KeyLogFile)),
		ValidateSchema: v.GetBool(KeyValidateSchema),
		CatalogURL:     strings.TrimSpace(v.GetString(KeyCatalogURL)),
	}

	if err := validateURL(KeyBaseURL, s.BaseURL); err != nil {
		return Settings{}, err
	}
	if s.CatalogURL != "" {
		if err := validateURL(KeyCatalogURL, s.CatalogURL); err != nil {
			return Settings{}, err
		}
	}
	if s.Timeout < 0 {
		return Settings{}, fmt.Errorf("%s must not be negative, got %s", KeyTimeout, s.Timeout)
	}
	return s, nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must include scheme and host, got %q", key, raw)
	}
	return nil
}
