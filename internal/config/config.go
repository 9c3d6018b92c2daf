package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/planfirst/planfirst/internal/assets"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()

	// Only config.yaml is read here; .copilot/metadata.json is owned by
	// the configfile package.
	v.SetConfigType("yaml")

	// Precedence: project .copilot/config.yaml > ~/.config/pf/config.yaml
	// > ~/.copilot/config.yaml
	configFileSet := false

	// Walk up parent directories so pf works from subdirectories of the
	// project.
	cwd, err := os.Getwd()
	if err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".copilot", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "pf", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	if !configFileSet {
		if homeDir, err := os.UserHomeDir(); err == nil {
			configPath := filepath.Join(homeDir, ".copilot", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over config file values.
	// E.g. PF_JSON, PF_ACTOR, PF_ASSETS_BASE_URL.
	v.SetEnvPrefix("PF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("json", false)
	v.SetDefault("quiet", false)
	v.SetDefault("actor", "")
	v.SetDefault("lock-timeout", "30s")

	v.SetDefault("assets.base-url", assets.DefaultBaseURL)
	v.SetDefault("assets.timeout", assets.DefaultFetchTimeout.String())
	v.SetDefault("assets.offline", false)

	v.SetDefault("standards.enabled", true)

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// ResetForTesting clears the config state, allowing Initialize() to be
// called again. Not thread-safe; only call from single-threaded test
// contexts.
func ResetForTesting() {
	v = nil
}

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault    ConfigSource = "default"
	SourceConfigFile ConfigSource = "config_file"
	SourceEnvVar     ConfigSource = "env_var"
	SourceFlag       ConfigSource = "flag"
)

// GetValueSource returns the source of a configuration value.
// Priority (highest to lowest): env var > config file > default.
// Flag overrides are handled in main.go since viper doesn't know about
// cobra flags.
func GetValueSource(key string) ConfigSource {
	if v == nil {
		return SourceDefault
	}

	envKey := "PF_" + strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(key, "-", "_"), ".", "_"))
	if os.Getenv(envKey) != "" {
		return SourceEnvVar
	}

	if v.InConfig(key) {
		return SourceConfigFile
	}

	return SourceDefault
}

// GetString retrieves a string configuration value.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value.
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetDuration retrieves a duration configuration value.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set sets a configuration value.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map.
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}

// ConfigFileUsed returns the path to the config file that was loaded,
// or empty string if none was found.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// GetActor resolves the actor recorded as the author of plans,
// decisions and memory entries.
// Priority chain:
//  1. flagValue (from --author)
//  2. PF_ACTOR env var / config.yaml actor field (via viper)
//  3. git config user.name
//  4. hostname
func GetActor(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if actor := GetString("actor"); actor != "" {
		return actor
	}

	cmd := exec.Command("git", "config", "user.name")
	if output, err := cmd.Output(); err == nil {
		if gitUser := strings.TrimSpace(string(output)); gitUser != "" {
			return gitUser
		}
	}

	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}

	return "unknown"
}

// LockTimeout returns the configured state lock timeout, falling back
// to 30s when unset or unparsable.
func LockTimeout() time.Duration {
	d := GetDuration("lock-timeout")
	if d <= 0 {
		return 30 * time.Second
	}
	return d
}

// AssetTimeout returns the configured per-asset fetch timeout.
func AssetTimeout() time.Duration {
	d := GetDuration("assets.timeout")
	if d <= 0 {
		return assets.DefaultFetchTimeout
	}
	return d
}
