// Package configfile reads and writes .copilot/metadata.json, the
// small machine-managed record of how a workspace was installed.
// User-tunable settings live in config.yaml and are handled by the
// config package.
package configfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const ConfigFileName = "metadata.json"

// Config captures the installed workspace shape. It is written by
// pf init and consulted by pf doctor.
type Config struct {
	SchemaVersion int    `json:"schema_version"`
	PfVersion     string `json:"pf_version,omitempty"`
	Created       string `json:"created,omitempty"`

	// Install shape, so reinstall and doctor know what to expect.
	Minimal   bool `json:"minimal,omitempty"`
	Standards bool `json:"standards"`
}

// CurrentSchemaVersion is the metadata.json schema this build writes.
const CurrentSchemaVersion = 1

func DefaultConfig() *Config {
	return &Config{
		SchemaVersion: CurrentSchemaVersion,
		Standards:     true,
	}
}

func ConfigPath(copilotDir string) string {
	return filepath.Join(copilotDir, ConfigFileName)
}

// Load reads metadata.json from copilotDir. A missing file returns
// (nil, nil): the caller decides whether that means "not installed".
func Load(copilotDir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(copilotDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Save(copilotDir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(ConfigPath(copilotDir), data, 0600); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	return nil
}
