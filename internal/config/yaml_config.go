package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// KnownKeys are the configuration keys pf reads. config set warns on
// anything else so typos surface instead of silently doing nothing.
var KnownKeys = []string{
	"actor",
	"json",
	"quiet",
	"lock-timeout",
	"assets.base-url",
	"assets.timeout",
	"assets.offline",
	"standards.enabled",
}

// IsKnownKey reports whether pf reads the given key.
func IsKnownKey(key string) bool {
	for _, k := range KnownKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ProjectConfigPath locates the project config.yaml by walking up to
// the nearest .copilot directory. The file itself need not exist yet.
func ProjectConfigPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		copilotDir := filepath.Join(dir, ".copilot")
		if info, err := os.Stat(copilotDir); err == nil && info.IsDir() {
			return filepath.Join(copilotDir, "config.yaml"), nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return "", fmt.Errorf(".copilot directory not found (run 'pf init' first)")
}

// SetYamlConfig persists a key in the project's config.yaml, creating
// the file on first use. Dotted keys become nested mappings. The
// in-memory singleton is updated too, so the new value is visible
// without re-initializing.
func SetYamlConfig(key, value string) error {
	path, err := ProjectConfigPath()
	if err != nil {
		return err
	}

	doc, err := readYamlConfig(path)
	if err != nil {
		return err
	}
	setNested(doc, strings.Split(key, "."), parseScalar(value))

	if err := writeYamlConfig(path, doc); err != nil {
		return err
	}
	Set(key, parseScalar(value))
	return nil
}

// UnsetYamlConfig removes a key from the project's config.yaml.
// Missing files and missing keys are not errors.
func UnsetYamlConfig(key string) error {
	path, err := ProjectConfigPath()
	if err != nil {
		return err
	}

	doc, err := readYamlConfig(path)
	if err != nil {
		return err
	}
	if !unsetNested(doc, strings.Split(key, ".")) {
		return nil
	}
	return writeYamlConfig(path, doc)
}

func readYamlConfig(path string) (map[string]any, error) {
	doc := map[string]any{}
	data, err := os.ReadFile(path) // #nosec G304 - path from ProjectConfigPath
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config.yaml: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config.yaml: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func writeYamlConfig(path string, doc map[string]any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling config.yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config.yaml: %w", err)
	}
	return nil
}

// parseScalar keeps booleans, integers and durations typed in the YAML
// instead of quoting everything.
func parseScalar(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if _, err := time.ParseDuration(value); err == nil {
		return value // durations stay strings; viper parses them on read
	}
	return value
}

func setNested(doc map[string]any, parts []string, value any) {
	for len(parts) > 1 {
		child, ok := doc[parts[0]].(map[string]any)
		if !ok {
			child = map[string]any{}
			doc[parts[0]] = child
		}
		doc = child
		parts = parts[1:]
	}
	doc[parts[0]] = value
}

func unsetNested(doc map[string]any, parts []string) bool {
	for len(parts) > 1 {
		child, ok := doc[parts[0]].(map[string]any)
		if !ok {
			return false
		}
		doc = child
		parts = parts[1:]
	}
	if _, ok := doc[parts[0]]; !ok {
		return false
	}
	delete(doc, parts[0])
	return true
}
