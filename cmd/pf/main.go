package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/planfirst/planfirst/internal/config"
	"github.com/planfirst/planfirst/internal/state"
	"github.com/planfirst/planfirst/internal/ui"
)

// Version is set at build time via -ldflags.
var Version = "0.3.0"

// jsonOutput is the global --json flag, resolved against config in
// PersistentPreRun.
var jsonOutput bool

// quiet is the global --quiet flag.
var quiet bool

var rootCmd = &cobra.Command{
	Use:   "pf",
	Short: "Plan-first workflow manager for GitHub Copilot",
	Long: `pf installs and manages a plan → approve → implement workflow
in a project directory. Plans, decisions and memory entries live in
agent-readable YAML under .copilot/; pf is the single writer that keeps
them consistent.

Start with:
  pf init          install the workflow into the current directory
  pf plan create   draft a plan
  pf plan list     see where everything stands`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if err := config.Initialize(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
		}
		// Flag > env/config for the ambient switches.
		if !cmd.Flags().Changed("json") {
			jsonOutput = config.GetBool("json")
		}
		if !cmd.Flags().Changed("quiet") {
			quiet = config.GetBool("quiet")
		}
		if jsonOutput {
			ui.SetColorEnabled(false)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
		&cobra.Group{ID: "plans", Title: "Plan Commands:"},
		&cobra.Group{ID: "records", Title: "Record Commands:"},
	)
	rootCmd.SetVersionTemplate("pf version {{.Version}}\n")
}

// FatalError prints a formatted error to stderr and exits non-zero.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}

// findCopilotDir walks up from the current directory looking for an
// installed .copilot tree.
func findCopilotDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ".copilot")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return "", fmt.Errorf(".copilot directory not found (run 'pf init' first)")
}

// openStore locates the installed tree and opens the state store with
// the configured lock timeout.
func openStore() (*state.Store, error) {
	dir, err := findCopilotDir()
	if err != nil {
		return nil, err
	}
	return state.Open(dir, state.WithLockTimeout(config.LockTimeout()))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
