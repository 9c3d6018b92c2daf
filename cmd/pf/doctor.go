package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/planfirst/planfirst/internal/assets"
	"github.com/planfirst/planfirst/internal/configfile"
	"github.com/planfirst/planfirst/internal/state"
	"github.com/planfirst/planfirst/internal/types"
	"github.com/planfirst/planfirst/internal/ui"
)

// checkResult is one doctor finding.
type checkResult struct {
	Name   string `json:"name"`
	Status string `json:"status"` // pass, warn, fail
	Detail string `json:"detail,omitempty"`
}

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: "setup",
	Short:   "Check the installed workflow for problems",
	Long: `Verify the installed tree: required directories, metadata, state
document shape and companion documents. Exits non-zero when any check
fails; warnings alone do not fail the run.`,
	Run: func(cmd *cobra.Command, _ []string) {
		copilotDir, err := findCopilotDir()
		if err != nil {
			FatalError("%v", err)
		}
		root := filepath.Dir(copilotDir)

		var results []checkResult
		results = append(results, checkDirs(copilotDir)...)
		results = append(results, checkMetadata(copilotDir)...)
		results = append(results, checkStateDocuments(copilotDir)...)
		results = append(results, checkCompanions(root, copilotDir)...)

		failed := 0
		for _, r := range results {
			if r.Status == "fail" {
				failed++
			}
		}

		if jsonOutput {
			printJSON(results)
		} else {
			for _, r := range results {
				icon := ui.RenderPassIcon()
				switch r.Status {
				case "warn":
					icon = ui.RenderWarnIcon()
				case "fail":
					icon = ui.RenderFailIcon()
				}
				line := fmt.Sprintf("%s %s", icon, r.Name)
				if r.Detail != "" {
					line += fmt.Sprintf(" %s", ui.RenderMuted("("+r.Detail+")"))
				}
				fmt.Println(line)
			}
			fmt.Println()
			if failed == 0 {
				fmt.Printf("%s All %d checks passed\n", ui.RenderPass("✓"), len(results))
			} else {
				fmt.Printf("%s %d of %d checks failed (run 'pf init' to repair)\n", ui.RenderFail("✗"), failed, len(results))
			}
		}

		if failed > 0 {
			os.Exit(1)
		}
	},
}

func checkDirs(copilotDir string) []checkResult {
	var results []checkResult
	for _, sub := range []string{"plans", "docs", "memory", "testing", "context", "tmp"} {
		name := "directory " + filepath.Join(".copilot", sub)
		if info, err := os.Stat(filepath.Join(copilotDir, sub)); err != nil || !info.IsDir() {
			results = append(results, checkResult{Name: name, Status: "fail", Detail: "missing"})
		} else {
			results = append(results, checkResult{Name: name, Status: "pass"})
		}
	}
	return results
}

func checkMetadata(copilotDir string) []checkResult {
	cfg, err := configfile.Load(copilotDir)
	switch {
	case err != nil:
		return []checkResult{{Name: "metadata.json", Status: "fail", Detail: err.Error()}}
	case cfg == nil:
		return []checkResult{{Name: "metadata.json", Status: "warn", Detail: "missing; install shape unknown"}}
	case cfg.SchemaVersion != configfile.CurrentSchemaVersion:
		return []checkResult{{Name: "metadata.json", Status: "fail",
			Detail: fmt.Sprintf("schema version %d, expected %d", cfg.SchemaVersion, configfile.CurrentSchemaVersion)}}
	}
	return []checkResult{{Name: "metadata.json", Status: "pass"}}
}

func checkStateDocuments(copilotDir string) []checkResult {
	var results []checkResult
	for _, kind := range state.AllKinds {
		name := "state " + filepath.Join(".copilot", kind.Path())
		path := filepath.Join(copilotDir, kind.Path())

		data, err := os.ReadFile(path)
		if err != nil {
			results = append(results, checkResult{Name: name, Status: "fail", Detail: "missing"})
			continue
		}

		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			results = append(results, checkResult{Name: name, Status: "fail", Detail: "does not parse as YAML"})
			continue
		}
		if v, _ := doc["version"].(int); v != state.SchemaVersion {
			results = append(results, checkResult{Name: name, Status: "fail",
				Detail: fmt.Sprintf("schema version %v, expected %d", doc["version"], state.SchemaVersion)})
			continue
		}
		ts, _ := doc["last_updated"].(string)
		if !types.IsTimestamp(ts) {
			results = append(results, checkResult{Name: name, Status: "fail",
				Detail: fmt.Sprintf("last_updated %q is not a UTC timestamp", ts)})
			continue
		}
		results = append(results, checkResult{Name: name, Status: "pass"})
	}

	results = append(results, checkPlansShape(copilotDir))
	return results
}

// checkPlansShape verifies the plans document wire contract: exactly
// the four top-level keys, and summary counters that match the plans
// mapping.
func checkPlansShape(copilotDir string) checkResult {
	name := "plans document shape"
	data, err := os.ReadFile(filepath.Join(copilotDir, state.KindPlans.Path()))
	if err != nil {
		return checkResult{Name: name, Status: "fail", Detail: "missing"}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return checkResult{Name: name, Status: "fail", Detail: "does not parse"}
	}
	for _, key := range []string{"version", "last_updated", "plans", "summary"} {
		if _, ok := raw[key]; !ok {
			return checkResult{Name: name, Status: "fail", Detail: "missing key " + key}
		}
	}
	if len(raw) != 4 {
		return checkResult{Name: name, Status: "fail", Detail: fmt.Sprintf("%d top-level keys, expected 4", len(raw))}
	}

	var doc state.PlansState
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return checkResult{Name: name, Status: "fail", Detail: err.Error()}
	}
	want := types.Summary{}
	for _, p := range doc.Plans {
		want.Add(p.Status, 1)
	}
	if doc.Summary != want {
		return checkResult{Name: name, Status: "fail", Detail: "summary counters do not match plans mapping"}
	}
	return checkResult{Name: name, Status: "pass"}
}

func checkCompanions(root, copilotDir string) []checkResult {
	minimal := false
	standards := true
	if cfg, err := configfile.Load(copilotDir); err == nil && cfg != nil {
		minimal = cfg.Minimal
		standards = cfg.Standards
	}

	var results []checkResult
	for _, asset := range assets.Select(minimal, standards) {
		name := "document " + asset.Target
		info, err := os.Stat(asset.TargetPath(root))
		switch {
		case err != nil:
			results = append(results, checkResult{Name: name, Status: "fail", Detail: "missing"})
		case info.Size() == 0:
			results = append(results, checkResult{Name: name, Status: "fail", Detail: "empty"})
		default:
			results = append(results, checkResult{Name: name, Status: "pass"})
		}
	}
	return results
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
