package scaffold

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/planfirst/planfirst/internal/assets"
	"github.com/planfirst/planfirst/internal/configfile"
	"github.com/planfirst/planfirst/internal/state"
	"github.com/planfirst/planfirst/internal/types"
)

var testNow = func() time.Time {
	return time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
}

type failingProvider struct{}

func (failingProvider) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func install(t *testing.T, root string, mutate func(*Options)) *Result {
	t.Helper()
	opts := Options{
		Root:      root,
		Standards: true,
		Embedded:  assets.NewEmbedded(),
		Version:   "0.0.0-test",
		Clock:     testNow,
	}
	if mutate != nil {
		mutate(&opts)
	}
	res, err := Install(context.Background(), opts)
	if err != nil {
		t.Fatalf("Install() = %v", err)
	}
	return res
}

func mustExist(t *testing.T, root string, rel string) {
	t.Helper()
	info, err := os.Stat(filepath.Join(root, rel))
	if err != nil {
		t.Errorf("%s: %v", rel, err)
		return
	}
	if !info.IsDir() && info.Size() == 0 {
		t.Errorf("%s is empty", rel)
	}
}

func TestInstallCreatesFullTree(t *testing.T) {
	root := t.TempDir()
	install(t, root, nil)

	for _, rel := range []string{
		".copilot/plans/state.yaml",
		".copilot/docs/index.yaml",
		".copilot/memory/memory.yaml",
		".copilot/testing/state.yaml",
		".copilot/context/state.yaml",
		".copilot/instructions.md",
		".copilot/.gitignore",
		".copilot/metadata.json",
		".copilot/tmp",
		".copilot/standards/general.md",
		".copilot/standards/go.md",
		".copilot/standards/python.md",
		".copilot/standards/typescript.md",
		".github/agents/planning.agent.md",
		".github/copilot-instructions.md",
		".github/prompts/plan.prompt.md",
		".github/prompts/implement.prompt.md",
		".github/prompts/review.prompt.md",
	} {
		mustExist(t, root, rel)
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	root := t.TempDir()
	first := install(t, root, nil)

	// Mangle a content file; reinstall must restore it.
	instructions := filepath.Join(root, ".copilot", "instructions.md")
	if err := os.WriteFile(instructions, []byte("mangled"), 0644); err != nil {
		t.Fatal(err)
	}

	second := install(t, root, nil)

	if len(second.DirsCreated) != 0 {
		t.Errorf("second install created dirs: %v", second.DirsCreated)
	}
	if len(first.DirsCreated) == 0 {
		t.Error("first install created no dirs")
	}

	data, err := os.ReadFile(instructions)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "mangled" {
		t.Error("reinstall did not refresh content file")
	}
}

func TestInstallPreservesExistingState(t *testing.T) {
	root := t.TempDir()
	install(t, root, nil)

	// Simulate a tracked plan by writing a non-empty state file.
	plansPath := filepath.Join(root, ".copilot", "plans", "state.yaml")
	record := "version: 1\nlast_updated: \"2025-06-01T10:00:00Z\"\nplans:\n  PLAN-001:\n    title: Keep me\nsummary: {}\n"
	if err := os.WriteFile(plansPath, []byte(record), 0644); err != nil {
		t.Fatal(err)
	}

	res := install(t, root, nil)

	data, err := os.ReadFile(plansPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != record {
		t.Error("reinstall rewrote a non-empty state file")
	}
	found := false
	for _, p := range res.StatePreserved {
		if p == filepath.Join(".copilot", "plans", "state.yaml") {
			found = true
		}
	}
	if !found {
		t.Errorf("StatePreserved = %v, missing plans state", res.StatePreserved)
	}
}

func TestInstallFallsBackWhenRemoteFails(t *testing.T) {
	root := t.TempDir()
	res := install(t, root, func(o *Options) {
		o.Remote = failingProvider{}
	})

	// Every selected asset fell back, and every file still exists.
	want := len(assets.Select(false, true))
	if len(res.Fallbacks) != want {
		t.Errorf("Fallbacks = %d, want %d", len(res.Fallbacks), want)
	}
	if len(res.Warnings) != want {
		t.Errorf("Warnings = %d, want %d", len(res.Warnings), want)
	}
	for _, a := range assets.Select(false, true) {
		mustExist(t, root, a.Target)
	}
}

func TestInstallMinimal(t *testing.T) {
	root := t.TempDir()
	install(t, root, func(o *Options) { o.Minimal = true })

	mustExist(t, root, ".github/agents/planning.agent.md")
	mustExist(t, root, ".copilot/plans/state.yaml")

	if _, err := os.Stat(filepath.Join(root, ".copilot", "standards")); !os.IsNotExist(err) {
		t.Error("minimal install created .copilot/standards")
	}
	if _, err := os.Stat(filepath.Join(root, ".github", "prompts")); !os.IsNotExist(err) {
		t.Error("minimal install created .github/prompts")
	}
}

func TestInstallNoStandards(t *testing.T) {
	root := t.TempDir()
	install(t, root, func(o *Options) { o.Standards = false })

	mustExist(t, root, ".github/prompts/plan.prompt.md")
	if _, err := os.Stat(filepath.Join(root, ".copilot", "standards")); !os.IsNotExist(err) {
		t.Error("--no-standards install created .copilot/standards")
	}
}

func TestInstalledStateShape(t *testing.T) {
	root := t.TempDir()
	install(t, root, nil)

	data, err := os.ReadFile(filepath.Join(root, ".copilot", "plans", "state.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("state.yaml does not parse: %v", err)
	}
	for _, key := range []string{"version", "last_updated", "plans", "summary"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("state.yaml missing key %q", key)
		}
	}
	if len(doc) != 4 {
		t.Errorf("state.yaml has %d top-level keys, want 4: %v", len(doc), doc)
	}

	ts, _ := doc["last_updated"].(string)
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`).MatchString(ts) {
		t.Errorf("last_updated = %q, want UTC second precision", ts)
	}
}

func TestMetadataRecordsInstallShape(t *testing.T) {
	root := t.TempDir()
	install(t, root, func(o *Options) { o.Standards = false })

	cfg, err := configfile.Load(filepath.Join(root, CopilotDir))
	if err != nil {
		t.Fatal(err)
	}
	if cfg == nil {
		t.Fatal("metadata.json missing after install")
	}
	if cfg.SchemaVersion != configfile.CurrentSchemaVersion {
		t.Errorf("SchemaVersion = %d", cfg.SchemaVersion)
	}
	if cfg.PfVersion != "0.0.0-test" {
		t.Errorf("PfVersion = %q", cfg.PfVersion)
	}
	if cfg.Standards {
		t.Error("Standards = true, want false")
	}
	if cfg.Created != "2025-06-01T10:00:00Z" {
		t.Errorf("Created = %q", cfg.Created)
	}
}

func TestMetadataKeepsOriginalCreation(t *testing.T) {
	root := t.TempDir()
	install(t, root, nil)

	later := func() time.Time { return time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC) }
	install(t, root, func(o *Options) { o.Clock = later })

	cfg, err := configfile.Load(filepath.Join(root, CopilotDir))
	if err != nil || cfg == nil {
		t.Fatalf("Load() = %v, %v", cfg, err)
	}
	if cfg.Created != "2025-06-01T10:00:00Z" {
		t.Errorf("Created = %q, want the first install's stamp", cfg.Created)
	}
}

// A full workflow pass over a fresh install: create, review, approve,
// implement, complete, archive.
func TestInstallThenWorkflow(t *testing.T) {
	root := t.TempDir()
	install(t, root, nil)

	store, err := state.Open(filepath.Join(root, CopilotDir), state.WithClock(testNow))
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	ctx := context.Background()

	plan, err := store.CreatePlan(ctx, &types.Plan{Title: "Add request caching", Author: "agent"})
	if err != nil {
		t.Fatalf("CreatePlan() = %v", err)
	}
	if plan.ID != "PLAN-001" {
		t.Errorf("ID = %s, want PLAN-001", plan.ID)
	}

	path := []types.Status{
		types.StatusPendingReview, types.StatusApproved, types.StatusInProgress,
		types.StatusCompleted, types.StatusArchived,
	}
	for _, target := range path {
		if _, err := store.TransitionPlan(ctx, plan.ID, target); err != nil {
			t.Fatalf("TransitionPlan(%s) = %v", target, err)
		}
	}

	sum, err := store.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Archived != 1 || sum.Total() != 1 {
		t.Errorf("summary = %+v, want one archived plan", sum)
	}
}
