package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/planfirst/planfirst/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := filepath.Join(t.TempDir(), ".copilot")
	if err := os.MkdirAll(filepath.Join(root, "tmp"), 0750); err != nil {
		t.Fatal(err)
	}
	if err := EnsureAll(root, testNow); err != nil {
		t.Fatal(err)
	}
	store, err := Open(root, WithClock(func() time.Time { return testNow }), WithLockTimeout(2*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestCreatePlan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan, err := store.CreatePlan(ctx, &types.Plan{Title: "Add request caching", Author: "reviewer"})
	if err != nil {
		t.Fatalf("CreatePlan() = %v", err)
	}
	if plan.ID != "PLAN-001" {
		t.Errorf("ID = %s, want PLAN-001", plan.ID)
	}
	if plan.Status != types.StatusDraft {
		t.Errorf("Status = %s, want draft", plan.Status)
	}
	if plan.Created != "2025-06-01T10:00:00Z" || plan.Updated != plan.Created {
		t.Errorf("timestamps = %s / %s, want both 2025-06-01T10:00:00Z", plan.Created, plan.Updated)
	}

	got, err := store.GetPlan(ctx, "PLAN-001")
	if err != nil {
		t.Fatalf("GetPlan() = %v", err)
	}
	if got == nil || got.Title != "Add request caching" {
		t.Errorf("GetPlan() = %+v, want the created plan", got)
	}

	sum, err := store.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Draft != 1 || sum.Total() != 1 {
		t.Errorf("summary = %+v, want draft=1 only", sum)
	}
}

func TestCreatePlanMonotonicIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, want := range []string{"PLAN-001", "PLAN-002", "PLAN-003"} {
		plan, err := store.CreatePlan(ctx, &types.Plan{Title: "Plan"})
		if err != nil {
			t.Fatalf("CreatePlan() #%d = %v", i, err)
		}
		if plan.ID != want {
			t.Errorf("ID #%d = %s, want %s", i, plan.ID, want)
		}
	}
}

func TestCreatePlanRejectsEmptyTitle(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.CreatePlan(context.Background(), &types.Plan{}); err == nil {
		t.Fatal("CreatePlan(empty title) = nil, want error")
	}
}

func TestTransitionPlanFullLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan, err := store.CreatePlan(ctx, &types.Plan{Title: "Lifecycle"})
	if err != nil {
		t.Fatal(err)
	}

	path := []types.Status{
		types.StatusPendingReview,
		types.StatusApproved,
		types.StatusInProgress,
		types.StatusCompleted,
		types.StatusArchived,
	}
	for _, target := range path {
		got, err := store.TransitionPlan(ctx, plan.ID, target)
		if err != nil {
			t.Fatalf("TransitionPlan(%s) = %v", target, err)
		}
		if got.Status != target {
			t.Errorf("Status = %s, want %s", got.Status, target)
		}
	}

	sum, err := store.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Archived != 1 || sum.Total() != 1 {
		t.Errorf("summary after lifecycle = %+v, want archived=1 only", sum)
	}
}

func TestTransitionPlanIllegalEdge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan, err := store.CreatePlan(ctx, &types.Plan{Title: "Shortcut"})
	if err != nil {
		t.Fatal(err)
	}

	// draft -> in_progress skips review and approval.
	_, err = store.TransitionPlan(ctx, plan.ID, types.StatusInProgress)
	var te *types.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("TransitionPlan() = %v, want *TransitionError", err)
	}

	// The failed transition must not have touched the document.
	got, err := store.GetPlan(ctx, plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != types.StatusDraft {
		t.Errorf("status after failed transition = %s, want draft", got.Status)
	}
}

func TestTransitionPlanRevise(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan, err := store.CreatePlan(ctx, &types.Plan{Title: "Revise me"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.TransitionPlan(ctx, plan.ID, types.StatusPendingReview); err != nil {
		t.Fatal(err)
	}
	got, err := store.TransitionPlan(ctx, plan.ID, types.StatusDraft)
	if err != nil {
		t.Fatalf("revise (pending_review -> draft) = %v", err)
	}
	if got.Status != types.StatusDraft {
		t.Errorf("status = %s, want draft", got.Status)
	}
}

func TestTransitionPlanNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.TransitionPlan(context.Background(), "PLAN-999", types.StatusPendingReview); err == nil {
		t.Fatal("TransitionPlan(missing) = nil, want error")
	}
}

func TestListPlansFilterAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"Cache layer", "Auth refresh", "Cache eviction"} {
		if _, err := store.CreatePlan(ctx, &types.Plan{Title: title}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.TransitionPlan(ctx, "PLAN-002", types.StatusPendingReview); err != nil {
		t.Fatal(err)
	}

	all, err := store.ListPlans(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].ID != "PLAN-001" || all[2].ID != "PLAN-003" {
		t.Errorf("ListPlans(nil) order = %v", planIDsOf(all))
	}

	draft := types.StatusDraft
	drafts, err := store.ListPlans(ctx, &types.PlanFilter{Status: &draft})
	if err != nil {
		t.Fatal(err)
	}
	if len(drafts) != 2 {
		t.Errorf("draft plans = %d, want 2", len(drafts))
	}

	caches, err := store.ListPlans(ctx, &types.PlanFilter{TitleSearch: "cache", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(caches) != 1 {
		t.Errorf("limited cache plans = %d, want 1", len(caches))
	}
}

func TestCreateDecisionAndCrossReferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	dec, err := store.CreateDecision(ctx, &types.Decision{
		Title:        "Use flat YAML state files",
		Rationale:    "Agent-readable without tooling",
		RelatedPlans: []string{"PLAN-001"},
	})
	if err != nil {
		t.Fatalf("CreateDecision() = %v", err)
	}
	if dec.ID != "DEC-001" {
		t.Errorf("ID = %s, want DEC-001", dec.ID)
	}
	if dec.Status != types.DecisionProposed {
		t.Errorf("Status = %s, want proposed", dec.Status)
	}

	doc, err := store.Load(KindDocs)
	if err != nil {
		t.Fatal(err)
	}
	idx := doc.(*DocsIndex)
	if refs := idx.CrossReferences["PLAN-001"]; len(refs) != 1 || refs[0] != "DEC-001" {
		t.Errorf("cross_references[PLAN-001] = %v, want [DEC-001]", refs)
	}

	decisions, err := store.ListDecisions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(decisions) != 1 {
		t.Errorf("decisions = %d, want 1", len(decisions))
	}
}

func TestCreateMemory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mem, err := store.CreateMemory(ctx, &types.Memory{Topic: "build", Content: "make test runs the full suite"})
	if err != nil {
		t.Fatalf("CreateMemory() = %v", err)
	}
	if mem.ID != "MEM-001" {
		t.Errorf("ID = %s, want MEM-001", mem.ID)
	}

	memories, err := store.ListMemories(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(memories) != 1 || memories[0].Topic != "build" {
		t.Errorf("memories = %+v", memories)
	}
}

func TestLoadRefusesUnknownSchemaVersion(t *testing.T) {
	store := newTestStore(t)

	path := store.DocumentPath(KindPlans)
	data := []byte("version: 2\nlast_updated: \"2025-06-01T10:00:00Z\"\nplans: {}\nsummary: {}\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(KindPlans); err == nil {
		t.Fatal("Load(version 2) = nil, want error")
	}
}

func TestLoadNormalizesNullMaps(t *testing.T) {
	store := newTestStore(t)

	// A hand-edited document may null out the plans mapping.
	path := store.DocumentPath(KindPlans)
	data := []byte("version: 1\nlast_updated: \"2025-06-01T10:00:00Z\"\nplans:\nsummary: {}\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.CreatePlan(context.Background(), &types.Plan{Title: "Survives null map"}); err != nil {
		t.Fatalf("CreatePlan() after null plans key = %v", err)
	}
}

func TestMutateLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.CreatePlan(context.Background(), &types.Plan{Title: "Tidy"}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Join(store.Root(), "plans"))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "state.yaml" {
			t.Errorf("unexpected file in plans/: %s", e.Name())
		}
	}
}

func TestCanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.CreatePlan(ctx, &types.Plan{Title: "Too late"}); !errors.Is(err, context.Canceled) {
		t.Errorf("CreatePlan(canceled ctx) = %v, want context.Canceled", err)
	}
	if _, err := store.ListPlans(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("ListPlans(canceled ctx) = %v, want context.Canceled", err)
	}
}

func planIDsOf(plans []*types.Plan) []string {
	ids := make([]string, len(plans))
	for i, p := range plans {
		ids[i] = p.ID
	}
	return ids
}
