package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/planfirst/planfirst/internal/lockfile"
	"github.com/planfirst/planfirst/internal/types"
)

// Store mutates the tracking documents under a .copilot directory.
// All writes go through the state lock and an atomic rename, so a
// reader (the agent, an editor, other tooling) never sees a torn
// document and concurrent pf invocations serialize instead of clobbering
// each other.
type Store struct {
	root        string // the .copilot directory
	lockTimeout time.Duration
	clock       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source. Tests use this for stable
// last_updated stamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLockTimeout bounds how long mutations wait for the state lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// Open returns a store over the .copilot directory at root. The
// directory must already exist (pf init creates it).
func Open(root string, opts ...Option) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("opening state root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("state root %s is not a directory", root)
	}
	s := &Store{
		root:        root,
		lockTimeout: lockfile.DefaultTimeout,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the .copilot directory this store operates on.
func (s *Store) Root() string {
	return s.root
}

// DocumentPath returns the absolute path of the given document kind.
func (s *Store) DocumentPath(kind Kind) string {
	return filepath.Join(s.root, kind.Path())
}

func (s *Store) lockPath() string {
	return filepath.Join(s.root, "tmp", "state.lock")
}

// Load reads and decodes the document of the given kind, refusing
// unknown schema versions.
func (s *Store) Load(kind Kind) (any, error) {
	path := s.DocumentPath(kind)
	data, err := os.ReadFile(path) // #nosec G304 - path derived from store root
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", kind, err)
	}

	doc, err := New(kind, s.clock())
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", kind, err)
	}
	if v := documentVersion(doc); v != SchemaVersion {
		return nil, fmt.Errorf("%s has unsupported schema version %d (want %d)", kind, v, SchemaVersion)
	}
	normalize(doc)
	return doc, nil
}

// normalize re-allocates maps a hand-edited document may have nulled
// out (e.g. a bare "plans:" key).
func normalize(doc any) {
	switch d := doc.(type) {
	case *PlansState:
		if d.Plans == nil {
			d.Plans = map[string]*types.Plan{}
		}
	case *DocsIndex:
		if d.Project == nil {
			d.Project = map[string]string{}
		}
		if d.Documents == nil {
			d.Documents = map[string]*DocumentRef{}
		}
		if d.Decisions == nil {
			d.Decisions = map[string]*types.Decision{}
		}
		if d.CrossReferences == nil {
			d.CrossReferences = map[string][]string{}
		}
	case *MemoryState:
		if d.Memories == nil {
			d.Memories = map[string]*types.Memory{}
		}
	case *TestingState:
		if d.Checks == nil {
			d.Checks = map[string]*CheckRecord{}
		}
	case *ContextState:
		if d.Entries == nil {
			d.Entries = map[string]string{}
		}
	}
}

func documentVersion(doc any) int {
	switch d := doc.(type) {
	case *PlansState:
		return d.Version
	case *DocsIndex:
		return d.Version
	case *MemoryState:
		return d.Version
	case *TestingState:
		return d.Version
	case *ContextState:
		return d.Version
	}
	return 0
}

// mutate loads the document, applies fn under the state lock, restamps
// last_updated and writes the result atomically.
func (s *Store) mutate(ctx context.Context, kind Kind, fn func(doc any) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock, err := lockfile.Acquire(s.lockPath(), s.lockTimeout)
	if err != nil {
		return fmt.Errorf("locking state: %w", err)
	}
	defer func() { _ = lock.Release() }()

	doc, err := s.Load(kind)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}

	ts := types.Timestamp(s.clock())
	switch d := doc.(type) {
	case *PlansState:
		d.LastUpdated = ts
		// Counters are derived state: always recomputed from the
		// mapping so they cannot drift.
		d.Summary = recount(d.Plans)
	case *DocsIndex:
		d.LastUpdated = ts
	case *MemoryState:
		d.LastUpdated = ts
	case *TestingState:
		d.LastUpdated = ts
	case *ContextState:
		d.LastUpdated = ts
	}

	return WriteDocument(s.DocumentPath(kind), doc)
}

func recount(plans map[string]*types.Plan) types.Summary {
	var sum types.Summary
	for _, p := range plans {
		sum.Add(p.Status, 1)
	}
	return sum
}

// CreatePlan appends a new draft plan with the next monotonic PLAN id.
func (s *Store) CreatePlan(ctx context.Context, plan *types.Plan) (*types.Plan, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is required")
	}
	created := *plan
	err := s.mutate(ctx, KindPlans, func(doc any) error {
		ps := doc.(*PlansState)
		created.ID = NextID(PlanIDPrefix, planIDs(ps.Plans))
		now := types.Timestamp(s.clock())
		created.Created = now
		created.Updated = now
		created.SetDefaults()
		if err := created.Validate(); err != nil {
			return fmt.Errorf("invalid plan: %w", err)
		}
		ps.Plans[created.ID] = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetPlan returns the plan with the given id, or nil if absent.
func (s *Store) GetPlan(ctx context.Context, id string) (*types.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.Load(KindPlans)
	if err != nil {
		return nil, err
	}
	return doc.(*PlansState).Plans[id], nil
}

// ListPlans returns plans matching the filter, ordered by id.
func (s *Store) ListPlans(ctx context.Context, filter *types.PlanFilter) ([]*types.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.Load(KindPlans)
	if err != nil {
		return nil, err
	}
	ps := doc.(*PlansState)

	plans := make([]*types.Plan, 0, len(ps.Plans))
	for _, p := range ps.Plans {
		if filter.Matches(p) {
			plans = append(plans, p)
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	if filter != nil && filter.Limit > 0 && len(plans) > filter.Limit {
		plans = plans[:filter.Limit]
	}
	return plans, nil
}

// Summary returns the current per-status counters.
func (s *Store) Summary(ctx context.Context) (types.Summary, error) {
	if err := ctx.Err(); err != nil {
		return types.Summary{}, err
	}
	doc, err := s.Load(KindPlans)
	if err != nil {
		return types.Summary{}, err
	}
	return doc.(*PlansState).Summary, nil
}

// TransitionPlan moves the plan along one lifecycle edge, validating
// the edge against the transition table and stamping updated.
func (s *Store) TransitionPlan(ctx context.Context, id string, target types.Status) (*types.Plan, error) {
	var result *types.Plan
	err := s.mutate(ctx, KindPlans, func(doc any) error {
		ps := doc.(*PlansState)
		plan, ok := ps.Plans[id]
		if !ok {
			return fmt.Errorf("plan %s not found", id)
		}
		if err := plan.Status.Transition(target); err != nil {
			return err
		}
		plan.Status = target
		plan.Updated = types.Timestamp(s.clock())
		result = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateDecision appends a new decision record to the docs index.
func (s *Store) CreateDecision(ctx context.Context, decision *types.Decision) (*types.Decision, error) {
	if decision == nil {
		return nil, fmt.Errorf("decision is required")
	}
	created := *decision
	err := s.mutate(ctx, KindDocs, func(doc any) error {
		idx := doc.(*DocsIndex)
		created.ID = NextID(DecisionIDPrefix, decisionIDs(idx.Decisions))
		now := types.Timestamp(s.clock())
		created.Created = now
		created.Updated = now
		if created.Status == "" {
			created.Status = types.DecisionProposed
		}
		if err := created.Validate(); err != nil {
			return fmt.Errorf("invalid decision: %w", err)
		}
		idx.Decisions[created.ID] = &created
		for _, planID := range created.RelatedPlans {
			idx.CrossReferences[planID] = append(idx.CrossReferences[planID], created.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListDecisions returns all decision records ordered by id.
func (s *Store) ListDecisions(ctx context.Context) ([]*types.Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.Load(KindDocs)
	if err != nil {
		return nil, err
	}
	idx := doc.(*DocsIndex)
	decisions := make([]*types.Decision, 0, len(idx.Decisions))
	for _, d := range idx.Decisions {
		decisions = append(decisions, d)
	}
	sort.Slice(decisions, func(i, j int) bool { return decisions[i].ID < decisions[j].ID })
	return decisions, nil
}

// CreateMemory appends a new memory record.
func (s *Store) CreateMemory(ctx context.Context, memory *types.Memory) (*types.Memory, error) {
	if memory == nil {
		return nil, fmt.Errorf("memory is required")
	}
	created := *memory
	err := s.mutate(ctx, KindMemory, func(doc any) error {
		ms := doc.(*MemoryState)
		created.ID = NextID(MemoryIDPrefix, memoryIDs(ms.Memories))
		now := types.Timestamp(s.clock())
		created.Created = now
		created.Updated = now
		if err := created.Validate(); err != nil {
			return fmt.Errorf("invalid memory: %w", err)
		}
		ms.Memories[created.ID] = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListMemories returns all memory records ordered by id.
func (s *Store) ListMemories(ctx context.Context) ([]*types.Memory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := s.Load(KindMemory)
	if err != nil {
		return nil, err
	}
	ms := doc.(*MemoryState)
	memories := make([]*types.Memory, 0, len(ms.Memories))
	for _, m := range ms.Memories {
		memories = append(memories, m)
	}
	sort.Slice(memories, func(i, j int) bool { return memories[i].ID < memories[j].ID })
	return memories, nil
}

func planIDs(m map[string]*types.Plan) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}

func decisionIDs(m map[string]*types.Decision) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}

func memoryIDs(m map[string]*types.Memory) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}
