// Package state implements the YAML tracking documents under .copilot/
// and the single-writer store that mutates them. The documents are the
// interface to the external agent: flat YAML, UTF-8, version 1, with a
// last_updated stamp in RFC 3339 UTC at second precision.
package state

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/planfirst/planfirst/internal/types"
)

// SchemaVersion is the only document version this build reads or writes.
// There is no migration machinery; unknown versions are refused.
const SchemaVersion = 1

// Kind selects one of the tracking documents.
type Kind string

// Document kinds
const (
	KindPlans   Kind = "plans"
	KindDocs    Kind = "docs"
	KindMemory  Kind = "memory"
	KindTesting Kind = "testing"
	KindContext Kind = "context"
)

// AllKinds lists every tracking document kind.
var AllKinds = []Kind{KindPlans, KindDocs, KindMemory, KindTesting, KindContext}

// IsValid checks if the kind value is valid.
func (k Kind) IsValid() bool {
	switch k {
	case KindPlans, KindDocs, KindMemory, KindTesting, KindContext:
		return true
	}
	return false
}

// Path returns the document's location relative to the .copilot root.
func (k Kind) Path() string {
	switch k {
	case KindPlans:
		return filepath.Join("plans", "state.yaml")
	case KindDocs:
		return filepath.Join("docs", "index.yaml")
	case KindMemory:
		return filepath.Join("memory", "memory.yaml")
	case KindTesting:
		return filepath.Join("testing", "state.yaml")
	case KindContext:
		return filepath.Join("context", "state.yaml")
	}
	return ""
}

// PlansState is the schema of plans/state.yaml. Key order and presence
// are part of the external contract: version, last_updated, plans and
// summary, nothing else.
type PlansState struct {
	Version     int                    `yaml:"version" json:"version"`
	LastUpdated string                 `yaml:"last_updated" json:"last_updated"`
	Plans       map[string]*types.Plan `yaml:"plans" json:"plans"`
	Summary     types.Summary          `yaml:"summary" json:"summary"`
}

// DocsIndex is the schema of docs/index.yaml.
type DocsIndex struct {
	Version         int                        `yaml:"version" json:"version"`
	LastUpdated     string                     `yaml:"last_updated" json:"last_updated"`
	Project         map[string]string          `yaml:"project" json:"project"`
	Documents       map[string]*DocumentRef    `yaml:"documents" json:"documents"`
	Decisions       map[string]*types.Decision `yaml:"decisions" json:"decisions"`
	CrossReferences map[string][]string        `yaml:"cross_references" json:"cross_references"`
}

// DocumentRef points at a prose document tracked in the docs index.
type DocumentRef struct {
	Title   string `yaml:"title" json:"title"`
	Path    string `yaml:"path" json:"path"`
	Updated string `yaml:"updated,omitempty" json:"updated,omitempty"`
}

// MemoryState is the schema of memory/memory.yaml.
type MemoryState struct {
	Version     int                      `yaml:"version" json:"version"`
	LastUpdated string                   `yaml:"last_updated" json:"last_updated"`
	Memories    map[string]*types.Memory `yaml:"memories" json:"memories"`
}

// TestingState is the schema of testing/state.yaml.
type TestingState struct {
	Version     int                     `yaml:"version" json:"version"`
	LastUpdated string                  `yaml:"last_updated" json:"last_updated"`
	Checks      map[string]*CheckRecord `yaml:"checks" json:"checks"`
}

// CheckRecord tracks one verification item (test suite, lint gate, manual
// check) the agent is asked to keep green while implementing a plan.
type CheckRecord struct {
	Title       string `yaml:"title" json:"title"`
	Status      string `yaml:"status" json:"status"` // pending | passing | failing
	RelatedPlan string `yaml:"related_plan,omitempty" json:"related_plan,omitempty"`
	Updated     string `yaml:"updated,omitempty" json:"updated,omitempty"`
}

// ContextState is the schema of context/state.yaml.
type ContextState struct {
	Version     int               `yaml:"version" json:"version"`
	LastUpdated string            `yaml:"last_updated" json:"last_updated"`
	Focus       string            `yaml:"focus" json:"focus"`
	Entries     map[string]string `yaml:"entries" json:"entries"`
}

// New returns a well-formed empty document of the given kind: version 1,
// last_updated set to now, all maps allocated (so they serialize as {}
// rather than null) and all counters zero.
func New(kind Kind, now time.Time) (any, error) {
	ts := types.Timestamp(now)
	switch kind {
	case KindPlans:
		return &PlansState{
			Version:     SchemaVersion,
			LastUpdated: ts,
			Plans:       map[string]*types.Plan{},
		}, nil
	case KindDocs:
		return &DocsIndex{
			Version:         SchemaVersion,
			LastUpdated:     ts,
			Project:         map[string]string{},
			Documents:       map[string]*DocumentRef{},
			Decisions:       map[string]*types.Decision{},
			CrossReferences: map[string][]string{},
		}, nil
	case KindMemory:
		return &MemoryState{
			Version:     SchemaVersion,
			LastUpdated: ts,
			Memories:    map[string]*types.Memory{},
		}, nil
	case KindTesting:
		return &TestingState{
			Version:     SchemaVersion,
			LastUpdated: ts,
			Checks:      map[string]*CheckRecord{},
		}, nil
	case KindContext:
		return &ContextState{
			Version:     SchemaVersion,
			LastUpdated: ts,
			Entries:     map[string]string{},
		}, nil
	}
	return nil, fmt.Errorf("unknown document kind: %s", kind)
}
