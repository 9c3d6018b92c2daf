// Package types defines core data structures for the pf plan tracker.
package types

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Plan represents a proposed unit of work tracked through the
// plan -> approve -> implement lifecycle.
type Plan struct {
	// ===== Core Identification =====
	ID string `yaml:"id" json:"id"`

	// ===== Content =====
	Title   string `yaml:"title" json:"title"`
	Summary string `yaml:"summary,omitempty" json:"summary,omitempty"`
	Steps   string `yaml:"steps,omitempty" json:"steps,omitempty"`
	Notes   string `yaml:"notes,omitempty" json:"notes,omitempty"`

	// ===== Status & Workflow =====
	Status Status `yaml:"status" json:"status"`

	// ===== Timestamps =====
	Created string `yaml:"created" json:"created"`
	Updated string `yaml:"updated" json:"updated"`

	// ===== Attribution =====
	Author string `yaml:"author,omitempty" json:"author,omitempty"`

	// ===== Cross References (free text by convention, e.g. "DEC-003") =====
	RelatedDecisions []string `yaml:"related_decisions,omitempty" json:"related_decisions,omitempty"`
}

// Decision represents an accepted or superseded project decision.
// Decisions follow the same flat-mapping-with-status pattern as plans
// but have their own small status vocabulary.
type Decision struct {
	ID           string         `yaml:"id" json:"id"`
	Title        string         `yaml:"title" json:"title"`
	Status       DecisionStatus `yaml:"status" json:"status"`
	Rationale    string         `yaml:"rationale,omitempty" json:"rationale,omitempty"`
	Created      string         `yaml:"created" json:"created"`
	Updated      string         `yaml:"updated" json:"updated"`
	RelatedPlans []string       `yaml:"related_plans,omitempty" json:"related_plans,omitempty"`
}

// Memory represents a durable note the agent carries between sessions.
type Memory struct {
	ID           string   `yaml:"id" json:"id"`
	Topic        string   `yaml:"topic" json:"topic"`
	Content      string   `yaml:"content" json:"content"`
	Created      string   `yaml:"created" json:"created"`
	Updated      string   `yaml:"updated" json:"updated"`
	RelatedPlans []string `yaml:"related_plans,omitempty" json:"related_plans,omitempty"`
}

// TimestampLayout is the wire format for created/updated/last_updated
// fields: RFC 3339 in UTC at second precision (YYYY-MM-DDTHH:MM:SSZ).
const TimestampLayout = "2006-01-02T15:04:05Z"

// Timestamp formats t in the canonical wire format.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)

// IsTimestamp reports whether s matches the canonical wire format.
func IsTimestamp(s string) bool {
	return timestampRe.MatchString(s)
}

// Validate checks that the plan has valid field values.
func (p *Plan) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(p.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(p.Title))
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	if p.Created != "" && !IsTimestamp(p.Created) {
		return fmt.Errorf("created is not a valid timestamp: %s", p.Created)
	}
	if p.Updated != "" && !IsTimestamp(p.Updated) {
		return fmt.Errorf("updated is not a valid timestamp: %s", p.Updated)
	}
	return nil
}

// SetDefaults applies default values for fields omitted when a record
// was written by hand or by an agent. Status defaults to draft.
func (p *Plan) SetDefaults() {
	if p.Status == "" {
		p.Status = StatusDraft
	}
}

// Validate checks that the decision has valid field values.
func (d *Decision) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !d.Status.IsValid() {
		return fmt.Errorf("invalid decision status: %s", d.Status)
	}
	return nil
}

// Validate checks that the memory record has valid field values.
func (m *Memory) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(m.Topic) == "" {
		return fmt.Errorf("topic is required")
	}
	return nil
}

// DecisionStatus represents the state of a decision record.
type DecisionStatus string

// Decision status constants
const (
	DecisionProposed   DecisionStatus = "proposed"
	DecisionAccepted   DecisionStatus = "accepted"
	DecisionSuperseded DecisionStatus = "superseded"
)

// IsValid checks if the decision status value is valid.
func (s DecisionStatus) IsValid() bool {
	switch s {
	case DecisionProposed, DecisionAccepted, DecisionSuperseded:
		return true
	}
	return false
}

// PlanFilter is used to filter plan listings.
type PlanFilter struct {
	Status      *Status
	TitleSearch string
	Limit       int
}

// Matches reports whether the plan passes the filter.
func (f *PlanFilter) Matches(p *Plan) bool {
	if f == nil {
		return true
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.TitleSearch != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.TitleSearch)) {
		return false
	}
	return true
}

// Summary holds the per-status plan counters persisted in
// plans/state.yaml. All seven counters are always serialized, even at
// zero, so the file shape is stable for external readers.
type Summary struct {
	Draft         int `yaml:"draft" json:"draft"`
	PendingReview int `yaml:"pending_review" json:"pending_review"`
	Approved      int `yaml:"approved" json:"approved"`
	InProgress    int `yaml:"in_progress" json:"in_progress"`
	Completed     int `yaml:"completed" json:"completed"`
	Archived      int `yaml:"archived" json:"archived"`
	Rejected      int `yaml:"rejected" json:"rejected"`
}

// Count returns the counter value for the given status.
func (s *Summary) Count(status Status) int {
	switch status {
	case StatusDraft:
		return s.Draft
	case StatusPendingReview:
		return s.PendingReview
	case StatusApproved:
		return s.Approved
	case StatusInProgress:
		return s.InProgress
	case StatusCompleted:
		return s.Completed
	case StatusArchived:
		return s.Archived
	case StatusRejected:
		return s.Rejected
	}
	return 0
}

// Add bumps the counter for the given status by delta.
func (s *Summary) Add(status Status, delta int) {
	switch status {
	case StatusDraft:
		s.Draft += delta
	case StatusPendingReview:
		s.PendingReview += delta
	case StatusApproved:
		s.Approved += delta
	case StatusInProgress:
		s.InProgress += delta
	case StatusCompleted:
		s.Completed += delta
	case StatusArchived:
		s.Archived += delta
	case StatusRejected:
		s.Rejected += delta
	}
}

// Total returns the sum of all counters.
func (s *Summary) Total() int {
	return s.Draft + s.PendingReview + s.Approved + s.InProgress +
		s.Completed + s.Archived + s.Rejected
}
