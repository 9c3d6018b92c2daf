package types

import "fmt"

// Status represents the lifecycle state of a plan.
type Status string

// Plan status constants
const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusInProgress    Status = "in_progress"
	StatusCompleted     Status = "completed"
	StatusArchived      Status = "archived"
	StatusRejected      Status = "rejected"
)

// AllStatuses lists every valid status in lifecycle order.
var AllStatuses = []Status{
	StatusDraft,
	StatusPendingReview,
	StatusApproved,
	StatusInProgress,
	StatusCompleted,
	StatusArchived,
	StatusRejected,
}

// IsValid checks if the status value is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusApproved, StatusInProgress,
		StatusCompleted, StatusArchived, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == StatusArchived || s == StatusRejected
}

// transitions is the closed transition table. A status maps to the set
// of statuses it may move to. pending_review -> draft (revise) is the
// only backward edge.
var transitions = map[Status][]Status{
	StatusDraft:         {StatusPendingReview},
	StatusPendingReview: {StatusApproved, StatusRejected, StatusDraft},
	StatusApproved:      {StatusInProgress},
	StatusInProgress:    {StatusCompleted},
	StatusCompleted:     {StatusArchived},
	StatusArchived:      {},
	StatusRejected:      {},
}

// CanTransition reports whether moving from s to target is a legal edge.
func (s Status) CanTransition(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step.
func (s Status) NextStatuses() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Transition validates the edge from s to target, returning a
// *TransitionError for illegal moves and an error for unknown statuses.
func (s Status) Transition(target Status) error {
	if !s.IsValid() {
		return fmt.Errorf("invalid status: %s", s)
	}
	if !target.IsValid() {
		return fmt.Errorf("invalid status: %s", target)
	}
	if !s.CanTransition(target) {
		return &TransitionError{From: s, To: target}
	}
	return nil
}

// TransitionError reports an attempted move along an edge the lifecycle
// does not allow (e.g. completed -> draft).
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("illegal transition %s -> %s: %s is terminal", e.From, e.To, e.From)
	}
	return fmt.Sprintf("illegal transition %s -> %s (allowed from %s: %v)", e.From, e.To, e.From, transitions[e.From])
}
