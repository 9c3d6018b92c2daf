package types

import (
	"strings"
	"testing"
	"time"
)

func TestPlanValidation(t *testing.T) {
	tests := []struct {
		name    string
		plan    Plan
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid plan",
			plan: Plan{
				ID:      "PLAN-001",
				Title:   "Add request caching",
				Status:  StatusDraft,
				Created: "2025-06-01T10:00:00Z",
				Updated: "2025-06-01T10:00:00Z",
			},
			wantErr: false,
		},
		{
			name: "missing id",
			plan: Plan{
				Title:  "Add request caching",
				Status: StatusDraft,
			},
			wantErr: true,
			errMsg:  "id is required",
		},
		{
			name: "missing title",
			plan: Plan{
				ID:     "PLAN-001",
				Status: StatusDraft,
			},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name: "title too long",
			plan: Plan{
				ID:     "PLAN-001",
				Title:  strings.Repeat("x", 501),
				Status: StatusDraft,
			},
			wantErr: true,
			errMsg:  "title must be 500 characters or less",
		},
		{
			name: "invalid status",
			plan: Plan{
				ID:     "PLAN-001",
				Title:  "Test",
				Status: Status("sideways"),
			},
			wantErr: true,
			errMsg:  "invalid status",
		},
		{
			name: "malformed created timestamp",
			plan: Plan{
				ID:      "PLAN-001",
				Title:   "Test",
				Status:  StatusDraft,
				Created: "2025-06-01 10:00:00",
			},
			wantErr: true,
			errMsg:  "created is not a valid timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() = nil, want error containing %q", tt.errMsg)
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() = %q, want containing %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestPlanSetDefaults(t *testing.T) {
	p := Plan{ID: "PLAN-001", Title: "Test"}
	p.SetDefaults()
	if p.Status != StatusDraft {
		t.Errorf("SetDefaults() status = %s, want %s", p.Status, StatusDraft)
	}

	p = Plan{ID: "PLAN-002", Title: "Test", Status: StatusApproved}
	p.SetDefaults()
	if p.Status != StatusApproved {
		t.Errorf("SetDefaults() overwrote explicit status, got %s", p.Status)
	}
}

func TestTimestampFormat(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	ts := Timestamp(time.Date(2025, 6, 1, 12, 30, 45, 999, loc))
	if ts != "2025-06-01T10:30:45Z" {
		t.Errorf("Timestamp() = %s, want 2025-06-01T10:30:45Z", ts)
	}
	if !IsTimestamp(ts) {
		t.Errorf("IsTimestamp(%s) = false, want true", ts)
	}

	for _, bad := range []string{
		"2025-06-01T10:30:45+02:00",
		"2025-06-01 10:30:45Z",
		"2025-06-01",
		"",
	} {
		if IsTimestamp(bad) {
			t.Errorf("IsTimestamp(%q) = true, want false", bad)
		}
	}
}

func TestSummaryCounters(t *testing.T) {
	var s Summary
	s.Add(StatusDraft, 1)
	s.Add(StatusDraft, 1)
	s.Add(StatusCompleted, 1)
	s.Add(StatusDraft, -1)

	if s.Count(StatusDraft) != 1 {
		t.Errorf("Count(draft) = %d, want 1", s.Count(StatusDraft))
	}
	if s.Count(StatusCompleted) != 1 {
		t.Errorf("Count(completed) = %d, want 1", s.Count(StatusCompleted))
	}
	if s.Total() != 2 {
		t.Errorf("Total() = %d, want 2", s.Total())
	}
}

func TestPlanFilterMatches(t *testing.T) {
	approved := StatusApproved
	plan := &Plan{ID: "PLAN-001", Title: "Refactor config loading", Status: StatusApproved}

	tests := []struct {
		name   string
		filter *PlanFilter
		want   bool
	}{
		{"nil filter matches", nil, true},
		{"empty filter matches", &PlanFilter{}, true},
		{"status match", &PlanFilter{Status: &approved}, true},
		{"title search case-insensitive", &PlanFilter{TitleSearch: "CONFIG"}, true},
		{"title search miss", &PlanFilter{TitleSearch: "websocket"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(plan); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
