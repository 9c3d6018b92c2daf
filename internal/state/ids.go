package state

import (
	"fmt"
	"strconv"
	"strings"
)

// ID prefixes for the tracked record kinds. IDs look like PLAN-001 and
// are assigned monotonically: the next id is one past the highest
// existing number, so deleting a record never causes id reuse of a
// lower number than the high-water mark.
const (
	PlanIDPrefix     = "PLAN"
	DecisionIDPrefix = "DEC"
	MemoryIDPrefix   = "MEM"
)

// NextID returns the next monotonic id for the given prefix, formatted
// with three digits (PLAN-001) until the counter outgrows them.
func NextID(prefix string, existing []string) string {
	high := 0
	for _, id := range existing {
		if n, ok := ParseID(prefix, id); ok && n > high {
			high = n
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, high+1)
}

// ParseID extracts the numeric part of an id with the given prefix.
// Returns false for ids with a different prefix or a non-numeric tail.
func ParseID(prefix, id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, prefix+"-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
