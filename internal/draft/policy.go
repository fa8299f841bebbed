package draft

import (
	"fmt"
	"strings"
)

// Policy decides what turns a dirty draft into a commit.
type Policy int

const (
	// PolicyManual holds the draft until an explicit save or an
	// unsaved-changes resolution.
	PolicyManual Policy = iota
	// PolicyDebounced commits each field after a quiet period.
	PolicyDebounced
)

func (p Policy) String() string {
	if p == PolicyDebounced {
		return "debounced"
	}
	return "manual"
}

// ParsePolicy accepts "manual" or "debounced", case-insensitively. An empty
// value selects manual.
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "manual":
		return PolicyManual, nil
	case "debounced", "autosave":
		return PolicyDebounced, nil
	default:
		return PolicyManual, fmt.Errorf("unknown sync policy %q", raw)
	}
}
