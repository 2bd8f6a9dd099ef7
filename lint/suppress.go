// Copyright © 2024 The BPLint authors

package lint

import "github.com/luthersystems/bplint/directive"

// FilterSuppressed removes the findings disabled by directives in effect at
// their location.
//
// For each finding the directives recorded in the snapshot at the finding's
// location are replayed in encounter order, outermost scope first. A
// bplint-disable naming the rule, or naming no rule at all, disables it; a
// bplint-enable naming the rule enables it again. A bplint-enable with no
// arguments has no effect. The finding is dropped when its rule is disabled
// after the replay. Other directives are ignored.
//
// The input slice is not modified. Filtering an already filtered list
// against the same stack returns it unchanged.
func FilterSuppressed(findings []Finding, stack *directive.Stack) []Finding {
	filtered := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if !suppressed(f, stack) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

func suppressed(f Finding, stack *directive.Stack) bool {
	snap, ok := stack.SnapshotAt(f.Location)
	if !ok {
		return false
	}
	disabled := false
	for _, d := range snap.Directives(directive.Disable, directive.Enable) {
		switch d.Name {
		case directive.Disable:
			if len(d.Args) == 0 || d.Names(f.Rule) {
				disabled = true
			}
		case directive.Enable:
			if d.Names(f.Rule) {
				disabled = false
			}
		}
	}
	return disabled
}
