// Package command turns raw device readings into canonical commands.
// file: command/mapping.go
package command

import (
	"fmt"
	"sort"

	"gamepad-websocket/models"
)

// ValidateMappings checks that the targets of all entries exactly cover
// [0, N) with no duplicate owner, and that every entry names a known source.
// It returns N.
func ValidateMappings(kind string, sources []Source, mappings []models.Mapping) (int, error) {
	known := make(map[string]bool, len(sources))
	for _, s := range sources {
		known[s.Name] = true
	}

	owner := make(map[int]string)
	total := 0
	for i, m := range mappings {
		if !known[m.Source] {
			return 0, fmt.Errorf("%w: %s map entry %d references unknown source %q",
				models.ErrConfiguration, kind, i, m.Source)
		}
		if m.Index < 0 {
			return 0, fmt.Errorf("%w: %s map entry %d has negative index %d",
				models.ErrConfiguration, kind, i, m.Index)
		}
		if len(m.MappedTo) == 0 {
			return 0, fmt.Errorf("%w: %s map entry %d has no target index",
				models.ErrConfiguration, kind, i)
		}
		for _, target := range m.MappedTo {
			if prev, dup := owner[target]; dup {
				return 0, fmt.Errorf("%w: %s target %d is owned by both %s and %s[%d]",
					models.ErrConfiguration, kind, target, prev, m.Source, m.Index)
			}
			owner[target] = fmt.Sprintf("%s[%d]", m.Source, m.Index)
			total++
		}
	}

	for target := range owner {
		if target < 0 || target >= total {
			return 0, fmt.Errorf("%w: %s targets must cover [0, %d) without gaps, got %v",
				models.ErrConfiguration, kind, total, sortedTargets(owner))
		}
	}
	return total, nil
}

func sortedTargets(owner map[int]string) []int {
	out := make([]int, 0, len(owner))
	for t := range owner {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}
