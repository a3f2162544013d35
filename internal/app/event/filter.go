package event

import (
	"slices"
	"sort"
)

// AllTypes is the filter sentinel selecting every event.
const AllTypes = "all"

// Filter returns the events whose EventType equals selected exactly.
// AllTypes returns every event. Matching is case-sensitive and never goes
// through the fuzzy resolver, so "Hiking" and "hiking" are different filters.
func Filter(events []Event, selected string) []Event {
	return FilterBy(events, selected, func(e Event) string { return e.EventType })
}

// FilterBy applies the Filter rule to any item carrying an event type.
func FilterBy[T any](items []T, selected string, typeOf func(T) string) []T {
	if selected == AllTypes {
		return slices.Clone(items)
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		if typeOf(it) == selected {
			out = append(out, it)
		}
	}
	return out
}

// AvailableTypes returns the sorted distinct event types present in events.
func AvailableTypes(events []Event) []string {
	seen := make(map[string]struct{}, len(events))
	types := make([]string, 0)
	for _, e := range events {
		if _, ok := seen[e.EventType]; ok {
			continue
		}
		seen[e.EventType] = struct{}{}
		types = append(types, e.EventType)
	}
	sort.Strings(types)
	return types
}

// CountByType returns the total under AllTypes plus an exact-match count per present type.
func CountByType(events []Event) map[string]int {
	counts := map[string]int{AllTypes: len(events)}
	for _, e := range events {
		counts[e.EventType]++
	}
	return counts
}

// Count returns the number of events selected would show.
func Count(events []Event, selected string) int {
	if selected == AllTypes {
		return len(events)
	}

	n := 0
	for _, e := range events {
		if e.EventType == selected {
			n++
		}
	}
	return n
}
