package utils

import (
	"fmt"
	"strings"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeStops is the single ingestion point for stop lists. It accepts a
// list (of strings or other scalars) or a comma-separated string, trims each
// entry and drops empties. Returns nil when nothing is left or the input has
// any other shape.
func NormalizeStops(input any) []string {
	var parts []string
	switch v := input.(type) {
	case nil:
		return nil
	case string:
		parts = strings.Split(v, ",")
	case []string:
		parts = v
	case []any:
		parts = make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			parts = append(parts, fmt.Sprint(item))
		}
	default:
		return nil
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// AnchorStops makes a non-empty stop list start at origin and end at
// destination, adding either end when it is missing. Matching is
// case-insensitive and keeps the list's own spelling.
func AnchorStops(stops []string, origin, destination string) []string {
	if len(stops) == 0 {
		return stops
	}
	out := make([]string, 0, len(stops)+2)
	if origin != "" && !strings.EqualFold(stops[0], origin) {
		out = append(out, origin)
	}
	out = append(out, stops...)
	if destination != "" && !strings.EqualFold(out[len(out)-1], destination) {
		out = append(out, destination)
	}
	return out
}
