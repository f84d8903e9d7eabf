// Package search implements the in-memory name filter shared by every list
// endpoint.
package search

import "strings"

// BlankQueryNotice is reported when a filter is requested with an empty query.
const BlankQueryNotice = "Please enter a search term."

type Result[T any] struct {
	Items  []T
	Notice string
}

// Filter keeps items where any key contains query, case-insensitively.
// A blank query returns items unchanged together with BlankQueryNotice.
func Filter[T any](items []T, query string, keys func(T) []string) Result[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Result[T]{Items: items, Notice: BlankQueryNotice}
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, k := range keys(item) {
			if strings.Contains(strings.ToLower(k), q) {
				out = append(out, item)
				break
			}
		}
	}
	return Result[T]{Items: out}
}
