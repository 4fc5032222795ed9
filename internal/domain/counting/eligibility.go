package counting

import "strings"

// EligibleItems returns the subset of items that must still be counted in
// the given session, preserving the relative order of the input.
//
// An item is excluded from session N only if it has a recorded count with
// exactly zero variance in every prior session 1..N-1. Any prior session
// left uncounted keeps the item eligible, so items skipped in round one
// still surface in later rounds. The filter narrows monotonically: the
// eligible set for session N is a subset of the set for session N-1.
func EligibleItems(items []*Item, session int) []*Item {
	if session <= 1 {
		out := make([]*Item, len(items))
		copy(out, items)
		return out
	}

	out := make([]*Item, 0, len(items))
	for _, item := range items {
		if Eligible(item, session) {
			out = append(out, item)
		}
	}
	return out
}

// Eligible reports whether a single item must be counted in the session.
func Eligible(item *Item, session int) bool {
	if session <= 1 {
		return true
	}
	for s := 1; s < session; s++ {
		r := item.Result(s)
		matchedExactly := r.Counting != nil && r.Variance != nil && r.Variance.IsZero()
		if !matchedExactly {
			return true
		}
	}
	return false
}

// SearchItems narrows an item list to those matching the query against
// article code, description, emplacement or reference. An empty query
// returns the input unchanged. Case-insensitive substring match.
func SearchItems(items []*Item, query string) []*Item {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return items
	}
	out := make([]*Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.ArticleCode), query) ||
			strings.Contains(strings.ToLower(item.Description), query) ||
			strings.Contains(strings.ToLower(item.Emplacement), query) ||
			strings.Contains(strings.ToLower(item.Reference), query) {
			out = append(out, item)
		}
	}
	return out
}
