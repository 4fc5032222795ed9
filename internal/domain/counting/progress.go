package counting

import "stocktake/internal/core/types"

// SessionProgress summarizes completion of one session over its eligible set.
type SessionProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Complete reports whether every eligible item has been counted.
// A session with zero eligible items is never complete, so an empty
// round cannot vacuously unlock the next one.
func (p SessionProgress) Complete() bool {
	return p.Total > 0 && p.Completed == p.Total
}

// Percentage returns completion as 0-100 for display, rounded to the
// nearest integer.
func (p SessionProgress) Percentage() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Completed*100 + p.Total/2) / p.Total
}

// Progress computes completion for a session. items must be the eligible
// set for that session (output of EligibleItems).
func Progress(items []*Item, session int) SessionProgress {
	p := SessionProgress{Total: len(items)}
	for _, item := range items {
		if item.Result(session).Counted() {
			p.Completed++
		}
	}
	return p
}

// ProgressFor computes completion for a session from the full collection,
// applying the eligibility filter first.
func ProgressFor(all []*Item, session int) SessionProgress {
	return Progress(EligibleItems(all, session), session)
}

// IsSessionComplete reports whether the session's eligible set is
// non-empty and fully counted.
func IsSessionComplete(all []*Item, session int) bool {
	return ProgressFor(all, session).Complete()
}

// CanStartSession reports whether a session may be entered. Sessions must
// be completed strictly in order: session 1 is always open, session N
// opens once session N-1 is complete.
func CanStartSession(all []*Item, session int) bool {
	if session == 1 {
		return true
	}
	if session < 1 || session > MaxSessions {
		return false
	}
	return IsSessionComplete(all, session-1)
}

// SessionStats aggregates the current session's variances for display.
type SessionStats struct {
	TotalVariance      types.Quantity `json:"totalVariance"`
	TotalValueVariance types.Money    `json:"totalValueVariance"`
	PositiveVariances  int            `json:"positiveVariances"`
	NegativeVariances  int            `json:"negativeVariances"`
}

// Stats sums variances over the eligible set of a session.
func Stats(items []*Item, session int) SessionStats {
	stats := SessionStats{TotalValueVariance: types.ZeroMoney()}
	for _, item := range items {
		r := item.Result(session)
		if r.Variance == nil {
			continue
		}
		stats.TotalVariance = stats.TotalVariance.Add(*r.Variance)
		if r.Variance.IsPositive() {
			stats.PositiveVariances++
		} else if r.Variance.IsNegative() {
			stats.NegativeVariances++
		}
		if r.ValueVariance != nil {
			stats.TotalValueVariance = stats.TotalValueVariance.Add(*r.ValueVariance)
		}
	}
	return stats
}
