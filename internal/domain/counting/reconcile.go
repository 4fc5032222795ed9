package counting

import (
	"time"

	"stocktake/internal/core/apperror"
	"stocktake/internal/core/types"
)

// QuantityRow is one externally sourced record for bulk reconciliation:
// an article key plus a quantity. Malformed or missing quantities are
// normalized to zero by the codec before reaching this package.
type QuantityRow struct {
	ArticleCode string
	Emplacement string
	Quantity    types.Quantity
}

// Key returns the lookup key matching Item.Key.
func (r QuantityRow) Key() string {
	return r.ArticleCode + "_" + r.Emplacement
}

// buildLookup indexes rows by key; the last row wins on duplicates.
func buildLookup(rows []QuantityRow) map[string]types.Quantity {
	m := make(map[string]types.Quantity, len(rows))
	for _, row := range rows {
		m[row.Key()] = row.Quantity
	}
	return m
}

// ReconcileCounts merges an externally supplied quantity table into the
// item set for a target session (1..3), applying the same baseline rule
// as a manual save for every matched item. Items without a matching row
// are returned unchanged (same pointer). Movements recorded this way are
// typed "external" to separate them from manual saves in the audit trail.
func ReconcileCounts(items []*Item, rows []QuantityRow, session int, now time.Time) ([]*Item, error) {
	if session < 1 || session > 3 {
		return nil, apperror.NewValidation("count reconciliation applies to sessions 1 to 3").
			WithDetail("session", session)
	}

	lookup := buildLookup(rows)
	out := make([]*Item, 0, len(items))
	for _, item := range items {
		qty, ok := lookup[item.Key()]
		if !ok {
			out = append(out, item)
			continue
		}
		updated, err := ApplyCount(item, session, qty, MovementExternal, now)
		if err != nil {
			return nil, err
		}
		out = append(out, updated)
	}
	return out, nil
}

// OverrideBaseline stores the supplied quantities as per-session expected
// stock overrides (sessions 2..4) instead of recording counts. This is the
// path for a fresh theoretical-stock extract arriving between sessions
// rather than a physical count. Counting and variance fields are not
// touched; items without a matching row pass through unchanged.
func OverrideBaseline(items []*Item, rows []QuantityRow, session int, now time.Time) ([]*Item, error) {
	if session < 2 || session > MaxSessions {
		return nil, apperror.NewValidation("baseline override applies to sessions 2 to 4").
			WithDetail("session", session)
	}

	lookup := buildLookup(rows)
	out := make([]*Item, 0, len(items))
	for _, item := range items {
		qty, ok := lookup[item.Key()]
		if !ok {
			out = append(out, item)
			continue
		}
		updated := item.Clone()
		qtyCopy := qty
		updated.BaselineOverrides[session-1] = &qtyCopy
		updated.LastUpdated = now
		out = append(out, updated)
	}
	return out, nil
}
