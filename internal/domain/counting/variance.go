package counting

import (
	"fmt"
	"time"

	"stocktake/internal/core/id"
	"stocktake/internal/core/types"
)

// Baseline returns the quantity a session's count is compared against.
//
// The canonical rule: the most recent recorded count of a prior session.
// With no prior count the imported expected-quantity override for the
// session applies, and failing that the initial stock. Variance therefore
// accumulates against the last known count rather than cumulatively from
// the original expected quantity.
func Baseline(item *Item, session int) types.Quantity {
	for s := session - 1; s >= 1; s-- {
		if c := item.Result(s).Counting; c != nil {
			return *c
		}
	}
	if ov := item.BaselineOverride(session); ov != nil {
		return *ov
	}
	return item.InitialStock
}

// ApplyCount records a counted quantity for an item in the given session
// and returns an updated copy; the input item is not mutated.
//
// variance = counted - baseline, exactly. valueVariance = variance * price
// when a non-zero price is known, else zero. One movement is appended per
// save: re-saving the same session overwrites the result fields but the
// movement log keeps every entry (append-only audit trail).
func ApplyCount(item *Item, session int, counted types.Quantity, movType MovementType, now time.Time) (*Item, error) {
	if err := CheckSession(session); err != nil {
		return nil, err
	}

	out := item.Clone()

	variance := counted.Sub(Baseline(item, session))
	valueVariance := types.ZeroMoney()
	if item.Price != nil && !item.Price.IsZero() {
		valueVariance = variance.Decimal().Mul(*item.Price)
	}

	countedCopy := counted
	varianceCopy := variance
	out.setResult(session, SessionResult{
		Counting:      &countedCopy,
		Variance:      &varianceCopy,
		ValueVariance: &valueVariance,
	})

	out.Movements = append(out.Movements, StockMovement{
		ID:        id.New(),
		Type:      movType,
		Quantity:  counted,
		Session:   session,
		Timestamp: now,
		Note:      fmt.Sprintf("session %d count", session),
	})
	out.LastUpdated = now
	out.CountingCompleted = true

	return out, nil
}
