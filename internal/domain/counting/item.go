// Package counting implements the multi-session inventory counting engine:
// the item record model, session eligibility filter, variance calculator,
// session progress tracker and bulk reconciliation importer.
//
// All computations in this package are pure: they take a snapshot of the
// item collection and return updated copies, never mutating their inputs.
// Persistence and transport live in infrastructure packages.
package counting

import (
	"context"
	"fmt"
	"time"

	"stocktake/internal/core/apperror"
	"stocktake/internal/core/id"
	"stocktake/internal/core/types"
)

// MaxSessions is the number of successive counting rounds supported.
const MaxSessions = 4

// MovementType distinguishes how a stock movement was recorded.
type MovementType string

const (
	// MovementCounting is a single-item manual counting save.
	MovementCounting MovementType = "counting"
	// MovementExternal is a quantity merged in by bulk reconciliation.
	MovementExternal MovementType = "external"
)

// StockMovement is an immutable, append-only log entry owned by its item.
// Movements are created only by a successful counting save and are never
// mutated, deleted or reordered.
type StockMovement struct {
	ID        id.ID          `json:"id"`
	Type      MovementType   `json:"type"`
	Quantity  types.Quantity `json:"quantity"`
	Session   int            `json:"session,omitempty"` // 0 when not session-bound
	Timestamp time.Time      `json:"timestamp"`
	Note      string         `json:"note,omitempty"`
}

// SessionResult holds the outcome of one counting round for one item.
// All three fields are set together by the variance calculator: Variance
// is never defined without Counting.
type SessionResult struct {
	Counting      *types.Quantity `json:"counting,omitempty"`
	Variance      *types.Quantity `json:"variance,omitempty"`
	ValueVariance *types.Money    `json:"valueVariance,omitempty"`
}

// Counted reports whether this session round has a recorded count.
func (r SessionResult) Counted() bool { return r.Counting != nil }

// Item is one stocked article/location pair.
//
// The pair (ArticleCode, Emplacement) is the natural key used for
// cross-session reconciliation lookups. Per-session results are held in a
// session-indexed array instead of parallel named fields, so every
// component can parameterize over the session number 1..MaxSessions.
type Item struct {
	ID          id.ID  `json:"id"`
	ArticleCode string `json:"articleCode"`
	Emplacement string `json:"emplacement,omitempty"`
	Description string `json:"description"`
	Reference   string `json:"reference,omitempty"`
	Unit        string `json:"unit,omitempty"`

	// Price is the unit price; absent price means value variance is zero.
	Price *types.Money `json:"price,omitempty"`

	// InitialStock is the expected quantity at the start of the whole count.
	InitialStock types.Quantity `json:"initialStock"`
	// CurrentStock is the live reference quantity, initialized to InitialStock.
	CurrentStock types.Quantity `json:"currentStock"`

	// Sessions holds per-round results; index s-1 for session s.
	Sessions [MaxSessions]SessionResult `json:"sessions"`

	// BaselineOverrides holds optional per-session expected-quantity
	// overrides written by the baseline-override bulk import (sessions 2-4).
	// Index s-1 for session s; index 0 is never set.
	BaselineOverrides [MaxSessions]*types.Quantity `json:"baselineOverrides"`

	LastUpdated       time.Time       `json:"lastUpdated"`
	Movements         []StockMovement `json:"movements"`
	CountingCompleted bool            `json:"isCountingCompleted"`
}

// NewItem creates an item as produced by the import codec: current stock
// equal to initial stock, empty movement log, fresh id.
func NewItem(articleCode, emplacement, description string, initialStock types.Quantity, now time.Time) *Item {
	return &Item{
		ID:           id.New(),
		ArticleCode:  articleCode,
		Emplacement:  emplacement,
		Description:  description,
		InitialStock: initialStock,
		CurrentStock: initialStock,
		LastUpdated:  now,
		Movements:    []StockMovement{},
	}
}

// Key returns the reconciliation lookup key. Last writer wins on collision.
func (i *Item) Key() string {
	return i.ArticleCode + "_" + i.Emplacement
}

// Result returns the session result slot for session s (1..MaxSessions).
// Panics on an out-of-range session; callers validate via CheckSession.
func (i *Item) Result(s int) SessionResult {
	return i.Sessions[s-1]
}

// setResult stores a complete session result. Internal: only the variance
// calculator writes results, keeping the Counting/Variance invariant.
func (i *Item) setResult(s int, r SessionResult) {
	i.Sessions[s-1] = r
}

// BaselineOverride returns the imported expected-quantity override for
// session s, or nil if none was imported.
func (i *Item) BaselineOverride(s int) *types.Quantity {
	return i.BaselineOverrides[s-1]
}

// Clone returns a deep copy of the item. The variance calculator and the
// reconciliation importer operate on clones so callers keep crash-only
// consistency: either the whole updated item is adopted or nothing changed.
func (i *Item) Clone() *Item {
	out := *i
	out.Movements = make([]StockMovement, len(i.Movements))
	copy(out.Movements, i.Movements)
	for s := 0; s < MaxSessions; s++ {
		out.Sessions[s] = cloneResult(i.Sessions[s])
		if v := i.BaselineOverrides[s]; v != nil {
			c := *v
			out.BaselineOverrides[s] = &c
		}
	}
	if i.Price != nil {
		p := *i.Price
		out.Price = &p
	}
	return &out
}

func cloneResult(r SessionResult) SessionResult {
	var out SessionResult
	if r.Counting != nil {
		c := *r.Counting
		out.Counting = &c
	}
	if r.Variance != nil {
		v := *r.Variance
		out.Variance = &v
	}
	if r.ValueVariance != nil {
		vv := *r.ValueVariance
		out.ValueVariance = &vv
	}
	return out
}

// Validate implements basic invariant checks on the record.
func (i *Item) Validate(ctx context.Context) error {
	if i.ArticleCode == "" {
		return apperror.NewValidation("article code is required").
			WithDetail("field", "articleCode")
	}
	for s := 1; s <= MaxSessions; s++ {
		r := i.Result(s)
		if r.Counting == nil && (r.Variance != nil || r.ValueVariance != nil) {
			return apperror.NewValidation("variance defined without a recorded count").
				WithDetail("session", s)
		}
	}
	return nil
}

// CheckSession validates a session number against the supported range.
func CheckSession(s int) error {
	if s < 1 || s > MaxSessions {
		return apperror.NewValidation(fmt.Sprintf("session number must be between 1 and %d", MaxSessions)).
			WithDetail("session", s)
	}
	return nil
}
