package dto

import (
	"time"

	"stocktake/internal/core/types"
	"stocktake/internal/domain/counting"
)

// --- Request DTOs ---

// RecordCountRequest for POST /items/:id/count. The quantity arrives as
// a string so fractional values survive JSON number quirks from the
// scanning terminals.
type RecordCountRequest struct {
	Session  int    `json:"session" binding:"required,min=1,max=4"`
	Quantity string `json:"quantity" binding:"required"`
}

// ListItemsQuery for GET /items.
type ListItemsQuery struct {
	Session int    `form:"session" binding:"omitempty,min=1,max=4"`
	Search  string `form:"search"`
}

// ReconcileQuery for POST /items/reconcile.
type ReconcileQuery struct {
	Session int    `form:"session" binding:"required,min=1,max=4"`
	Mode    string `form:"mode"`
}

// --- Response DTOs ---

// SessionResultResponse is one counting round of an item.
type SessionResultResponse struct {
	Counting      *string `json:"counting,omitempty"`
	Variance      *string `json:"variance,omitempty"`
	ValueVariance *string `json:"valueVariance,omitempty"`
}

// MovementResponse is one movement log entry.
type MovementResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Quantity  string    `json:"quantity"`
	Session   int       `json:"session,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// ItemResponse is the full item state.
type ItemResponse struct {
	ID                string                  `json:"id"`
	ArticleCode       string                  `json:"articleCode"`
	Emplacement       string                  `json:"emplacement,omitempty"`
	Description       string                  `json:"description"`
	Reference         string                  `json:"reference,omitempty"`
	Unit              string                  `json:"unit,omitempty"`
	Price             *string                 `json:"price,omitempty"`
	InitialStock      string                  `json:"initialStock"`
	CurrentStock      string                  `json:"currentStock"`
	Sessions          []SessionResultResponse `json:"sessions"`
	LastUpdated       time.Time               `json:"lastUpdated"`
	Movements         []MovementResponse      `json:"movements"`
	CountingCompleted bool                    `json:"isCountingCompleted"`
}

func qtyString(q *types.Quantity) *string {
	if q == nil {
		return nil
	}
	s := q.Compact()
	return &s
}

func moneyString(m *types.Money) *string {
	if m == nil {
		return nil
	}
	s := m.String()
	return &s
}

// FromItem converts a domain item.
func FromItem(item *counting.Item) ItemResponse {
	resp := ItemResponse{
		ID:                item.ID.String(),
		ArticleCode:       item.ArticleCode,
		Emplacement:       item.Emplacement,
		Description:       item.Description,
		Reference:         item.Reference,
		Unit:              item.Unit,
		Price:             moneyString(item.Price),
		InitialStock:      item.InitialStock.Compact(),
		CurrentStock:      item.CurrentStock.Compact(),
		LastUpdated:       item.LastUpdated,
		CountingCompleted: item.CountingCompleted,
		Sessions:          make([]SessionResultResponse, 0, counting.MaxSessions),
		Movements:         make([]MovementResponse, 0, len(item.Movements)),
	}

	for s := 1; s <= counting.MaxSessions; s++ {
		r := item.Result(s)
		resp.Sessions = append(resp.Sessions, SessionResultResponse{
			Counting:      qtyString(r.Counting),
			Variance:      qtyString(r.Variance),
			ValueVariance: moneyString(r.ValueVariance),
		})
	}

	for _, m := range item.Movements {
		resp.Movements = append(resp.Movements, MovementResponse{
			ID:        m.ID.String(),
			Type:      string(m.Type),
			Quantity:  m.Quantity.Compact(),
			Session:   m.Session,
			Timestamp: m.Timestamp,
			Note:      m.Note,
		})
	}
	return resp
}

// FromItems converts a list of items.
func FromItems(items []*counting.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// ItemListResponse wraps a list of items.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
}

// ImportResponse for POST /items/import.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ReconcileResponse for POST /items/reconcile.
type ReconcileResponse struct {
	Matched int    `json:"matched"`
	Mode    string `json:"mode"`
	Session int    `json:"session"`
}
