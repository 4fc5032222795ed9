package counting

import "stocktake/internal/core/id"

// Session is the process-level counting session state. It is replaced
// wholesale whenever the user switches session; authority on completion
// is always derived from item fields, CompletedItems is advisory only.
type Session struct {
	SessionNumber  int     `json:"sessionNumber"`
	IsActive       bool    `json:"isActive"`
	CompletedItems []id.ID `json:"completedItems"`
}

// NewSession creates an active session for the given round.
func NewSession(number int) *Session {
	return &Session{
		SessionNumber:  number,
		IsActive:       true,
		CompletedItems: []id.ID{},
	}
}
