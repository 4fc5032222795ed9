package dto

import (
	"stocktake/internal/domain/counting"
)

// SwitchSessionRequest for PUT /sessions/current.
type SwitchSessionRequest struct {
	Session int `json:"session" binding:"required,min=1,max=4"`
}

// SessionResponse is the active session state.
type SessionResponse struct {
	SessionNumber int  `json:"sessionNumber"`
	IsActive      bool `json:"isActive"`
}

// FromSession converts the domain session.
func FromSession(s *counting.Session) SessionResponse {
	return SessionResponse{
		SessionNumber: s.SessionNumber,
		IsActive:      s.IsActive,
	}
}

// SessionOverviewResponse is one round in the dashboard payload.
type SessionOverviewResponse struct {
	SessionNumber int    `json:"sessionNumber"`
	Completed     int    `json:"completed"`
	Total         int    `json:"total"`
	Percentage    int    `json:"percentage"`
	Complete      bool   `json:"complete"`
	CanStart      bool   `json:"canStart"`
	Active        bool   `json:"active"`
}

// StatsResponse aggregates the active session's variances.
type StatsResponse struct {
	TotalVariance      string `json:"totalVariance"`
	TotalValueVariance string `json:"totalValueVariance"`
	PositiveVariances  int    `json:"positiveVariances"`
	NegativeVariances  int    `json:"negativeVariances"`
}

// OverviewResponse for GET /sessions.
type OverviewResponse struct {
	Sessions      []SessionOverviewResponse `json:"sessions"`
	ActiveSession int                       `json:"activeSession"`
	TotalItems    int                       `json:"totalItems"`
	EligibleItems int                       `json:"eligibleItems"`
	Stats         StatsResponse             `json:"stats"`
}

// FromOverview converts the domain overview.
func FromOverview(o *counting.Overview) OverviewResponse {
	resp := OverviewResponse{
		ActiveSession: o.ActiveSession,
		TotalItems:    o.TotalItems,
		EligibleItems: o.EligibleItems,
		Sessions:      make([]SessionOverviewResponse, 0, len(o.Sessions)),
		Stats: StatsResponse{
			TotalVariance:      o.Stats.TotalVariance.Compact(),
			TotalValueVariance: o.Stats.TotalValueVariance.String(),
			PositiveVariances:  o.Stats.PositiveVariances,
			NegativeVariances:  o.Stats.NegativeVariances,
		},
	}
	for _, s := range o.Sessions {
		resp.Sessions = append(resp.Sessions, SessionOverviewResponse{
			SessionNumber: s.SessionNumber,
			Completed:     s.Progress.Completed,
			Total:         s.Progress.Total,
			Percentage:    s.Progress.Percentage(),
			Complete:      s.Complete,
			CanStart:      s.CanStart,
			Active:        s.Active,
		})
	}
	return resp
}
