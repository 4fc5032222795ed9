package counting

import (
	"context"
	"fmt"
	"time"

	"stocktake/internal/core/apperror"
	"stocktake/internal/core/id"
	"stocktake/internal/core/tx"
	"stocktake/internal/core/types"
	"stocktake/pkg/logger"
)

// Service orchestrates the counting workflow: it loads snapshots through
// the repository, runs the pure engine functions, and persists the results
// inside a transaction. One user action runs to completion before the
// next; no concurrent mutators race on the collection.
type Service struct {
	repo      Repository
	sessions  SessionRepository
	txManager tx.Manager
	auditor   Auditor
	clock     func() time.Time
}

// NewService creates a counting service. auditor may be nil.
func NewService(repo Repository, sessions SessionRepository, txManager tx.Manager, auditor Auditor) *Service {
	return &Service{
		repo:      repo,
		sessions:  sessions,
		txManager: txManager,
		auditor:   auditor,
		clock:     time.Now,
	}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

func (s *Service) audit(ctx context.Context, action string, entityID id.ID, payload any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, action, entityID, payload); err != nil {
		logger.Warn(ctx, "audit record failed", "action", action, "error", err)
	}
}

// Import replaces the whole collection with freshly imported items and
// resets the active session to 1.
func (s *Service) Import(ctx context.Context, items []*Item) error {
	for _, item := range items {
		if err := item.Validate(ctx); err != nil {
			return err
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.ReplaceAll(ctx, items); err != nil {
			return fmt.Errorf("replace items: %w", err)
		}
		return s.sessions.Save(ctx, NewSession(1))
	})
	if err != nil {
		return err
	}

	s.audit(ctx, "import", id.Nil(), map[string]any{"items": len(items)})
	logger.Info(ctx, "inventory imported", "items", len(items))
	return nil
}

// Items returns the full collection.
func (s *Service) Items(ctx context.Context) ([]*Item, error) {
	return s.repo.List(ctx)
}

// EligibleForSession returns the working subset for a session, optionally
// narrowed by a search query.
func (s *Service) EligibleForSession(ctx context.Context, session int, search string) ([]*Item, error) {
	if err := CheckSession(session); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return SearchItems(EligibleItems(items, session), search), nil
}

// RecordCount saves a manually counted quantity for one item, computing
// variance against the session baseline. Counting into a locked future
// session is rejected; re-saving an already counted item overwrites the
// result and appends another movement.
func (s *Service) RecordCount(ctx context.Context, itemID id.ID, session int, counted types.Quantity) (*Item, error) {
	if err := CheckSession(session); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if !CanStartSession(items, session) {
		return nil, apperror.NewSessionLocked(session)
	}

	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	updated, err := ApplyCount(item, session, counted, MovementCounting, s.clock())
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Save(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, "count", updated.ID, map[string]any{
		"session":  session,
		"quantity": counted.String(),
	})
	logger.Info(ctx, "count recorded",
		"item", updated.ArticleCode,
		"session", session,
		"quantity", counted.String(),
	)
	return updated, nil
}

// ReconcileMode selects what a bulk reconciliation import writes.
type ReconcileMode string

const (
	// ModeCounts records the quantities as session counts.
	ModeCounts ReconcileMode = "counts"
	// ModeBaseline stores the quantities as expected-stock overrides.
	ModeBaseline ReconcileMode = "baseline"
)

// Reconcile merges an external quantity table into the collection. Only
// matched items are rewritten; everything else is left untouched.
func (s *Service) Reconcile(ctx context.Context, rows []QuantityRow, session int, mode ReconcileMode) (int, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock()
	var updated []*Item
	switch mode {
	case ModeCounts:
		updated, err = ReconcileCounts(items, rows, session, now)
	case ModeBaseline:
		updated, err = OverrideBaseline(items, rows, session, now)
	default:
		return 0, apperror.NewValidation("unknown reconciliation mode").
			WithDetail("mode", string(mode))
	}
	if err != nil {
		return 0, err
	}

	// Persist only the items the merge actually replaced.
	changed := make([]*Item, 0, len(rows))
	for i := range updated {
		if updated[i] != items[i] {
			changed = append(changed, updated[i])
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SaveMany(ctx, changed)
	})
	if err != nil {
		return 0, err
	}

	s.audit(ctx, "reconcile", id.Nil(), map[string]any{
		"mode":    string(mode),
		"session": session,
		"matched": len(changed),
		"rows":    len(rows),
	})
	logger.Info(ctx, "reconciliation applied",
		"mode", string(mode),
		"session", session,
		"matched", len(changed),
	)
	return len(changed), nil
}

// CurrentSession returns the active session state.
func (s *Service) CurrentSession(ctx context.Context) (*Session, error) {
	return s.sessions.Get(ctx)
}

// SwitchSession activates a session after checking the strict-order gate.
func (s *Service) SwitchSession(ctx context.Context, session int) (*Session, error) {
	if err := CheckSession(session); err != nil {
		return nil, err
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if !CanStartSession(items, session) {
		return nil, apperror.NewSessionLocked(session)
	}

	next := NewSession(session)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.sessions.Save(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "session switched", "session", session)
	return next, nil
}

// SessionOverview describes one counting round for the dashboard.
type SessionOverview struct {
	SessionNumber int             `json:"sessionNumber"`
	Progress      SessionProgress `json:"progress"`
	Complete      bool            `json:"complete"`
	CanStart      bool            `json:"canStart"`
	Active        bool            `json:"active"`
}

// Overview summarizes all sessions plus the active session's aggregates.
type Overview struct {
	Sessions      []SessionOverview `json:"sessions"`
	ActiveSession int               `json:"activeSession"`
	TotalItems    int               `json:"totalItems"`
	EligibleItems int               `json:"eligibleItems"`
	Stats         SessionStats      `json:"stats"`
}

// SessionsOverview computes progress, gating and current-session variance
// totals across all rounds.
func (s *Service) SessionsOverview(ctx context.Context) (*Overview, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		ActiveSession: current.SessionNumber,
		TotalItems:    len(items),
	}
	for n := 1; n <= MaxSessions; n++ {
		p := ProgressFor(items, n)
		overview.Sessions = append(overview.Sessions, SessionOverview{
			SessionNumber: n,
			Progress:      p,
			Complete:      p.Complete(),
			CanStart:      CanStartSession(items, n),
			Active:        n == current.SessionNumber,
		})
	}

	eligible := EligibleItems(items, current.SessionNumber)
	overview.EligibleItems = len(eligible)
	overview.Stats = Stats(eligible, current.SessionNumber)
	return overview, nil
}

// Script renders the downstream SQL update script for a session.
func (s *Service) Script(ctx context.Context, session int) (string, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return "", err
	}
	return BuildUpdateScript(items, session, s.clock().Year())
}

// Reset wipes the collection and restarts at session 1. The caller is
// responsible for password confirmation.
func (s *Service) Reset(ctx context.Context) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteAll(ctx); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		return s.sessions.Save(ctx, NewSession(1))
	})
	if err != nil {
		return err
	}

	s.audit(ctx, "reset", id.Nil(), nil)
	logger.Info(ctx, "inventory reset")
	return nil
}
