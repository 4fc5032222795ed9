package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stocktake/internal/core/id"
	"stocktake/internal/domain/counting"
)

const sessionTable = "counting_session"

// SessionRepo persists the single active counting session as one row.
type SessionRepo struct {
	txManager *TxManager
}

var _ counting.SessionRepository = (*SessionRepo)(nil)

// NewSessionRepo creates a session repository.
func NewSessionRepo(txManager *TxManager) *SessionRepo {
	return &SessionRepo{txManager: txManager}
}

// Get returns the active session, or a fresh session 1 when none is stored.
func (r *SessionRepo) Get(ctx context.Context) (*counting.Session, error) {
	querier := r.txManager.GetQuerier(ctx)

	var (
		number    int
		active    bool
		completed []byte
	)
	err := querier.QueryRow(ctx,
		"SELECT session_number, is_active, completed_items FROM "+sessionTable+" WHERE singleton = TRUE",
	).Scan(&number, &active, &completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return counting.NewSession(1), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	session := &counting.Session{
		SessionNumber:  number,
		IsActive:       active,
		CompletedItems: []id.ID{},
	}
	if len(completed) > 0 {
		if err := json.Unmarshal(completed, &session.CompletedItems); err != nil {
			return nil, fmt.Errorf("decode completed items: %w", err)
		}
	}
	return session, nil
}

// Save replaces the stored session.
func (r *SessionRepo) Save(ctx context.Context, session *counting.Session) error {
	completed, err := json.Marshal(session.CompletedItems)
	if err != nil {
		return fmt.Errorf("encode completed items: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, `
		INSERT INTO `+sessionTable+` (singleton, session_number, is_active, completed_items)
		VALUES (TRUE, $1, $2, $3)
		ON CONFLICT (singleton) DO UPDATE SET
			session_number = EXCLUDED.session_number,
			is_active = EXCLUDED.is_active,
			completed_items = EXCLUDED.completed_items
	`, session.SessionNumber, session.IsActive, completed)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
