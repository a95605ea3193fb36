package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mekdi/faction-services/internal/arenasvc/models"
)

type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) UpsertSession(ctx context.Context, sess models.Session) error {
	query := `
        INSERT INTO sessions (session_id, game_id, epoch_id, player1, player2, player1_wager, player2_wager, status, player1_won, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
        ON CONFLICT (session_id) DO UPDATE
        SET status = EXCLUDED.status,
            player1_won = EXCLUDED.player1_won,
            updated_at = now()
    `
	_, err := s.db.Exec(ctx, query,
		sess.SessionID, sess.GameID, sess.EpochID,
		sess.Player1, sess.Player2, sess.Player1Wager, sess.Player2Wager,
		sess.Status, sess.Player1Won)
	if err != nil {
		return fmt.Errorf("could not upsert session: %v", err)
	}
	return nil
}

func (s *SessionStore) GetBySessionID(ctx context.Context, sessionID uint32) (*models.Session, error) {
	row := s.db.QueryRow(ctx, `
        SELECT session_id, game_id, epoch_id, player1, player2, player1_wager, player2_wager, status, player1_won, created_at, updated_at
        FROM sessions
        WHERE session_id = $1
    `, sessionID)

	sess := &models.Session{}
	err := row.Scan(
		&sess.SessionID,
		&sess.GameID,
		&sess.EpochID,
		&sess.Player1,
		&sess.Player2,
		&sess.Player1Wager,
		&sess.Player2Wager,
		&sess.Status,
		&sess.Player1Won,
		&sess.CreatedAt,
		&sess.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// ListPendingByEpoch returns sessions stranded in an epoch, the candidates
// for administrative cancellation after a rollover.
func (s *SessionStore) ListPendingByEpoch(ctx context.Context, epochID uint32) ([]*models.Session, error) {
	rows, err := s.db.Query(ctx, `
        SELECT session_id, game_id, epoch_id, player1, player2, player1_wager, player2_wager, status, player1_won, created_at, updated_at
        FROM sessions
        WHERE epoch_id = $1 AND status = 'pending'
        ORDER BY created_at
    `, epochID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		sess := &models.Session{}
		err := rows.Scan(
			&sess.SessionID,
			&sess.GameID,
			&sess.EpochID,
			&sess.Player1,
			&sess.Player2,
			&sess.Player1Wager,
			&sess.Player2Wager,
			&sess.Status,
			&sess.Player1Won,
			&sess.CreatedAt,
			&sess.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}
