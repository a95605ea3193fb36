package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mekdi/faction-services/internal/arenasvc/models"
)

type PlayerStore struct {
	db *pgxpool.Pool
}

func NewPlayerStore(db *pgxpool.Pool) *PlayerStore {
	return &PlayerStore{db: db}
}

// UpsertPlayer writes the persistent player record after an engine
// transition touched it.
func (s *PlayerStore) UpsertPlayer(ctx context.Context, p models.Player) error {
	query := `
        INSERT INTO players (address, selected_faction, last_epoch_balance, time_multiplier_start, created_at, updated_at)
        VALUES ($1, $2, $3, $4, now(), now())
        ON CONFLICT (address) DO UPDATE
        SET selected_faction = EXCLUDED.selected_faction,
            last_epoch_balance = EXCLUDED.last_epoch_balance,
            time_multiplier_start = EXCLUDED.time_multiplier_start,
            updated_at = now()
    `
	_, err := s.db.Exec(ctx, query, p.Address, p.SelectedFaction, p.LastEpochBalance, p.TimeMultiplierStart)
	if err != nil {
		return fmt.Errorf("could not upsert player: %v", err)
	}
	return nil
}

func (s *PlayerStore) GetByAddress(ctx context.Context, address string) (*models.Player, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, address, selected_faction, last_epoch_balance, time_multiplier_start, created_at, updated_at
        FROM players
        WHERE address = $1
    `, address)

	p := &models.Player{}
	err := row.Scan(
		&p.ID,
		&p.Address,
		&p.SelectedFaction,
		&p.LastEpochBalance,
		&p.TimeMultiplierStart,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpsertEpochPlayer persists the per-epoch ledger snapshot.
func (s *PlayerStore) UpsertEpochPlayer(ctx context.Context, ep models.EpochPlayer) error {
	query := `
        INSERT INTO epoch_players (epoch_id, address, faction, balance, available_fp, locked_fp, contributed_fp, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, now())
        ON CONFLICT (epoch_id, address) DO UPDATE
        SET available_fp = EXCLUDED.available_fp,
            locked_fp = EXCLUDED.locked_fp,
            contributed_fp = EXCLUDED.contributed_fp,
            updated_at = now()
    `
	_, err := s.db.Exec(ctx, query,
		ep.EpochID, ep.Address, ep.Faction, ep.Balance, ep.AvailableFP, ep.LockedFP, ep.ContributedFP)
	if err != nil {
		return fmt.Errorf("could not upsert epoch player: %v", err)
	}
	return nil
}

func (s *PlayerStore) GetEpochPlayer(ctx context.Context, epochID uint32, address string) (*models.EpochPlayer, error) {
	row := s.db.QueryRow(ctx, `
        SELECT epoch_id, address, faction, balance, available_fp, locked_fp, contributed_fp, updated_at
        FROM epoch_players
        WHERE epoch_id = $1 AND address = $2
    `, epochID, address)

	ep := &models.EpochPlayer{}
	err := row.Scan(
		&ep.EpochID,
		&ep.Address,
		&ep.Faction,
		&ep.Balance,
		&ep.AvailableFP,
		&ep.LockedFP,
		&ep.ContributedFP,
		&ep.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ep, nil
}
