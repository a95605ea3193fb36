package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mekdi/faction-services/internal/arenasvc/models"
)

type EpochStore struct {
	db *pgxpool.Pool
}

func NewEpochStore(db *pgxpool.Pool) *EpochStore {
	return &EpochStore{db: db}
}

func (s *EpochStore) UpsertEpoch(ctx context.Context, e models.Epoch) error {
	query := `
        INSERT INTO epochs (epoch_id, start_time, end_time, finalized, winning_faction, reward_pool, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, now())
        ON CONFLICT (epoch_id) DO UPDATE
        SET finalized = EXCLUDED.finalized,
            winning_faction = EXCLUDED.winning_faction,
            reward_pool = EXCLUDED.reward_pool,
            updated_at = now()
    `
	_, err := s.db.Exec(ctx, query,
		e.EpochID, e.StartTime, e.EndTime, e.Finalized, e.WinningFaction, e.RewardPool)
	if err != nil {
		return fmt.Errorf("could not upsert epoch: %v", err)
	}
	return nil
}

func (s *EpochStore) GetEpoch(ctx context.Context, epochID uint32) (*models.Epoch, error) {
	row := s.db.QueryRow(ctx, `
        SELECT epoch_id, start_time, end_time, finalized, winning_faction, reward_pool, updated_at
        FROM epochs
        WHERE epoch_id = $1
    `, epochID)

	e := &models.Epoch{}
	err := row.Scan(
		&e.EpochID,
		&e.StartTime,
		&e.EndTime,
		&e.Finalized,
		&e.WinningFaction,
		&e.RewardPool,
		&e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EpochStore) UpsertStanding(ctx context.Context, st models.FactionStanding) error {
	query := `
        INSERT INTO faction_standings (epoch_id, faction_id, total_fp)
        VALUES ($1, $2, $3)
        ON CONFLICT (epoch_id, faction_id) DO UPDATE
        SET total_fp = EXCLUDED.total_fp
    `
	_, err := s.db.Exec(ctx, query, st.EpochID, st.FactionID, st.TotalFP)
	if err != nil {
		return fmt.Errorf("could not upsert standing: %v", err)
	}
	return nil
}

func (s *EpochStore) ListStandings(ctx context.Context, epochID uint32) ([]*models.FactionStanding, error) {
	rows, err := s.db.Query(ctx, `
        SELECT epoch_id, faction_id, total_fp
        FROM faction_standings
        WHERE epoch_id = $1
        ORDER BY faction_id
    `, epochID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var standings []*models.FactionStanding
	for rows.Next() {
		st := &models.FactionStanding{}
		if err := rows.Scan(&st.EpochID, &st.FactionID, &st.TotalFP); err != nil {
			return nil, err
		}
		st.Faction = models.FactionName(st.FactionID)
		standings = append(standings, st)
	}
	return standings, nil
}
