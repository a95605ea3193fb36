package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mekdi/faction-services/internal/arenasvc/models"
)

type PayoutStore struct {
	db *pgxpool.Pool
}

func NewPayoutStore(db *pgxpool.Pool) *PayoutStore {
	return &PayoutStore{db: db}
}

// CreatePayout records a reward disbursement as a ledger row.
func (s *PayoutStore) CreatePayout(ctx context.Context, p models.Payout) error {
	query := `
        INSERT INTO payouts (address, epoch_id, ttype, dr, cr, tref, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
    `
	_, err := s.db.Exec(ctx, query, p.Address, p.EpochID, p.TType, p.Dr, p.Cr, p.TRef, p.Status)
	return err
}

// GetTotalPaidByAddress sums the completed payout ledger for one player.
func (s *PayoutStore) GetTotalPaidByAddress(ctx context.Context, address string) (decimal.Decimal, error) {
	var totalDr, totalCr decimal.Decimal

	err := s.db.QueryRow(ctx, `
        SELECT
            COALESCE(SUM(dr), 0),
            COALESCE(SUM(cr), 0)
        FROM payouts
        WHERE address = $1 AND status = 'completed'
    `, address).Scan(&totalDr, &totalCr)

	if err != nil {
		return decimal.Zero, err
	}

	return totalDr.Sub(totalCr), nil
}
