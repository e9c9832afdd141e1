package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veloway/freightline/internal/domain"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

func (r *LedgerRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *LedgerRepository) GetResource(ctx context.Context, resourceID string) (domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1`
	res, err := scanResource(r.queryRow(ctx, query, resourceID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Resource{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Resource{}, domain.ErrResourceNotFound
		}
		return domain.Resource{}, fmt.Errorf("get resource: %w", err)
	}
	return res, nil
}

// AddCapacityUsed is the single authorizing mutation of the ledger: one
// conditional UPDATE that either commits the amount within capacity or
// touches nothing.
func (r *LedgerRepository) AddCapacityUsed(ctx context.Context, resourceID string, amount int64) (bool, error) {
	const stmt = `
UPDATE resources
SET capacity_used = capacity_used + $2
WHERE id = $1 AND capacity_used + $2 <= capacity`

	tag, err := r.exec(ctx, stmt, resourceID, amount)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("add capacity used: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *LedgerRepository) SubtractCapacityUsed(ctx context.Context, resourceID string, amount int64) error {
	const stmt = `UPDATE resources SET capacity_used = capacity_used - $2 WHERE id = $1`

	_, err := r.exec(ctx, stmt, resourceID, amount)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvariantViolation
		}
		return fmt.Errorf("subtract capacity used: %w", err)
	}
	return nil
}

func (r *LedgerRepository) InsertReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, resource_id, amount, created_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, res.ID, res.ResourceID, res.Amount, res.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrResourceNotFound
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (r *LedgerRepository) DeleteReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	const stmt = `
DELETE FROM reservations
WHERE id = $1
RETURNING id, resource_id, amount, created_at`

	var res domain.Reservation
	err := r.queryRow(ctx, stmt, reservationID).
		Scan(&res.ID, &res.ResourceID, &res.Amount, &res.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("delete reservation: %w", err)
	}
	return &res, nil
}

func (r *LedgerRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *LedgerRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
