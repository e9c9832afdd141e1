package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veloway/freightline/internal/domain"
)

type FleetRepository struct {
	pool *pgxpool.Pool
}

func NewFleetRepository(pool *pgxpool.Pool) *FleetRepository {
	return &FleetRepository{pool: pool}
}

func (r *FleetRepository) CreateResource(ctx context.Context, res domain.Resource) error {
	const stmt = `
INSERT INTO resources (
	id, kind, capacity, capacity_used,
	origin_city, destination_city, stops, departs_at, arrives_at,
	hub_id, city, window_start, window_end
)
VALUES ($1, $2, $3, 0, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	stops := res.Stops
	if stops == nil {
		stops = []string{}
	}

	_, err := r.pool.Exec(ctx, stmt,
		res.ID, res.Kind, res.Capacity,
		res.OriginCity, res.DestinationCity, stops, res.DepartsAt, res.ArrivesAt,
		nullableID(res.HubID), res.City, res.WindowStart, res.WindowEnd,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrStoreNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

func (r *FleetRepository) StoreExists(ctx context.Context, storeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM stores WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, storeID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check store: %w", err)
	}
	return exists, nil
}

// nullableID maps an unset ID to NULL so rail rows do not trip the hub
// foreign key.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
