package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veloway/freightline/internal/domain"
)

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) ListHubs(ctx context.Context) ([]domain.Store, error) {
	const query = `SELECT id, name, city FROM stores ORDER BY city, id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list hubs: %w", err)
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.City); err != nil {
			return nil, fmt.Errorf("scan hub: %w", err)
		}
		stores = append(stores, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate hubs: %w", rows.Err())
	}
	return stores, nil
}

func (r *CatalogRepository) ListRoadCandidates(ctx context.Context, hubID, city string, after time.Time) ([]domain.Resource, error) {
	query := `
SELECT ` + resourceColumns + `
FROM resources
WHERE kind = 'road'
  AND hub_id = $1
  AND city = $2
  AND window_end > $3
  AND capacity_used < capacity
ORDER BY window_start, id`

	rows, err := r.query(ctx, query, hubID, city, after)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list road candidates: %w", err)
	}
	return collectResources(rows)
}

func (r *CatalogRepository) ListRailCandidates(ctx context.Context, originCity, hubCity string, after time.Time) ([]domain.Resource, error) {
	query := `
SELECT ` + resourceColumns + `
FROM resources
WHERE kind = 'rail'
  AND origin_city = $1
  AND (destination_city = $2 OR $2 = ANY(stops))
  AND departs_at > $3
  AND capacity_used < capacity
ORDER BY departs_at, id`

	rows, err := r.query(ctx, query, originCity, hubCity, after)
	if err != nil {
		return nil, fmt.Errorf("list rail candidates: %w", err)
	}
	return collectResources(rows)
}

func (r *CatalogRepository) ListResources(ctx context.Context) ([]domain.Resource, error) {
	query := `
SELECT ` + resourceColumns + `
FROM resources
ORDER BY kind, departs_at, window_start, id`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return collectResources(rows)
}

func (r *CatalogRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
