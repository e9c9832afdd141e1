package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/veloway/freightline/internal/domain"
)

// AllocationRepository backs both the scheduler and the reallocator: order
// locking, product lookup, allocation rows, and the resource mutations that
// keep removal and shrink inside one transaction.
type AllocationRepository struct {
	pool *pgxpool.Pool
}

func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{pool: pool}
}

func (r *AllocationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := withTx(ctx, r.pool, fn)
	if isDeadlock(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *AllocationRepository) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	const query = `
SELECT id, destination_city, destination_address, status, ordered_at
FROM orders
WHERE id = $1
FOR UPDATE`

	var o domain.Order
	var status string
	err := r.queryRow(ctx, query, orderID).
		Scan(&o.ID, &o.DestinationCity, &o.DestinationAddress, &status, &o.OrderedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order for update: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *AllocationRepository) GetOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	return getOrderLines(ctx, r.pool, orderID)
}

func (r *AllocationRepository) GetProducts(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	const query = `
SELECT id, name, unit_load::text, stock
FROM products
WHERE id = ANY($1)`

	rows, err := queryMaybeTx(ctx, r.pool, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make(map[string]domain.Product, len(productIDs))
	for rows.Next() {
		var p domain.Product
		var unitLoad string
		if err := rows.Scan(&p.ID, &p.Name, &unitLoad, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.UnitLoad, err = decimal.NewFromString(unitLoad)
		if err != nil {
			return nil, fmt.Errorf("parse unit load: %w", err)
		}
		products[p.ID] = p
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate products: %w", rows.Err())
	}
	return products, nil
}

func (r *AllocationRepository) InsertAllocation(ctx context.Context, alloc domain.Allocation) error {
	const stmt = `
INSERT INTO allocations (id, order_id, resource_id, reservation_id, leg_type, reserved_amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		alloc.ID,
		alloc.OrderID,
		alloc.ResourceID,
		alloc.ReservationID,
		alloc.LegType,
		alloc.ReservedAmount,
		alloc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrResourceNotFound
		}
		return fmt.Errorf("insert allocation: %w", err)
	}
	return nil
}

func (r *AllocationRepository) ListAllocationsByOrder(ctx context.Context, orderID string) ([]domain.Allocation, error) {
	return listAllocationsByOrder(ctx, r.pool, orderID)
}

// ListAllocationsByResource returns most-recent-first: the shrink eviction
// order.
func (r *AllocationRepository) ListAllocationsByResource(ctx context.Context, resourceID string) ([]domain.Allocation, error) {
	const query = `
SELECT id, order_id, resource_id, reservation_id, leg_type, reserved_amount, created_at
FROM allocations
WHERE resource_id = $1
ORDER BY created_at DESC, id DESC`

	rows, err := queryMaybeTx(ctx, r.pool, query, resourceID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list allocations by resource: %w", err)
	}
	return collectAllocations(rows)
}

func (r *AllocationRepository) DeleteAllocation(ctx context.Context, allocationID string) error {
	const stmt = `DELETE FROM allocations WHERE id = $1`

	if _, err := r.exec(ctx, stmt, allocationID); err != nil {
		return fmt.Errorf("delete allocation: %w", err)
	}
	return nil
}

func (r *AllocationRepository) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	const stmt = `UPDATE orders SET status = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *AllocationRepository) GetResourceForUpdate(ctx context.Context, resourceID string) (domain.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources WHERE id = $1 FOR UPDATE`

	res, err := scanResource(r.queryRow(ctx, query, resourceID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Resource{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Resource{}, domain.ErrResourceNotFound
		}
		return domain.Resource{}, fmt.Errorf("get resource for update: %w", err)
	}
	return res, nil
}

func (r *AllocationRepository) DeleteResource(ctx context.Context, resourceID string) error {
	const stmt = `DELETE FROM resources WHERE id = $1`

	tag, err := r.exec(ctx, stmt, resourceID)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *AllocationRepository) SetResourceCapacity(ctx context.Context, resourceID string, capacity int64) error {
	const stmt = `UPDATE resources SET capacity = $2 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, resourceID, capacity)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvariantViolation
		}
		return fmt.Errorf("set resource capacity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *AllocationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *AllocationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
