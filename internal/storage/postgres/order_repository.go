package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/veloway/freightline/internal/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order, lines []domain.OrderLine) error {
	const orderStmt = `
INSERT INTO orders (id, destination_city, destination_address, status, ordered_at)
VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.exec(ctx, orderStmt,
		order.ID,
		order.DestinationCity,
		order.DestinationAddress,
		order.Status,
		order.OrderedAt,
	); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	const lineStmt = `
INSERT INTO order_lines (id, order_id, product_id, quantity)
VALUES ($1, $2, $3, $4)`

	for _, line := range lines {
		if _, err := r.exec(ctx, lineStmt, line.ID, line.OrderID, line.ProductID, line.Quantity); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrProductNotFound
			}
			return fmt.Errorf("create order line: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	const query = `
SELECT id, destination_city, destination_address, status, ordered_at
FROM orders
WHERE id = $1`

	return r.scanOrder(r.queryRow(ctx, query, orderID))
}

func (r *OrderRepository) GetOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	return getOrderLines(ctx, r.pool, orderID)
}

func (r *OrderRepository) ListAllocationsByOrder(ctx context.Context, orderID string) ([]domain.Allocation, error) {
	return listAllocationsByOrder(ctx, r.pool, orderID)
}

func (r *OrderRepository) ProductExists(ctx context.Context, productID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`

	var exists bool
	if err := r.queryRow(ctx, query, productID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		return false, fmt.Errorf("check product: %w", err)
	}
	return exists, nil
}

func (r *OrderRepository) scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.DestinationCity, &o.DestinationAddress, &status, &o.OrderedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Order{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

// getOrderLines and listAllocationsByOrder are shared by the order and
// allocation repositories.

func getOrderLines(ctx context.Context, pool *pgxpool.Pool, orderID string) ([]domain.OrderLine, error) {
	const query = `
SELECT id, order_id, product_id, quantity
FROM order_lines
WHERE order_id = $1
ORDER BY id`

	rows, err := queryMaybeTx(ctx, pool, query, orderID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate order lines: %w", rows.Err())
	}
	return lines, nil
}

func listAllocationsByOrder(ctx context.Context, pool *pgxpool.Pool, orderID string) ([]domain.Allocation, error) {
	const query = `
SELECT id, order_id, resource_id, reservation_id, leg_type, reserved_amount, created_at
FROM allocations
WHERE order_id = $1
ORDER BY created_at, id`

	rows, err := queryMaybeTx(ctx, pool, query, orderID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	return collectAllocations(rows)
}

func queryMaybeTx(ctx context.Context, pool *pgxpool.Pool, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return pool.Query(ctx, sql, args...)
}

func collectAllocations(rows pgx.Rows) ([]domain.Allocation, error) {
	defer rows.Close()

	var allocs []domain.Allocation
	for rows.Next() {
		var a domain.Allocation
		var leg string
		if err := rows.Scan(&a.ID, &a.OrderID, &a.ResourceID, &a.ReservationID, &leg, &a.ReservedAmount, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		a.LegType = domain.LegType(leg)
		allocs = append(allocs, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate allocations: %w", rows.Err())
	}
	return allocs, nil
}
