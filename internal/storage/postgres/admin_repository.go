package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/veloway/freightline/internal/domain"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateStore(ctx context.Context, store domain.Store) error {
	const stmt = `INSERT INTO stores (id, name, city) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, stmt, store.ID, store.Name, store.City)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create store: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListStores(ctx context.Context) ([]domain.Store, error) {
	const query = `SELECT id, name, city FROM stores ORDER BY city, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		var s domain.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.City); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate stores: %w", rows.Err())
	}
	return stores, nil
}

func (r *AdminRepository) CreateProduct(ctx context.Context, product domain.Product) error {
	const stmt = `
INSERT INTO products (id, name, unit_load, stock)
VALUES ($1, $2, $3::numeric, $4)`

	_, err := r.pool.Exec(ctx, stmt, product.ID, product.Name, product.UnitLoad.String(), product.Stock)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInvalidUnitLoad
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const query = `SELECT id, name, unit_load::text, stock FROM products ORDER BY name, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var unitLoad string
		if err := rows.Scan(&p.ID, &p.Name, &unitLoad, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		parsed, err := decimal.NewFromString(unitLoad)
		if err != nil {
			return nil, fmt.Errorf("parse unit load: %w", err)
		}
		p.UnitLoad = parsed
		products = append(products, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate products: %w", rows.Err())
	}
	return products, nil
}
