package app

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/veloway/freightline/internal/domain"
)

type AdminRepository interface {
	CreateStore(ctx context.Context, store domain.Store) error
	ListStores(ctx context.Context) ([]domain.Store, error)
	CreateProduct(ctx context.Context, product domain.Product) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// AdminService covers hub-store and product administration.
type AdminService struct {
	repo AdminRepository
}

func NewAdminService(repo AdminRepository) *AdminService {
	return &AdminService{repo: repo}
}

type CreateStoreInput struct {
	Name string
	City string
}

func (s *AdminService) CreateStore(ctx context.Context, in CreateStoreInput) (domain.Store, error) {
	if in.Name == "" {
		return domain.Store{}, domain.ErrNameRequired
	}
	if in.City == "" {
		return domain.Store{}, domain.ErrCityRequired
	}

	store := domain.Store{
		ID:   newID(),
		Name: in.Name,
		City: in.City,
	}
	if err := s.repo.CreateStore(ctx, store); err != nil {
		return domain.Store{}, err
	}
	return store, nil
}

func (s *AdminService) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.repo.ListStores(ctx)
}

type CreateProductInput struct {
	Name     string
	UnitLoad decimal.Decimal
	Stock    int64
}

func (s *AdminService) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	if in.Name == "" {
		return domain.Product{}, domain.ErrNameRequired
	}
	if !in.UnitLoad.IsPositive() {
		return domain.Product{}, domain.ErrInvalidUnitLoad
	}
	if in.Stock < 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	product := domain.Product{
		ID:       newID(),
		Name:     in.Name,
		UnitLoad: in.UnitLoad,
		Stock:    in.Stock,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *AdminService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}
