package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/veloway/freightline/internal/clock"
	"github.com/veloway/freightline/internal/domain"
)

func TestAdminService_Stores(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, clock.NewFixed(testNow))
	svc := NewAdminService(eng.store)

	store, err := svc.CreateStore(context.Background(), CreateStoreInput{Name: "Galle Depot", City: "Galle"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if store.ID == "" {
		t.Fatalf("expected store ID to be set")
	}

	stores, err := svc.ListStores(context.Background())
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if len(stores) != 1 || stores[0].City != "Galle" {
		t.Fatalf("unexpected stores: %+v", stores)
	}

	if _, err := svc.CreateStore(context.Background(), CreateStoreInput{City: "Galle"}); !errors.Is(err, domain.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.CreateStore(context.Background(), CreateStoreInput{Name: "Depot"}); !errors.Is(err, domain.ErrCityRequired) {
		t.Fatalf("expected ErrCityRequired, got %v", err)
	}
}

func TestAdminService_Products(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, clock.NewFixed(testNow))
	svc := NewAdminService(eng.store)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Ceylon Tea 1kg",
		UnitLoad: decimal.RequireFromString("1.25"),
		Stock:    400,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.ID == "" {
		t.Fatalf("expected product ID to be set")
	}

	products, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(products) != 1 || !products[0].UnitLoad.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("unexpected products: %+v", products)
	}

	if _, err := svc.CreateProduct(context.Background(), CreateProductInput{UnitLoad: decimal.NewFromInt(1)}); !errors.Is(err, domain.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Tea"}); !errors.Is(err, domain.ErrInvalidUnitLoad) {
		t.Fatalf("expected ErrInvalidUnitLoad, got %v", err)
	}
	if _, err := svc.CreateProduct(context.Background(), CreateProductInput{Name: "Tea", UnitLoad: decimal.NewFromInt(1), Stock: -1}); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}
