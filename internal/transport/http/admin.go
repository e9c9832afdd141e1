package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/veloway/freightline/internal/app"
	"github.com/veloway/freightline/internal/domain"
)

// StoreAdmin manages hub stores.
type StoreAdmin interface {
	CreateStore(ctx context.Context, in app.CreateStoreInput) (domain.Store, error)
	ListStores(ctx context.Context) ([]domain.Store, error)
}

// ProductAdmin manages the product catalog.
type ProductAdmin interface {
	CreateProduct(ctx context.Context, in app.CreateProductInput) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type AdminHandler struct {
	stores   StoreAdmin
	products ProductAdmin
}

func NewAdminHandler(stores StoreAdmin, products ProductAdmin) *AdminHandler {
	return &AdminHandler{stores: stores, products: products}
}

func (h *AdminHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req createStoreRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	store, err := h.stores.CreateStore(r.Context(), app.CreateStoreInput{
		Name: req.Name,
		City: req.City,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(storeResponseFrom(store))
}

func (h *AdminHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.stores.ListStores(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]storeResponse, 0, len(stores))
	for _, s := range stores {
		resp = append(resp, storeResponseFrom(s))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	unitLoad, err := decimal.NewFromString(req.UnitLoad)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidUnitLoad, "invalid unit_load")
		return
	}

	product, err := h.products.CreateProduct(r.Context(), app.CreateProductInput{
		Name:     req.Name,
		UnitLoad: unitLoad,
		Stock:    req.Stock,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(productResponseFrom(product))
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, productResponseFrom(p))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type createStoreRequest struct {
	Name string `json:"name"`
	City string `json:"city"`
}

type storeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

func storeResponseFrom(store domain.Store) storeResponse {
	return storeResponse{ID: store.ID, Name: store.Name, City: store.City}
}

type createProductRequest struct {
	Name     string `json:"name"`
	UnitLoad string `json:"unit_load"`
	Stock    int64  `json:"stock"`
}

type productResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	UnitLoad string `json:"unit_load"`
	Stock    int64  `json:"stock"`
}

func productResponseFrom(product domain.Product) productResponse {
	return productResponse{
		ID:       product.ID,
		Name:     product.Name,
		UnitLoad: product.UnitLoad.String(),
		Stock:    product.Stock,
	}
}
