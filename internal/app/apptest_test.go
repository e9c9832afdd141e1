package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/veloway/freightline/internal/clock"
	"github.com/veloway/freightline/internal/domain"
	"github.com/veloway/freightline/internal/storage/memory"
)

var testNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

const testOrigin = "Kandy"

// stepClock advances by step on every Now call, so rows created in sequence
// get distinct timestamps.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock(start time.Time, step time.Duration) *stepClock {
	return &stepClock{now: start, step: step}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// engine bundles the full allocation stack over the in-memory store.
type engine struct {
	store       *memory.Store
	ledger      *Ledger
	catalog     *Catalog
	planner     *Planner
	scheduler   *Scheduler
	reallocator *Reallocator
}

func newEngine(t *testing.T, clk clock.Clock, plannerOpts ...PlannerOption) *engine {
	t.Helper()
	store := memory.NewStore()
	ledger := NewLedger(store, clk)
	catalog := NewCatalog(store, clk, testOrigin)
	planner := NewPlanner(catalog, plannerOpts...)
	scheduler := NewScheduler(store, ledger, planner, clk, WithSleep(func(time.Duration) {}))
	reallocator := NewReallocator(store, ledger, scheduler, nil)
	return &engine{
		store:       store,
		ledger:      ledger,
		catalog:     catalog,
		planner:     planner,
		scheduler:   scheduler,
		reallocator: reallocator,
	}
}

func seedHub(t *testing.T, store *memory.Store, id, city string) domain.Store {
	t.Helper()
	hub := domain.Store{ID: id, Name: "Hub " + city, City: city}
	if err := store.CreateStore(context.Background(), hub); err != nil {
		t.Fatalf("seed hub: %v", err)
	}
	return hub
}

func seedProduct(t *testing.T, store *memory.Store, id string, unitLoad string) domain.Product {
	t.Helper()
	load, err := decimal.NewFromString(unitLoad)
	if err != nil {
		t.Fatalf("parse unit load: %v", err)
	}
	p := domain.Product{ID: id, Name: "Product " + id, UnitLoad: load, Stock: 1000}
	if err := store.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

func seedRail(t *testing.T, store *memory.Store, id, origin, hubCity string, capacity int64, departsAt time.Time) domain.Resource {
	t.Helper()
	res := domain.Resource{
		ID:              id,
		Kind:            domain.ResourceKindRail,
		Capacity:        capacity,
		OriginCity:      origin,
		DestinationCity: hubCity,
		DepartsAt:       departsAt,
		ArrivesAt:       departsAt.Add(4 * time.Hour),
	}
	if err := store.CreateResource(context.Background(), res); err != nil {
		t.Fatalf("seed rail trip: %v", err)
	}
	return res
}

func seedRoad(t *testing.T, store *memory.Store, id, hubID, city string, capacity int64, windowStart time.Time) domain.Resource {
	t.Helper()
	res := domain.Resource{
		ID:          id,
		Kind:        domain.ResourceKindRoad,
		Capacity:    capacity,
		HubID:       hubID,
		City:        city,
		WindowStart: windowStart,
		WindowEnd:   windowStart.Add(8 * time.Hour),
	}
	if err := store.CreateResource(context.Background(), res); err != nil {
		t.Fatalf("seed road schedule: %v", err)
	}
	return res
}

func seedOrder(t *testing.T, store *memory.Store, id, destinationCity string, status domain.OrderStatus, lines []domain.OrderLine) domain.Order {
	t.Helper()
	order := domain.Order{
		ID:              id,
		DestinationCity: destinationCity,
		Status:          status,
		OrderedAt:       testNow,
	}
	for i := range lines {
		lines[i].OrderID = id
	}
	if err := store.CreateOrder(context.Background(), order, lines); err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func resourceUsed(t *testing.T, store *memory.Store, resourceID string) int64 {
	t.Helper()
	res, err := store.GetResource(context.Background(), resourceID)
	if err != nil {
		t.Fatalf("get resource %s: %v", resourceID, err)
	}
	return res.CapacityUsed
}

func orderStatus(t *testing.T, store *memory.Store, orderID string) domain.OrderStatus {
	t.Helper()
	order, err := store.GetOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get order %s: %v", orderID, err)
	}
	return order.Status
}
