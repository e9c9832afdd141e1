// Package memory is an in-process implementation of the storage interfaces,
// used by tests and by development runs without Postgres. A single mutex
// makes every transaction serializable, and WithTx snapshots state so a
// failed transaction rolls back completely, matching the all-or-nothing
// contract the Postgres layer gets from real transactions.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/veloway/freightline/internal/domain"
)

type txKey struct{}

type state struct {
	stores       map[string]domain.Store
	products     map[string]domain.Product
	orders       map[string]domain.Order
	orderLines   map[string][]domain.OrderLine
	resources    map[string]domain.Resource
	reservations map[string]domain.Reservation
	allocations  map[string]domain.Allocation
}

func newState() state {
	return state{
		stores:       make(map[string]domain.Store),
		products:     make(map[string]domain.Product),
		orders:       make(map[string]domain.Order),
		orderLines:   make(map[string][]domain.OrderLine),
		resources:    make(map[string]domain.Resource),
		reservations: make(map[string]domain.Reservation),
		allocations:  make(map[string]domain.Allocation),
	}
}

func (s state) clone() state {
	c := newState()
	for k, v := range s.stores {
		c.stores[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.orderLines {
		c.orderLines[k] = append([]domain.OrderLine(nil), v...)
	}
	for k, v := range s.resources {
		v.Stops = append([]string(nil), v.Stops...)
		c.resources[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.allocations {
		c.allocations[k] = v
	}
	return c
}

type Store struct {
	mu    sync.Mutex
	state state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

// WithTx serializes the whole transaction under the store mutex. Nested
// calls join the outer transaction; an error restores the pre-transaction
// snapshot.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

func inTx(ctx context.Context) bool {
	held, _ := ctx.Value(txKey{}).(bool)
	return held
}

// locked runs fn under the mutex unless the context already holds the
// transaction lock.
func (s *Store) locked(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

// ---- ledger ----

func (s *Store) GetResource(ctx context.Context, resourceID string) (domain.Resource, error) {
	var res domain.Resource
	err := s.locked(ctx, func() error {
		r, ok := s.state.resources[resourceID]
		if !ok {
			return domain.ErrResourceNotFound
		}
		res = r
		return nil
	})
	return res, err
}

func (s *Store) AddCapacityUsed(ctx context.Context, resourceID string, amount int64) (bool, error) {
	var ok bool
	err := s.locked(ctx, func() error {
		r, found := s.state.resources[resourceID]
		if !found {
			return nil
		}
		if r.CapacityUsed+amount > r.Capacity {
			return nil
		}
		r.CapacityUsed += amount
		s.state.resources[resourceID] = r
		ok = true
		return nil
	})
	return ok, err
}

func (s *Store) SubtractCapacityUsed(ctx context.Context, resourceID string, amount int64) error {
	return s.locked(ctx, func() error {
		r, found := s.state.resources[resourceID]
		if !found {
			return nil
		}
		if r.CapacityUsed-amount < 0 {
			return domain.ErrInvariantViolation
		}
		r.CapacityUsed -= amount
		s.state.resources[resourceID] = r
		return nil
	})
}

func (s *Store) InsertReservation(ctx context.Context, res domain.Reservation) error {
	return s.locked(ctx, func() error {
		if _, ok := s.state.resources[res.ResourceID]; !ok {
			return domain.ErrResourceNotFound
		}
		s.state.reservations[res.ID] = res
		return nil
	})
}

func (s *Store) DeleteReservation(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	var deleted *domain.Reservation
	err := s.locked(ctx, func() error {
		res, ok := s.state.reservations[reservationID]
		if !ok {
			return nil
		}
		delete(s.state.reservations, reservationID)
		deleted = &res
		return nil
	})
	return deleted, err
}

// ---- catalog ----

func (s *Store) ListHubs(ctx context.Context) ([]domain.Store, error) {
	var hubs []domain.Store
	err := s.locked(ctx, func() error {
		for _, st := range s.state.stores {
			hubs = append(hubs, st)
		}
		sort.Slice(hubs, func(i, j int) bool {
			if hubs[i].City != hubs[j].City {
				return hubs[i].City < hubs[j].City
			}
			return hubs[i].ID < hubs[j].ID
		})
		return nil
	})
	return hubs, err
}

func (s *Store) ListRoadCandidates(ctx context.Context, hubID, city string, after time.Time) ([]domain.Resource, error) {
	var out []domain.Resource
	err := s.locked(ctx, func() error {
		for _, r := range s.state.resources {
			if r.Kind != domain.ResourceKindRoad {
				continue
			}
			if r.HubID != hubID || r.City != city {
				continue
			}
			if !r.WindowEnd.After(after) {
				continue
			}
			if r.Remaining() <= 0 {
				continue
			}
			out = append(out, r)
		}
		sortByDeparture(out)
		return nil
	})
	return out, err
}

func (s *Store) ListRailCandidates(ctx context.Context, originCity, hubCity string, after time.Time) ([]domain.Resource, error) {
	var out []domain.Resource
	err := s.locked(ctx, func() error {
		for _, r := range s.state.resources {
			if r.Kind != domain.ResourceKindRail {
				continue
			}
			if r.OriginCity != originCity {
				continue
			}
			if r.DestinationCity != hubCity && !containsStop(r.Stops, hubCity) {
				continue
			}
			if !r.DepartsAt.After(after) {
				continue
			}
			if r.Remaining() <= 0 {
				continue
			}
			out = append(out, r)
		}
		sortByDeparture(out)
		return nil
	})
	return out, err
}

func (s *Store) ListResources(ctx context.Context) ([]domain.Resource, error) {
	var out []domain.Resource
	err := s.locked(ctx, func() error {
		for _, r := range s.state.resources {
			out = append(out, r)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Kind != out[j].Kind {
				return out[i].Kind < out[j].Kind
			}
			if !out[i].Departure().Equal(out[j].Departure()) {
				return out[i].Departure().Before(out[j].Departure())
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func sortByDeparture(resources []domain.Resource) {
	sort.Slice(resources, func(i, j int) bool {
		if !resources[i].Departure().Equal(resources[j].Departure()) {
			return resources[i].Departure().Before(resources[j].Departure())
		}
		return resources[i].ID < resources[j].ID
	})
}

func containsStop(stops []string, city string) bool {
	for _, s := range stops {
		if s == city {
			return true
		}
	}
	return false
}

// ---- orders ----

func (s *Store) CreateOrder(ctx context.Context, order domain.Order, lines []domain.OrderLine) error {
	return s.locked(ctx, func() error {
		s.state.orders[order.ID] = order
		s.state.orderLines[order.ID] = append([]domain.OrderLine(nil), lines...)
		return nil
	})
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	var order domain.Order
	err := s.locked(ctx, func() error {
		o, ok := s.state.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		order = o
		return nil
	})
	return order, err
}

// GetOrderForUpdate is GetOrder; the store mutex already serializes the
// transaction.
func (s *Store) GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error) {
	return s.GetOrder(ctx, orderID)
}

func (s *Store) GetOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	var lines []domain.OrderLine
	err := s.locked(ctx, func() error {
		lines = append([]domain.OrderLine(nil), s.state.orderLines[orderID]...)
		return nil
	})
	return lines, err
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return s.locked(ctx, func() error {
		o, ok := s.state.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.Status = status
		s.state.orders[orderID] = o
		return nil
	})
}

func (s *Store) ProductExists(ctx context.Context, productID string) (bool, error) {
	var exists bool
	err := s.locked(ctx, func() error {
		_, exists = s.state.products[productID]
		return nil
	})
	return exists, err
}

func (s *Store) GetProducts(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	products := make(map[string]domain.Product, len(productIDs))
	err := s.locked(ctx, func() error {
		for _, id := range productIDs {
			if p, ok := s.state.products[id]; ok {
				products[id] = p
			}
		}
		return nil
	})
	return products, err
}

// ---- allocations ----

func (s *Store) InsertAllocation(ctx context.Context, alloc domain.Allocation) error {
	return s.locked(ctx, func() error {
		if _, ok := s.state.resources[alloc.ResourceID]; !ok {
			return domain.ErrResourceNotFound
		}
		s.state.allocations[alloc.ID] = alloc
		return nil
	})
}

func (s *Store) ListAllocationsByOrder(ctx context.Context, orderID string) ([]domain.Allocation, error) {
	var out []domain.Allocation
	err := s.locked(ctx, func() error {
		for _, a := range s.state.allocations {
			if a.OrderID == orderID {
				out = append(out, a)
			}
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}

func (s *Store) ListAllocationsByResource(ctx context.Context, resourceID string) ([]domain.Allocation, error) {
	var out []domain.Allocation
	err := s.locked(ctx, func() error {
		for _, a := range s.state.allocations {
			if a.ResourceID == resourceID {
				out = append(out, a)
			}
		}
		// Most-recent-first, the shrink eviction order.
		sort.Slice(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].ID > out[j].ID
		})
		return nil
	})
	return out, err
}

func (s *Store) DeleteAllocation(ctx context.Context, allocationID string) error {
	return s.locked(ctx, func() error {
		delete(s.state.allocations, allocationID)
		return nil
	})
}

// ---- resources (fleet / reallocation) ----

func (s *Store) CreateResource(ctx context.Context, res domain.Resource) error {
	return s.locked(ctx, func() error {
		if res.Kind == domain.ResourceKindRoad {
			if _, ok := s.state.stores[res.HubID]; !ok {
				return domain.ErrStoreNotFound
			}
		}
		res.Stops = append([]string(nil), res.Stops...)
		s.state.resources[res.ID] = res
		return nil
	})
}

func (s *Store) GetResourceForUpdate(ctx context.Context, resourceID string) (domain.Resource, error) {
	return s.GetResource(ctx, resourceID)
}

func (s *Store) DeleteResource(ctx context.Context, resourceID string) error {
	return s.locked(ctx, func() error {
		if _, ok := s.state.resources[resourceID]; !ok {
			return domain.ErrResourceNotFound
		}
		for _, res := range s.state.reservations {
			if res.ResourceID == resourceID {
				return errors.New("resource still holds reservations")
			}
		}
		delete(s.state.resources, resourceID)
		return nil
	})
}

func (s *Store) SetResourceCapacity(ctx context.Context, resourceID string, capacity int64) error {
	return s.locked(ctx, func() error {
		r, ok := s.state.resources[resourceID]
		if !ok {
			return domain.ErrResourceNotFound
		}
		if r.CapacityUsed > capacity {
			return domain.ErrInvariantViolation
		}
		r.Capacity = capacity
		s.state.resources[resourceID] = r
		return nil
	})
}

func (s *Store) StoreExists(ctx context.Context, storeID string) (bool, error) {
	var exists bool
	err := s.locked(ctx, func() error {
		_, exists = s.state.stores[storeID]
		return nil
	})
	return exists, err
}

// ---- admin ----

func (s *Store) CreateStore(ctx context.Context, store domain.Store) error {
	return s.locked(ctx, func() error {
		s.state.stores[store.ID] = store
		return nil
	})
}

func (s *Store) ListStores(ctx context.Context) ([]domain.Store, error) {
	return s.ListHubs(ctx)
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) error {
	return s.locked(ctx, func() error {
		s.state.products[product.ID] = product
		return nil
	})
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := s.locked(ctx, func() error {
		for _, p := range s.state.products {
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].ID < out[j].ID
		})
		return nil
	})
	return out, err
}
