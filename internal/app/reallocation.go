package app

import (
	"context"
	"log"

	"github.com/veloway/freightline/internal/domain"
)

// ReallocationRepository is the storage surface for releasing held
// allocations when a resource disappears, shrinks, or an order is
// cancelled. ListAllocationsByResource returns most-recent-first; that is
// the documented eviction order on shrink.
type ReallocationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetResourceForUpdate(ctx context.Context, resourceID string) (domain.Resource, error)
	DeleteResource(ctx context.Context, resourceID string) error
	SetResourceCapacity(ctx context.Context, resourceID string, capacity int64) error
	ListAllocationsByResource(ctx context.Context, resourceID string) ([]domain.Allocation, error)
	ListAllocationsByOrder(ctx context.Context, orderID string) ([]domain.Allocation, error)
	DeleteAllocation(ctx context.Context, allocationID string) error
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

// Reallocator keeps the capacity invariant when fleet administration removes
// or shrinks a resource, and handles order cancellation. It is the only
// component besides the scheduler that may drive ledger releases.
type Reallocator struct {
	repo      ReallocationRepository
	ledger    *Ledger
	scheduler *Scheduler
	logger    *log.Logger
}

func NewReallocator(repo ReallocationRepository, ledger *Ledger, scheduler *Scheduler, logger *log.Logger) *Reallocator {
	if logger == nil {
		logger = log.Default()
	}
	return &Reallocator{repo: repo, ledger: ledger, scheduler: scheduler, logger: logger}
}

// ReallocationReport records what a removal or shrink did: which orders lost
// capacity, and how the follow-up scheduling attempts went.
type ReallocationReport struct {
	ResourceID  string
	Affected    []string
	Rescheduled []string
	Unscheduled []string
}

// OnResourceRemoved releases every allocation held on the resource, moves
// the owning orders to needs-reallocation, deletes the resource, and then
// re-runs scheduling for each affected order. Orders that cannot be placed
// again stay needs-reallocation.
func (r *Reallocator) OnResourceRemoved(ctx context.Context, resourceID string) (ReallocationReport, error) {
	report := ReallocationReport{ResourceID: resourceID}

	err := r.repo.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := r.repo.GetResourceForUpdate(txCtx, resourceID); err != nil {
			return err
		}

		allocs, err := r.repo.ListAllocationsByResource(txCtx, resourceID)
		if err != nil {
			return err
		}
		displaced := make(map[string]struct{}, len(allocs))
		for _, alloc := range allocs {
			if _, done := displaced[alloc.OrderID]; done {
				continue
			}
			if err := r.displaceOrder(txCtx, alloc.OrderID); err != nil {
				return err
			}
			displaced[alloc.OrderID] = struct{}{}
			report.Affected = append(report.Affected, alloc.OrderID)
		}

		return r.repo.DeleteResource(txCtx, resourceID)
	})
	if err != nil {
		return ReallocationReport{}, err
	}

	r.reschedule(ctx, &report)
	return report, nil
}

// OnResourceShrunk lowers a resource's capacity. If committed usage exceeds
// the new capacity, allocations are evicted most-recent-first until it fits,
// and the displaced orders are re-planned.
func (r *Reallocator) OnResourceShrunk(ctx context.Context, resourceID string, newCapacity int64) (ReallocationReport, error) {
	if newCapacity <= 0 {
		return ReallocationReport{}, domain.ErrInvalidCapacity
	}
	report := ReallocationReport{ResourceID: resourceID}

	err := r.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := r.repo.GetResourceForUpdate(txCtx, resourceID)
		if err != nil {
			return err
		}

		used := res.CapacityUsed
		if used > newCapacity {
			allocs, err := r.repo.ListAllocationsByResource(txCtx, resourceID)
			if err != nil {
				return err
			}

			// Displacing an order frees every allocation it holds here, so
			// eviction is accounted per order, most-recent allocation first.
			freedByOrder := make(map[string]int64)
			for _, alloc := range allocs {
				freedByOrder[alloc.OrderID] += alloc.ReservedAmount
			}

			displaced := make(map[string]struct{})
			for _, alloc := range allocs {
				if used <= newCapacity {
					break
				}
				if _, done := displaced[alloc.OrderID]; done {
					continue
				}
				if err := r.displaceOrder(txCtx, alloc.OrderID); err != nil {
					return err
				}
				displaced[alloc.OrderID] = struct{}{}
				used -= freedByOrder[alloc.OrderID]
				report.Affected = append(report.Affected, alloc.OrderID)
			}
		}

		return r.repo.SetResourceCapacity(txCtx, resourceID, newCapacity)
	})
	if err != nil {
		return ReallocationReport{}, err
	}

	r.reschedule(ctx, &report)
	return report, nil
}

// CancelOrder releases everything an order holds and parks it in the
// terminal cancelled state. Idempotent.
func (r *Reallocator) CancelOrder(ctx context.Context, orderID string) (domain.Order, error) {
	var cancelled domain.Order

	err := r.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := r.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderStatusCancelled {
			cancelled = order
			return nil
		}

		if err := r.releaseOrderAllocations(txCtx, orderID); err != nil {
			return err
		}
		if err := r.repo.UpdateOrderStatus(txCtx, orderID, domain.OrderStatusCancelled); err != nil {
			return err
		}
		order.Status = domain.OrderStatusCancelled
		cancelled = order
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return cancelled, nil
}

// displaceOrder strips an order of all its allocations, not only the ones on
// the disturbed resource: a shipment that lost one leg must be re-planned as
// a whole, and re-planning starts from a clean slate.
func (r *Reallocator) displaceOrder(ctx context.Context, orderID string) error {
	if err := r.releaseOrderAllocations(ctx, orderID); err != nil {
		return err
	}
	return r.repo.UpdateOrderStatus(ctx, orderID, domain.OrderStatusNeedsReallocation)
}

func (r *Reallocator) releaseOrderAllocations(ctx context.Context, orderID string) error {
	allocs, err := r.repo.ListAllocationsByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for _, alloc := range allocs {
		// The allocation row goes first; it references the token.
		if err := r.repo.DeleteAllocation(ctx, alloc.ID); err != nil {
			return err
		}
		if err := r.ledger.Release(ctx, alloc.ReservationID); err != nil {
			return err
		}
	}
	return nil
}

// reschedule re-runs the allocation engine for each displaced order, after
// the release transaction has committed so freed capacity is visible.
func (r *Reallocator) reschedule(ctx context.Context, report *ReallocationReport) {
	seen := make(map[string]struct{}, len(report.Affected))
	for _, orderID := range report.Affected {
		if _, dup := seen[orderID]; dup {
			continue
		}
		seen[orderID] = struct{}{}

		if _, err := r.scheduler.Schedule(ctx, orderID); err != nil {
			r.logger.Printf("reallocation: order %s not rescheduled: %v", orderID, err)
			report.Unscheduled = append(report.Unscheduled, orderID)
			continue
		}
		report.Rescheduled = append(report.Rescheduled, orderID)
	}
}
