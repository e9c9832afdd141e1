package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/veloway/freightline/internal/clock"
	"github.com/veloway/freightline/internal/domain"
)

// SchedulerRepository is the storage surface of the allocation transaction.
type SchedulerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderForUpdate(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error)
	GetProducts(ctx context.Context, productIDs []string) (map[string]domain.Product, error)
	InsertAllocation(ctx context.Context, alloc domain.Allocation) error
	ListAllocationsByOrder(ctx context.Context, orderID string) ([]domain.Allocation, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error
}

const (
	defaultMaxAttempts = 3
	defaultBackoffBase = 50 * time.Millisecond
)

// Scheduler is the allocation transaction: it turns a planner's drafts into
// durable allocations with all-or-nothing semantics. It is the only
// component that persists allocation rows or moves capacity, and it does
// both inside one storage transaction, so a failed attempt leaves no trace.
type Scheduler struct {
	repo        SchedulerRepository
	ledger      *Ledger
	planner     *Planner
	clock       clock.Clock
	maxAttempts int
	backoffBase time.Duration
	sleep       func(time.Duration)
}

func NewScheduler(repo SchedulerRepository, ledger *Ledger, planner *Planner, clk clock.Clock, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		repo:        repo,
		ledger:      ledger,
		planner:     planner,
		clock:       clk,
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SchedulerOption func(*Scheduler)

// WithRetryPolicy overrides the Conflict retry budget and backoff base.
func WithRetryPolicy(maxAttempts int, backoffBase time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if backoffBase > 0 {
			s.backoffBase = backoffBase
		}
	}
}

// WithSleep replaces the inter-attempt sleep, for tests.
func WithSleep(sleep func(time.Duration)) SchedulerOption {
	return func(s *Scheduler) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// ScheduleResult is the committed outcome: the updated order and the
// allocations that now hold its capacity.
type ScheduleResult struct {
	Order       domain.Order
	Allocations []domain.Allocation
}

// Schedule plans and commits capacity for an order. A commit attempt that
// loses a race (a candidate's remaining capacity was consumed between
// listing and reservation) fails with Conflict and is re-planned against
// fresh data, up to the retry budget with jittered backoff. Past the budget
// it returns ErrExhaustedRetries; capacity truly gone returns
// ErrNoFeasibleResource. Neither failure leaves any allocation behind.
func (s *Scheduler) Schedule(ctx context.Context, orderID string) (ScheduleResult, error) {
	for attempt := 1; ; attempt++ {
		result, err := s.attempt(ctx, orderID)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, domain.ErrConflict) {
			return ScheduleResult{}, err
		}
		if attempt >= s.maxAttempts {
			return ScheduleResult{}, domain.ErrExhaustedRetries
		}
		s.sleep(s.backoff(attempt))
	}
}

func (s *Scheduler) attempt(ctx context.Context, orderID string) (ScheduleResult, error) {
	var result ScheduleResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		order, err := s.repo.GetOrderForUpdate(txCtx, orderID)
		if err != nil {
			return err
		}
		if order.Status == domain.OrderStatusCancelled {
			return domain.ErrOrderCancelled
		}
		if order.Status == domain.OrderStatusScheduled {
			// Already placed; report the existing allocations.
			allocs, err := s.repo.ListAllocationsByOrder(txCtx, orderID)
			if err != nil {
				return err
			}
			result = ScheduleResult{Order: order, Allocations: allocs}
			return nil
		}
		if !order.Status.Schedulable() {
			return domain.ErrOrderNotSchedulable
		}

		requiredLoad, err := s.requiredLoad(txCtx, orderID)
		if err != nil {
			return err
		}

		drafts, err := s.planner.Plan(txCtx, order, requiredLoad)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		allocs := make([]domain.Allocation, 0, len(drafts))
		for _, draft := range drafts {
			token, err := s.ledger.Reserve(txCtx, draft.ResourceID, draft.Amount)
			if err != nil {
				// The planning snapshot went stale under us. Abort the
				// transaction; every reservation of this attempt rolls
				// back with it.
				if errors.Is(err, domain.ErrInsufficientCapacity) || errors.Is(err, domain.ErrResourceNotFound) {
					return domain.ErrConflict
				}
				return err
			}
			alloc := domain.Allocation{
				ID:             newID(),
				OrderID:        orderID,
				ResourceID:     draft.ResourceID,
				ReservationID:  token.ID,
				LegType:        draft.LegType,
				ReservedAmount: draft.Amount,
				CreatedAt:      now,
			}
			if err := s.repo.InsertAllocation(txCtx, alloc); err != nil {
				return err
			}
			allocs = append(allocs, alloc)
		}

		if err := s.repo.UpdateOrderStatus(txCtx, orderID, domain.OrderStatusScheduled); err != nil {
			return err
		}
		order.Status = domain.OrderStatusScheduled
		result = ScheduleResult{Order: order, Allocations: allocs}
		return nil
	})
	if err != nil {
		return ScheduleResult{}, err
	}
	return result, nil
}

func (s *Scheduler) requiredLoad(ctx context.Context, orderID string) (int64, error) {
	lines, err := s.repo.GetOrderLines(ctx, orderID)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, domain.ErrOrderLinesRequired
	}

	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.repo.GetProducts(ctx, ids)
	if err != nil {
		return 0, err
	}
	return domain.RequiredLoad(lines, products)
}

// backoff grows linearly with the attempt number and adds up to one base
// unit of jitter so colliding retries spread out.
func (s *Scheduler) backoff(attempt int) time.Duration {
	base := time.Duration(attempt) * s.backoffBase
	jitter := time.Duration(rand.Int63n(int64(s.backoffBase)))
	return base + jitter
}
