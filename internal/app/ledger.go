package app

import (
	"context"

	"github.com/veloway/freightline/internal/clock"
	"github.com/veloway/freightline/internal/domain"
)

// LedgerRepository is the storage surface the capacity ledger needs.
// AddCapacityUsed must be a single conditional mutation: it increments
// capacity_used only when the result stays within capacity, and reports
// whether it did. That one statement is what makes Reserve linearizable
// per resource.
type LedgerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetResource(ctx context.Context, resourceID string) (domain.Resource, error)
	AddCapacityUsed(ctx context.Context, resourceID string, amount int64) (bool, error)
	SubtractCapacityUsed(ctx context.Context, resourceID string, amount int64) error
	InsertReservation(ctx context.Context, res domain.Reservation) error
	DeleteReservation(ctx context.Context, reservationID string) (*domain.Reservation, error)
}

// Ledger is the sole authority over capacity_used. Every increment goes
// through Reserve, every decrement through Release; no other code path may
// touch the counter.
type Ledger struct {
	repo  LedgerRepository
	clock clock.Clock
}

func NewLedger(repo LedgerRepository, clk clock.Clock) *Ledger {
	return &Ledger{repo: repo, clock: clk}
}

// Reserve atomically commits amount on the resource and returns a token for
// exactly that amount. On shortfall it returns ErrInsufficientCapacity and
// mutates nothing.
func (l *Ledger) Reserve(ctx context.Context, resourceID string, amount int64) (domain.Reservation, error) {
	if amount <= 0 {
		return domain.Reservation{}, domain.ErrInvalidAmount
	}

	res := domain.Reservation{
		ID:         newID(),
		ResourceID: resourceID,
		Amount:     amount,
		CreatedAt:  l.clock.Now(),
	}

	err := l.repo.WithTx(ctx, func(txCtx context.Context) error {
		ok, err := l.repo.AddCapacityUsed(txCtx, resourceID, amount)
		if err != nil {
			return err
		}
		if !ok {
			// Distinguish a missing resource from a genuine shortfall.
			if _, err := l.repo.GetResource(txCtx, resourceID); err != nil {
				return err
			}
			return domain.ErrInsufficientCapacity
		}
		return l.repo.InsertReservation(txCtx, res)
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return res, nil
}

// Release gives back the capacity held by a token. Releasing a token that
// was already released is a no-op.
func (l *Ledger) Release(ctx context.Context, reservationID string) error {
	return l.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := l.repo.DeleteReservation(txCtx, reservationID)
		if err != nil {
			return err
		}
		if res == nil {
			return nil
		}
		return l.repo.SubtractCapacityUsed(txCtx, res.ResourceID, res.Amount)
	})
}

// CurrentRemaining is a non-locking snapshot for planning and dashboards.
// It never authorizes a reservation. A counter observed outside
// [0, capacity] escalates as ErrInvariantViolation.
func (l *Ledger) CurrentRemaining(ctx context.Context, resourceID string) (int64, error) {
	r, err := l.repo.GetResource(ctx, resourceID)
	if err != nil {
		return 0, err
	}
	if err := r.CheckInvariant(); err != nil {
		return 0, err
	}
	return r.Remaining(), nil
}
