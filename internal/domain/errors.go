package domain

import "errors"

var (
	// Engine failures. InsufficientCapacity and Conflict are handled inside
	// the scheduler; the rest surface to callers as typed results.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrConflict             = errors.New("allocation conflict")
	ErrExhaustedRetries     = errors.New("allocation retries exhausted")
	ErrNoFeasibleResource   = errors.New("no feasible resource")

	// ErrInvariantViolation means capacity_used was observed outside
	// [0, capacity] on a read path. It indicates a writer bypassed the
	// ledger and is never silently corrected.
	ErrInvariantViolation = errors.New("capacity invariant violated")

	ErrStoreNotFound       = errors.New("store not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrOrderCancelled      = errors.New("order is cancelled")
	ErrOrderNotSchedulable = errors.New("order is not in a schedulable state")

	ErrInvalidID           = errors.New("invalid id")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCapacity     = errors.New("invalid capacity")
	ErrInvalidUnitLoad     = errors.New("invalid unit load")
	ErrInvalidTimeWindow   = errors.New("invalid time window")
	ErrNameRequired        = errors.New("name required")
	ErrCityRequired        = errors.New("city required")
	ErrDestinationRequired = errors.New("destination required")
	ErrOrderLinesRequired  = errors.New("order lines required")
)
