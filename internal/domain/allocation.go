package domain

import "time"

type LegType string

const (
	LegRail LegType = "rail"
	LegRoad LegType = "road"
)

// Reservation is a ledger token: proof that Amount was committed on a
// resource. Releasing a token is idempotent; the row exists exactly as long
// as the capacity is held.
type Reservation struct {
	ID         string
	ResourceID string
	Amount     int64
	CreatedAt  time.Time
}

// Allocation durably links an order to capacity reserved on one resource
// for one leg. An order holds several allocations when its cargo is split
// across resources or chained over rail and road legs.
type Allocation struct {
	ID             string
	OrderID        string
	ResourceID     string
	ReservationID  string
	LegType        LegType
	ReservedAmount int64
	CreatedAt      time.Time
}

// AllocationDraft is a planner proposal: reserve Amount on ResourceID for
// LegType. Drafts carry no authority; only a committed reservation does.
type AllocationDraft struct {
	ResourceID string
	LegType    LegType
	Amount     int64
}
