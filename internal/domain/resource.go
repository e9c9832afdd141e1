package domain

import "time"

// Store is a hub: the transfer point between the rail leg and the road leg.
type Store struct {
	ID   string
	Name string
	City string
}

type ResourceKind string

const (
	ResourceKindRail ResourceKind = "rail"
	ResourceKindRoad ResourceKind = "road"
)

// Resource is a capacity-bearing trip: a rail trip between hub cities or a
// road schedule departing a hub. Kind selects which of the kind-specific
// fields are meaningful; capacity behaves the same for both kinds.
type Resource struct {
	ID           string
	Kind         ResourceKind
	Capacity     int64
	CapacityUsed int64

	// Rail fields.
	OriginCity      string
	DestinationCity string
	Stops           []string
	DepartsAt       time.Time
	ArrivesAt       time.Time

	// Road fields.
	HubID       string
	City        string
	WindowStart time.Time
	WindowEnd   time.Time
}

// Remaining returns capacity not yet committed. It is a planning snapshot;
// only the ledger may authorize a reservation against it.
func (r Resource) Remaining() int64 {
	return r.Capacity - r.CapacityUsed
}

// Departure is the instant used for candidate ordering: departure time for
// rail trips, window start for road schedules.
func (r Resource) Departure() time.Time {
	if r.Kind == ResourceKindRoad {
		return r.WindowStart
	}
	return r.DepartsAt
}

// CheckInvariant verifies 0 <= capacity_used <= capacity. A violation means
// some writer bypassed the ledger.
func (r Resource) CheckInvariant() error {
	if r.CapacityUsed < 0 || r.CapacityUsed > r.Capacity {
		return ErrInvariantViolation
	}
	return nil
}
