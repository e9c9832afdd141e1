package app

import (
	"context"
	"sort"
	"time"

	"github.com/veloway/freightline/internal/clock"
	"github.com/veloway/freightline/internal/domain"
)

// CatalogRepository lists candidate resources. Implementations must return
// candidates already ordered by (departure, id) and filtered to live time
// windows with non-zero remaining capacity.
type CatalogRepository interface {
	ListHubs(ctx context.Context) ([]domain.Store, error)
	ListRoadCandidates(ctx context.Context, hubID, city string, after time.Time) ([]domain.Resource, error)
	ListRailCandidates(ctx context.Context, originCity, hubCity string, after time.Time) ([]domain.Resource, error)
	ListResources(ctx context.Context) ([]domain.Resource, error)
}

// CandidateChain is one feasible route to a destination: a hub, the rail
// trips that reach it from the origin, and the road schedules that leave it
// for the destination city. Rail is empty for the origin hub's own
// road-service area.
type CandidateChain struct {
	Hub  domain.Store
	Rail []domain.Resource
	Road []domain.Resource
}

// RoadOnly reports whether the chain needs no rail leg.
func (c CandidateChain) RoadOnly() bool {
	return len(c.Rail) == 0
}

// Catalog is the read side of the engine: best-effort snapshots of which
// trips could plausibly carry a shipment. Snapshots go stale between listing
// and reservation; the scheduler handles that with retry, not the catalog.
type Catalog struct {
	repo       CatalogRepository
	clock      clock.Clock
	originCity string
}

func NewCatalog(repo CatalogRepository, clk clock.Clock, originCity string) *Catalog {
	return &Catalog{repo: repo, clock: clk, originCity: originCity}
}

// Candidates returns feasible chains for a destination city, deterministically
// ordered: the origin hub's road-only chain first, then hubs by earliest rail
// departure, then hub ID. Two runs against identical data produce identical
// order.
func (c *Catalog) Candidates(ctx context.Context, destinationCity string) ([]CandidateChain, error) {
	now := c.clock.Now()

	hubs, err := c.repo.ListHubs(ctx)
	if err != nil {
		return nil, err
	}

	var chains []CandidateChain
	for _, hub := range hubs {
		road, err := c.repo.ListRoadCandidates(ctx, hub.ID, destinationCity, now)
		if err != nil {
			return nil, err
		}
		if len(road) == 0 {
			continue
		}

		chain := CandidateChain{Hub: hub, Road: road}
		if hub.City != c.originCity {
			rail, err := c.repo.ListRailCandidates(ctx, c.originCity, hub.City, now)
			if err != nil {
				return nil, err
			}
			if len(rail) == 0 {
				continue
			}
			chain.Rail = rail
		}
		chains = append(chains, chain)
	}

	sort.SliceStable(chains, func(i, j int) bool {
		a, b := chains[i], chains[j]
		if a.RoadOnly() != b.RoadOnly() {
			return a.RoadOnly()
		}
		if !a.RoadOnly() {
			da, db := a.Rail[0].Departure(), b.Rail[0].Departure()
			if !da.Equal(db) {
				return da.Before(db)
			}
		}
		return a.Hub.ID < b.Hub.ID
	})
	return chains, nil
}

// Utilization is a dashboard row: one resource with its committed share.
type Utilization struct {
	Resource domain.Resource
	Percent  float64
}

// UtilizationReport snapshots every resource. Read-only; invariant breaches
// surface instead of being smoothed over.
func (c *Catalog) UtilizationReport(ctx context.Context) ([]Utilization, error) {
	resources, err := c.repo.ListResources(ctx)
	if err != nil {
		return nil, err
	}

	report := make([]Utilization, 0, len(resources))
	for _, r := range resources {
		if err := r.CheckInvariant(); err != nil {
			return nil, err
		}
		u := Utilization{Resource: r}
		if r.Capacity > 0 {
			u.Percent = float64(r.CapacityUsed) / float64(r.Capacity) * 100
		}
		report = append(report, u)
	}
	return report, nil
}
