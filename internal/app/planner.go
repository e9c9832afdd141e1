package app

import (
	"context"

	"github.com/veloway/freightline/internal/domain"
)

const defaultMinSplitLoad = 1

// Planner covers an order's required load with candidate resources, greedy
// first-fit with split. It only proposes drafts; reserving is the
// scheduler's job.
type Planner struct {
	catalog      *Catalog
	minSplitLoad int64
}

func NewPlanner(catalog *Catalog, opts ...PlannerOption) *Planner {
	p := &Planner{
		catalog:      catalog,
		minSplitLoad: defaultMinSplitLoad,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type PlannerOption func(*Planner)

// WithMinSplitLoad sets the smallest slice of an order's load that may be
// placed on its own resource, guarding against micro-fragmentation.
func WithMinSplitLoad(units int64) PlannerOption {
	return func(p *Planner) {
		if units > 0 {
			p.minSplitLoad = units
		}
	}
}

// Plan selects drafts covering requiredLoad for both legs of the order's
// journey, walking chains in catalog order and candidates within a leg in
// (departure, id) order. The first hub whose chain fully covers every leg
// wins: all-or-nothing per leg, so a chain that covers road but falls short
// on rail contributes nothing. No chain covers -> ErrNoFeasibleResource.
func (p *Planner) Plan(ctx context.Context, order domain.Order, requiredLoad int64) ([]domain.AllocationDraft, error) {
	if requiredLoad <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if order.DestinationCity == "" {
		return nil, domain.ErrDestinationRequired
	}

	chains, err := p.catalog.Candidates(ctx, order.DestinationCity)
	if err != nil {
		return nil, err
	}

	for _, chain := range chains {
		drafts, ok := p.planChain(chain, requiredLoad)
		if ok {
			return drafts, nil
		}
	}
	return nil, domain.ErrNoFeasibleResource
}

// planChain covers both legs through one hub. Both legs carry the full
// cargo, so each must cover requiredLoad in full.
func (p *Planner) planChain(chain CandidateChain, requiredLoad int64) ([]domain.AllocationDraft, bool) {
	road, ok := p.coverLeg(chain.Road, domain.LegRoad, requiredLoad)
	if !ok {
		return nil, false
	}
	if chain.RoadOnly() {
		return road, true
	}

	rail, ok := p.coverLeg(chain.Rail, domain.LegRail, requiredLoad)
	if !ok {
		return nil, false
	}
	return append(rail, road...), true
}

// coverLeg walks candidates in order, taking min(remaining needed, candidate
// remaining) from each. Slices below the minimum split granularity are
// skipped unless they close out the remainder.
func (p *Planner) coverLeg(candidates []domain.Resource, leg domain.LegType, requiredLoad int64) ([]domain.AllocationDraft, bool) {
	var drafts []domain.AllocationDraft
	needed := requiredLoad

	for _, c := range candidates {
		if needed == 0 {
			break
		}
		take := c.Remaining()
		if take > needed {
			take = needed
		}
		if take <= 0 {
			continue
		}
		if take < p.minSplitLoad && take < needed {
			continue
		}
		drafts = append(drafts, domain.AllocationDraft{
			ResourceID: c.ID,
			LegType:    leg,
			Amount:     take,
		})
		needed -= take
	}

	if needed != 0 {
		return nil, false
	}
	return drafts, true
}
