package app

import (
	"context"
	"time"

	"github.com/veloway/freightline/internal/clock"
	"github.com/veloway/freightline/internal/domain"
)

type FleetRepository interface {
	CreateResource(ctx context.Context, res domain.Resource) error
	StoreExists(ctx context.Context, storeID string) (bool, error)
}

// FleetService creates rail trips and road schedules. Removal and shrinking
// are deliberately not here: they go through the reallocator so held
// allocations are released first.
type FleetService struct {
	repo  FleetRepository
	clock clock.Clock
}

func NewFleetService(repo FleetRepository, clk clock.Clock) *FleetService {
	return &FleetService{repo: repo, clock: clk}
}

type CreateRailTripInput struct {
	OriginCity      string
	DestinationCity string
	Stops           []string
	DepartsAt       time.Time
	ArrivesAt       time.Time
	Capacity        int64
}

func (s *FleetService) CreateRailTrip(ctx context.Context, in CreateRailTripInput) (domain.Resource, error) {
	if in.OriginCity == "" || in.DestinationCity == "" {
		return domain.Resource{}, domain.ErrCityRequired
	}
	if in.Capacity <= 0 {
		return domain.Resource{}, domain.ErrInvalidCapacity
	}
	if !in.ArrivesAt.After(in.DepartsAt) {
		return domain.Resource{}, domain.ErrInvalidTimeWindow
	}

	res := domain.Resource{
		ID:              newID(),
		Kind:            domain.ResourceKindRail,
		Capacity:        in.Capacity,
		OriginCity:      in.OriginCity,
		DestinationCity: in.DestinationCity,
		Stops:           in.Stops,
		DepartsAt:       in.DepartsAt,
		ArrivesAt:       in.ArrivesAt,
	}
	if err := s.repo.CreateResource(ctx, res); err != nil {
		return domain.Resource{}, err
	}
	return res, nil
}

type CreateRoadScheduleInput struct {
	HubID       string
	City        string
	WindowStart time.Time
	WindowEnd   time.Time
	Capacity    int64
}

func (s *FleetService) CreateRoadSchedule(ctx context.Context, in CreateRoadScheduleInput) (domain.Resource, error) {
	if in.HubID == "" {
		return domain.Resource{}, domain.ErrInvalidID
	}
	if in.City == "" {
		return domain.Resource{}, domain.ErrCityRequired
	}
	if in.Capacity <= 0 {
		return domain.Resource{}, domain.ErrInvalidCapacity
	}
	if !in.WindowEnd.After(in.WindowStart) {
		return domain.Resource{}, domain.ErrInvalidTimeWindow
	}

	exists, err := s.repo.StoreExists(ctx, in.HubID)
	if err != nil {
		return domain.Resource{}, err
	}
	if !exists {
		return domain.Resource{}, domain.ErrStoreNotFound
	}

	res := domain.Resource{
		ID:          newID(),
		Kind:        domain.ResourceKindRoad,
		Capacity:    in.Capacity,
		HubID:       in.HubID,
		City:        in.City,
		WindowStart: in.WindowStart,
		WindowEnd:   in.WindowEnd,
	}
	if err := s.repo.CreateResource(ctx, res); err != nil {
		return domain.Resource{}, err
	}
	return res, nil
}
