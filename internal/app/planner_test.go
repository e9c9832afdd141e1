package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veloway/freightline/internal/clock"
	"github.com/veloway/freightline/internal/domain"
)

func TestPlanner_Plan(t *testing.T) {
	t.Parallel()

	order := domain.Order{ID: "order-1", DestinationCity: "Matara", Status: domain.OrderStatusPending}

	t.Run("splits a leg across resources when one cannot carry it all", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		hub := seedHub(t, eng.store, "hub-a", "Galle")
		seedRail(t, eng.store, "rail-1", testOrigin, "Galle", 150, testNow.Add(2*time.Hour))
		seedRail(t, eng.store, "rail-2", testOrigin, "Galle", 100, testNow.Add(3*time.Hour))
		seedRoad(t, eng.store, "road-1", hub.ID, "Matara", 300, testNow.Add(time.Hour))

		drafts, err := eng.planner.Plan(context.Background(), order, 200)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if len(drafts) != 3 {
			t.Fatalf("expected 3 drafts, got %d: %+v", len(drafts), drafts)
		}

		byResource := map[string]int64{}
		for _, d := range drafts {
			byResource[d.ResourceID] += d.Amount
		}
		if byResource["rail-1"] != 150 || byResource["rail-2"] != 50 {
			t.Fatalf("expected rail split 150/50, got %+v", byResource)
		}
		if byResource["road-1"] != 200 {
			t.Fatalf("expected road to carry the full 200, got %d", byResource["road-1"])
		}
	})

	t.Run("both legs carry the full load", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		hub := seedHub(t, eng.store, "hub-a", "Galle")
		seedRail(t, eng.store, "rail-1", testOrigin, "Galle", 100, testNow.Add(2*time.Hour))
		seedRoad(t, eng.store, "road-1", hub.ID, "Matara", 100, testNow.Add(time.Hour))

		drafts, err := eng.planner.Plan(context.Background(), order, 80)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		var rail, road int64
		for _, d := range drafts {
			switch d.LegType {
			case domain.LegRail:
				rail += d.Amount
			case domain.LegRoad:
				road += d.Amount
			}
		}
		if rail != 80 || road != 80 {
			t.Fatalf("expected 80 on each leg, got rail=%d road=%d", rail, road)
		}
	})

	t.Run("chain short on one leg contributes nothing", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		short := seedHub(t, eng.store, "hub-short", "Galle")
		full := seedHub(t, eng.store, "hub-full", "Jaffna")
		// First chain by rail departure, but its road leg cannot cover.
		seedRail(t, eng.store, "rail-short", testOrigin, "Galle", 200, testNow.Add(time.Hour))
		seedRoad(t, eng.store, "road-short", short.ID, "Matara", 50, testNow.Add(time.Hour))
		seedRail(t, eng.store, "rail-full", testOrigin, "Jaffna", 200, testNow.Add(2*time.Hour))
		seedRoad(t, eng.store, "road-full", full.ID, "Matara", 200, testNow.Add(time.Hour))

		drafts, err := eng.planner.Plan(context.Background(), order, 100)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		for _, d := range drafts {
			if d.ResourceID == "rail-short" || d.ResourceID == "road-short" {
				t.Fatalf("expected nothing taken from the short chain, got %+v", drafts)
			}
		}
	})

	t.Run("no chain covers returns ErrNoFeasibleResource", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		hub := seedHub(t, eng.store, "hub-a", "Galle")
		seedRail(t, eng.store, "rail-1", testOrigin, "Galle", 60, testNow.Add(2*time.Hour))
		seedRoad(t, eng.store, "road-1", hub.ID, "Matara", 60, testNow.Add(time.Hour))

		_, err := eng.planner.Plan(context.Background(), order, 100)
		if !errors.Is(err, domain.ErrNoFeasibleResource) {
			t.Fatalf("expected ErrNoFeasibleResource, got %v", err)
		}
	})

	t.Run("slices below the split granularity are skipped", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		hub := seedHub(t, eng.store, "hub-a", testOrigin)
		seedRoad(t, eng.store, "road-tiny", hub.ID, "Matara", 300, testNow.Add(time.Hour))
		seedRoad(t, eng.store, "road-big", hub.ID, "Matara", 200, testNow.Add(2*time.Hour))

		// road-tiny has 5 left after this reservation.
		if _, err := eng.ledger.Reserve(context.Background(), "road-tiny", 295); err != nil {
			t.Fatalf("reserve: %v", err)
		}

		planner := NewPlanner(eng.catalog, WithMinSplitLoad(10))
		drafts, err := planner.Plan(context.Background(), order, 100)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if len(drafts) != 1 {
			t.Fatalf("expected 1 draft, got %d: %+v", len(drafts), drafts)
		}
		if drafts[0].ResourceID != "road-big" || drafts[0].Amount != 100 {
			t.Fatalf("expected the full 100 on road-big, got %+v", drafts[0])
		}
	})

	t.Run("closing slice is taken even below the granularity", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		hub := seedHub(t, eng.store, "hub-a", testOrigin)
		seedRoad(t, eng.store, "road-1", hub.ID, "Matara", 95, testNow.Add(time.Hour))
		seedRoad(t, eng.store, "road-2", hub.ID, "Matara", 100, testNow.Add(2*time.Hour))

		planner := NewPlanner(eng.catalog, WithMinSplitLoad(10))
		drafts, err := planner.Plan(context.Background(), order, 100)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		byResource := map[string]int64{}
		for _, d := range drafts {
			byResource[d.ResourceID] += d.Amount
		}
		if byResource["road-1"] != 95 || byResource["road-2"] != 5 {
			t.Fatalf("expected 95/5 split, got %+v", byResource)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))

		if _, err := eng.planner.Plan(context.Background(), order, 0); !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
		noDest := domain.Order{ID: "order-2", Status: domain.OrderStatusPending}
		if _, err := eng.planner.Plan(context.Background(), noDest, 10); !errors.Is(err, domain.ErrDestinationRequired) {
			t.Fatalf("expected ErrDestinationRequired, got %v", err)
		}
	})
}
