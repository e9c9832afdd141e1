package app

import (
	"context"
	"testing"
	"time"

	"github.com/veloway/freightline/internal/clock"
)

func TestCatalog_Candidates(t *testing.T) {
	t.Parallel()

	t.Run("origin hub chain comes first and carries no rail leg", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		origin := seedHub(t, eng.store, "hub-origin", testOrigin)
		remote := seedHub(t, eng.store, "hub-colombo", "Colombo")
		seedRoad(t, eng.store, "road-origin", origin.ID, "Peradeniya", 50, testNow.Add(time.Hour))
		seedRoad(t, eng.store, "road-colombo", remote.ID, "Peradeniya", 50, testNow.Add(time.Hour))
		seedRail(t, eng.store, "rail-1", testOrigin, "Colombo", 100, testNow.Add(2*time.Hour))

		chains, err := eng.catalog.Candidates(context.Background(), "Peradeniya")
		if err != nil {
			t.Fatalf("candidates: %v", err)
		}
		if len(chains) != 2 {
			t.Fatalf("expected 2 chains, got %d", len(chains))
		}
		if !chains[0].RoadOnly() {
			t.Fatalf("expected first chain road-only")
		}
		if chains[0].Hub.ID != origin.ID {
			t.Fatalf("expected origin hub first, got %s", chains[0].Hub.ID)
		}
		if chains[1].RoadOnly() {
			t.Fatalf("expected second chain to carry a rail leg")
		}
		if len(chains[1].Rail) != 1 || chains[1].Rail[0].ID != "rail-1" {
			t.Fatalf("unexpected rail leg: %+v", chains[1].Rail)
		}
	})

	t.Run("remote hubs ordered by earliest rail departure then hub ID", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		a := seedHub(t, eng.store, "hub-a", "Galle")
		b := seedHub(t, eng.store, "hub-b", "Jaffna")
		seedRoad(t, eng.store, "road-a", a.ID, "Matara", 50, testNow.Add(time.Hour))
		seedRoad(t, eng.store, "road-b", b.ID, "Matara", 50, testNow.Add(time.Hour))
		seedRail(t, eng.store, "rail-late", testOrigin, "Galle", 100, testNow.Add(5*time.Hour))
		seedRail(t, eng.store, "rail-early", testOrigin, "Jaffna", 100, testNow.Add(time.Hour))

		chains, err := eng.catalog.Candidates(context.Background(), "Matara")
		if err != nil {
			t.Fatalf("candidates: %v", err)
		}
		if len(chains) != 2 {
			t.Fatalf("expected 2 chains, got %d", len(chains))
		}
		if chains[0].Hub.ID != b.ID {
			t.Fatalf("expected hub with earlier rail departure first, got %s", chains[0].Hub.ID)
		}
	})

	t.Run("hub without road service to the destination is skipped", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		hub := seedHub(t, eng.store, "hub-a", "Galle")
		seedRail(t, eng.store, "rail-1", testOrigin, "Galle", 100, testNow.Add(2*time.Hour))
		seedRoad(t, eng.store, "road-elsewhere", hub.ID, "Hambantota", 50, testNow.Add(time.Hour))

		chains, err := eng.catalog.Candidates(context.Background(), "Matara")
		if err != nil {
			t.Fatalf("candidates: %v", err)
		}
		if len(chains) != 0 {
			t.Fatalf("expected no chains, got %d", len(chains))
		}
	})

	t.Run("remote hub without inbound rail is skipped", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		hub := seedHub(t, eng.store, "hub-a", "Galle")
		seedRoad(t, eng.store, "road-a", hub.ID, "Matara", 50, testNow.Add(time.Hour))

		chains, err := eng.catalog.Candidates(context.Background(), "Matara")
		if err != nil {
			t.Fatalf("candidates: %v", err)
		}
		if len(chains) != 0 {
			t.Fatalf("expected no chains, got %d", len(chains))
		}
	})

	t.Run("rail trip stopping at the hub city qualifies", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		hub := seedHub(t, eng.store, "hub-a", "Galle")
		seedRoad(t, eng.store, "road-a", hub.ID, "Matara", 50, testNow.Add(time.Hour))
		rail := seedRail(t, eng.store, "rail-1", testOrigin, "Hambantota", 100, testNow.Add(2*time.Hour))
		rail.Stops = []string{"Galle"}
		if err := eng.store.CreateResource(context.Background(), rail); err != nil {
			t.Fatalf("update rail: %v", err)
		}

		chains, err := eng.catalog.Candidates(context.Background(), "Matara")
		if err != nil {
			t.Fatalf("candidates: %v", err)
		}
		if len(chains) != 1 {
			t.Fatalf("expected 1 chain, got %d", len(chains))
		}
	})

	t.Run("departed trips and exhausted resources are filtered", func(t *testing.T) {
		eng := newEngine(t, clock.NewFixed(testNow))
		hub := seedHub(t, eng.store, "hub-a", "Galle")
		seedRoad(t, eng.store, "road-past", hub.ID, "Matara", 50, testNow.Add(-24*time.Hour))
		full := seedRoad(t, eng.store, "road-full", hub.ID, "Matara", 50, testNow.Add(time.Hour))
		seedRail(t, eng.store, "rail-1", testOrigin, "Galle", 100, testNow.Add(2*time.Hour))

		if _, err := eng.ledger.Reserve(context.Background(), full.ID, 50); err != nil {
			t.Fatalf("reserve: %v", err)
		}

		chains, err := eng.catalog.Candidates(context.Background(), "Matara")
		if err != nil {
			t.Fatalf("candidates: %v", err)
		}
		if len(chains) != 0 {
			t.Fatalf("expected no chains, got %d", len(chains))
		}
	})
}

func TestCatalog_UtilizationReport(t *testing.T) {
	t.Parallel()

	eng := newEngine(t, clock.NewFixed(testNow))
	seedRail(t, eng.store, "rail-1", testOrigin, "Colombo", 200, testNow.Add(2*time.Hour))
	if _, err := eng.ledger.Reserve(context.Background(), "rail-1", 50); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	report, err := eng.catalog.UtilizationReport(context.Background())
	if err != nil {
		t.Fatalf("utilization report: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report))
	}
	if report[0].Percent != 25 {
		t.Fatalf("expected 25%% utilization, got %v", report[0].Percent)
	}
}
