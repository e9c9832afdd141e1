package postgres

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/veloway/freightline/internal/domain"
)

// resourceColumns is the canonical column list for resource scans. Apart
// from the hub reference, every column is NOT NULL with a zero-value
// default, so one scan covers both resource kinds.
const resourceColumns = `id, kind, capacity, capacity_used,
origin_city, destination_city, stops, departs_at, arrives_at,
COALESCE(hub_id::text, ''), city, window_start, window_end`

func scanResource(row pgx.Row) (domain.Resource, error) {
	var r domain.Resource
	var kind string
	err := row.Scan(
		&r.ID, &kind, &r.Capacity, &r.CapacityUsed,
		&r.OriginCity, &r.DestinationCity, &r.Stops, &r.DepartsAt, &r.ArrivesAt,
		&r.HubID, &r.City, &r.WindowStart, &r.WindowEnd,
	)
	if err != nil {
		return domain.Resource{}, err
	}
	r.Kind = domain.ResourceKind(kind)
	return r, nil
}

func collectResources(rows pgx.Rows) ([]domain.Resource, error) {
	defer rows.Close()

	var resources []domain.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, r)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate resources: %w", rows.Err())
	}
	return resources, nil
}
