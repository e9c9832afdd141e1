package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/veloway/freightline/internal/app"
	"github.com/veloway/freightline/internal/domain"
)

// FleetCreator creates rail trips and road schedules.
type FleetCreator interface {
	CreateRailTrip(ctx context.Context, in app.CreateRailTripInput) (domain.Resource, error)
	CreateRoadSchedule(ctx context.Context, in app.CreateRoadScheduleInput) (domain.Resource, error)
}

// FleetReallocator is the required integration contract for destructive
// fleet changes: removal and shrinking release held allocations first.
type FleetReallocator interface {
	OnResourceRemoved(ctx context.Context, resourceID string) (app.ReallocationReport, error)
	OnResourceShrunk(ctx context.Context, resourceID string, newCapacity int64) (app.ReallocationReport, error)
}

// UtilizationReporter is the read-only dashboard view.
type UtilizationReporter interface {
	UtilizationReport(ctx context.Context) ([]app.Utilization, error)
}

type FleetHandler struct {
	fleet       FleetCreator
	reallocator FleetReallocator
	reporter    UtilizationReporter
}

func NewFleetHandler(fleet FleetCreator, reallocator FleetReallocator, reporter UtilizationReporter) *FleetHandler {
	return &FleetHandler{fleet: fleet, reallocator: reallocator, reporter: reporter}
}

func (h *FleetHandler) CreateRailTrip(w http.ResponseWriter, r *http.Request) {
	var req createRailTripRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	res, err := h.fleet.CreateRailTrip(r.Context(), app.CreateRailTripInput{
		OriginCity:      req.OriginCity,
		DestinationCity: req.DestinationCity,
		Stops:           req.Stops,
		DepartsAt:       req.DepartsAt,
		ArrivesAt:       req.ArrivesAt,
		Capacity:        req.Capacity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resourceResponseFrom(res))
}

func (h *FleetHandler) CreateRoadSchedule(w http.ResponseWriter, r *http.Request) {
	var req createRoadScheduleRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	res, err := h.fleet.CreateRoadSchedule(r.Context(), app.CreateRoadScheduleInput{
		HubID:       req.HubID,
		City:        req.City,
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
		Capacity:    req.Capacity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resourceResponseFrom(res))
}

func (h *FleetHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	report, err := h.reporter.UtilizationReport(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]utilizationResponse, 0, len(report))
	for _, u := range report {
		resp = append(resp, utilizationResponse{
			resourceResponse: resourceResponseFrom(u.Resource),
			UtilizationPct:   u.Percent,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *FleetHandler) Remove(w http.ResponseWriter, r *http.Request) {
	report, err := h.reallocator.OnResourceRemoved(r.Context(), chi.URLParam(r, "resourceID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reallocationResponseFrom(report))
}

func (h *FleetHandler) Shrink(w http.ResponseWriter, r *http.Request) {
	var req shrinkResourceRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	report, err := h.reallocator.OnResourceShrunk(r.Context(), chi.URLParam(r, "resourceID"), req.Capacity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reallocationResponseFrom(report))
}

type createRailTripRequest struct {
	OriginCity      string    `json:"origin_city"`
	DestinationCity string    `json:"destination_city"`
	Stops           []string  `json:"stops"`
	DepartsAt       time.Time `json:"departs_at"`
	ArrivesAt       time.Time `json:"arrives_at"`
	Capacity        int64     `json:"capacity"`
}

type createRoadScheduleRequest struct {
	HubID       string    `json:"hub_id"`
	City        string    `json:"city"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Capacity    int64     `json:"capacity"`
}

type shrinkResourceRequest struct {
	Capacity int64 `json:"capacity"`
}

type resourceResponse struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	Capacity        int64     `json:"capacity"`
	CapacityUsed    int64     `json:"capacity_used"`
	OriginCity      string    `json:"origin_city,omitempty"`
	DestinationCity string    `json:"destination_city,omitempty"`
	Stops           []string  `json:"stops,omitempty"`
	DepartsAt       time.Time `json:"departs_at"`
	ArrivesAt       time.Time `json:"arrives_at"`
	HubID           string    `json:"hub_id,omitempty"`
	City            string    `json:"city,omitempty"`
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`
}

func resourceResponseFrom(res domain.Resource) resourceResponse {
	return resourceResponse{
		ID:              res.ID,
		Kind:            string(res.Kind),
		Capacity:        res.Capacity,
		CapacityUsed:    res.CapacityUsed,
		OriginCity:      res.OriginCity,
		DestinationCity: res.DestinationCity,
		Stops:           res.Stops,
		DepartsAt:       res.DepartsAt,
		ArrivesAt:       res.ArrivesAt,
		HubID:           res.HubID,
		City:            res.City,
		WindowStart:     res.WindowStart,
		WindowEnd:       res.WindowEnd,
	}
}

type utilizationResponse struct {
	resourceResponse
	UtilizationPct float64 `json:"utilization_pct"`
}

type reallocationResponse struct {
	ResourceID  string   `json:"resource_id"`
	Affected    []string `json:"affected_orders"`
	Rescheduled []string `json:"rescheduled_orders"`
	Unscheduled []string `json:"unscheduled_orders"`
}

func reallocationResponseFrom(report app.ReallocationReport) reallocationResponse {
	return reallocationResponse{
		ResourceID:  report.ResourceID,
		Affected:    report.Affected,
		Rescheduled: report.Rescheduled,
		Unscheduled: report.Unscheduled,
	}
}
