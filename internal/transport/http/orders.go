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

// OrderPlacer is the CRUD side of orders.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, in app.CreateOrderInput) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string) (app.OrderDetail, error)
}

// OrderScheduler commits capacity for a placed order.
type OrderScheduler interface {
	Schedule(ctx context.Context, orderID string) (app.ScheduleResult, error)
}

// OrderCanceller releases everything an order holds.
type OrderCanceller interface {
	CancelOrder(ctx context.Context, orderID string) (domain.Order, error)
}

type OrderHandler struct {
	orders    OrderPlacer
	scheduler OrderScheduler
	canceller OrderCanceller
}

func NewOrderHandler(orders OrderPlacer, scheduler OrderScheduler, canceller OrderCanceller) *OrderHandler {
	return &OrderHandler{orders: orders, scheduler: scheduler, canceller: canceller}
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}

	in := app.CreateOrderInput{
		DestinationCity:    req.DestinationCity,
		DestinationAddress: req.DestinationAddress,
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, app.OrderLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(orderResponseFrom(order))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := orderDetailResponse{
		orderResponse: orderResponseFrom(detail.Order),
	}
	for _, line := range detail.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	resp.Allocations = allocationResponsesFrom(detail.Allocations)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	result, err := h.scheduler.Schedule(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := scheduleResponse{
		orderResponse: orderResponseFrom(result.Order),
		Allocations:   allocationResponsesFrom(result.Allocations),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.canceller.CancelOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(orderResponseFrom(order))
}

type orderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type createOrderRequest struct {
	DestinationCity    string             `json:"destination_city"`
	DestinationAddress string             `json:"destination_address"`
	Lines              []orderLineRequest `json:"lines"`
}

type orderResponse struct {
	ID                 string    `json:"id"`
	DestinationCity    string    `json:"destination_city"`
	DestinationAddress string    `json:"destination_address"`
	Status             string    `json:"status"`
	OrderedAt          time.Time `json:"ordered_at"`
}

func orderResponseFrom(order domain.Order) orderResponse {
	return orderResponse{
		ID:                 order.ID,
		DestinationCity:    order.DestinationCity,
		DestinationAddress: order.DestinationAddress,
		Status:             string(order.Status),
		OrderedAt:          order.OrderedAt,
	}
}

type orderLineResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type allocationResponse struct {
	ID             string `json:"id"`
	ResourceID     string `json:"resource_id"`
	LegType        string `json:"leg_type"`
	ReservedAmount int64  `json:"reserved_amount"`
}

func allocationResponsesFrom(allocs []domain.Allocation) []allocationResponse {
	out := make([]allocationResponse, 0, len(allocs))
	for _, a := range allocs {
		out = append(out, allocationResponse{
			ID:             a.ID,
			ResourceID:     a.ResourceID,
			LegType:        string(a.LegType),
			ReservedAmount: a.ReservedAmount,
		})
	}
	return out
}

type orderDetailResponse struct {
	orderResponse
	Lines       []orderLineResponse  `json:"lines"`
	Allocations []allocationResponse `json:"allocations"`
}

type scheduleResponse struct {
	orderResponse
	Allocations []allocationResponse `json:"allocations"`
}
