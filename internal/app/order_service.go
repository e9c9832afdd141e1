package app

import (
	"context"

	"github.com/veloway/freightline/internal/clock"
	"github.com/veloway/freightline/internal/domain"
)

type OrderRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateOrder(ctx context.Context, order domain.Order, lines []domain.OrderLine) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error)
	ListAllocationsByOrder(ctx context.Context, orderID string) ([]domain.Allocation, error)
	ProductExists(ctx context.Context, productID string) (bool, error)
}

// OrderService owns the CRUD side of orders. It never touches capacity;
// placement goes through the scheduler.
type OrderService struct {
	repo  OrderRepository
	clock clock.Clock
}

func NewOrderService(repo OrderRepository, clk clock.Clock) *OrderService {
	return &OrderService{repo: repo, clock: clk}
}

type OrderLineInput struct {
	ProductID string
	Quantity  int64
}

type CreateOrderInput struct {
	DestinationCity    string
	DestinationAddress string
	Lines              []OrderLineInput
}

// CreateOrder persists a new order in pending state.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (domain.Order, error) {
	if in.DestinationCity == "" {
		return domain.Order{}, domain.ErrDestinationRequired
	}
	if len(in.Lines) == 0 {
		return domain.Order{}, domain.ErrOrderLinesRequired
	}
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return domain.Order{}, domain.ErrInvalidQuantity
		}
		if line.ProductID == "" {
			return domain.Order{}, domain.ErrInvalidID
		}
	}

	order := domain.Order{
		ID:                 newID(),
		DestinationCity:    in.DestinationCity,
		DestinationAddress: in.DestinationAddress,
		Status:             domain.OrderStatusPending,
		OrderedAt:          s.clock.Now(),
	}
	lines := make([]domain.OrderLine, 0, len(in.Lines))
	for _, line := range in.Lines {
		lines = append(lines, domain.OrderLine{
			ID:        newID(),
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		for _, line := range lines {
			exists, err := s.repo.ProductExists(txCtx, line.ProductID)
			if err != nil {
				return err
			}
			if !exists {
				return domain.ErrProductNotFound
			}
		}
		return s.repo.CreateOrder(txCtx, order, lines)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// OrderDetail is an order with its lines and current allocations.
type OrderDetail struct {
	Order       domain.Order
	Lines       []domain.OrderLine
	Allocations []domain.Allocation
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (OrderDetail, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	lines, err := s.repo.GetOrderLines(ctx, orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	allocs, err := s.repo.ListAllocationsByOrder(ctx, orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{Order: order, Lines: lines, Allocations: allocs}, nil
}
