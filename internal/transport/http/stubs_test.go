package http

import (
	"context"
	"io"
	"log"
	"net/http"
	"testing"

	"github.com/veloway/freightline/internal/app"
	"github.com/veloway/freightline/internal/domain"
)

type stubOrders struct {
	order  domain.Order
	detail app.OrderDetail
	err    error
}

func (s *stubOrders) CreateOrder(context.Context, app.CreateOrderInput) (domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrders) GetOrder(context.Context, string) (app.OrderDetail, error) {
	return s.detail, s.err
}

type stubScheduler struct {
	result app.ScheduleResult
	err    error
}

func (s *stubScheduler) Schedule(context.Context, string) (app.ScheduleResult, error) {
	return s.result, s.err
}

type stubCanceller struct {
	order domain.Order
	err   error
}

func (s *stubCanceller) CancelOrder(context.Context, string) (domain.Order, error) {
	return s.order, s.err
}

type stubFleet struct {
	resource domain.Resource
	err      error
}

func (s *stubFleet) CreateRailTrip(context.Context, app.CreateRailTripInput) (domain.Resource, error) {
	return s.resource, s.err
}

func (s *stubFleet) CreateRoadSchedule(context.Context, app.CreateRoadScheduleInput) (domain.Resource, error) {
	return s.resource, s.err
}

type stubReallocator struct {
	report app.ReallocationReport
	err    error
}

func (s *stubReallocator) OnResourceRemoved(context.Context, string) (app.ReallocationReport, error) {
	return s.report, s.err
}

func (s *stubReallocator) OnResourceShrunk(context.Context, string, int64) (app.ReallocationReport, error) {
	return s.report, s.err
}

type stubReporter struct {
	report []app.Utilization
	err    error
}

func (s *stubReporter) UtilizationReport(context.Context) ([]app.Utilization, error) {
	return s.report, s.err
}

type stubStoreAdmin struct {
	store  domain.Store
	stores []domain.Store
	err    error
}

func (s *stubStoreAdmin) CreateStore(context.Context, app.CreateStoreInput) (domain.Store, error) {
	return s.store, s.err
}

func (s *stubStoreAdmin) ListStores(context.Context) ([]domain.Store, error) {
	return s.stores, s.err
}

type stubProductAdmin struct {
	product  domain.Product
	products []domain.Product
	err      error
}

func (s *stubProductAdmin) CreateProduct(context.Context, app.CreateProductInput) (domain.Product, error) {
	return s.product, s.err
}

func (s *stubProductAdmin) ListProducts(context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

type stubCatalog struct {
	chains []app.CandidateChain
	err    error
}

func (s *stubCatalog) Candidates(context.Context, string) ([]app.CandidateChain, error) {
	return s.chains, s.err
}

// routerStubs carries one stub per handler dependency; newTestRouter fills
// in any left nil.
type routerStubs struct {
	orders      *stubOrders
	scheduler   *stubScheduler
	canceller   *stubCanceller
	fleet       *stubFleet
	reallocator *stubReallocator
	reporter    *stubReporter
	stores      *stubStoreAdmin
	products    *stubProductAdmin
	catalog     *stubCatalog
	origins     []string
}

func newTestRouter(t *testing.T, stubs routerStubs) http.Handler {
	t.Helper()
	if stubs.orders == nil {
		stubs.orders = &stubOrders{}
	}
	if stubs.scheduler == nil {
		stubs.scheduler = &stubScheduler{}
	}
	if stubs.canceller == nil {
		stubs.canceller = &stubCanceller{}
	}
	if stubs.fleet == nil {
		stubs.fleet = &stubFleet{}
	}
	if stubs.reallocator == nil {
		stubs.reallocator = &stubReallocator{}
	}
	if stubs.reporter == nil {
		stubs.reporter = &stubReporter{}
	}
	if stubs.stores == nil {
		stubs.stores = &stubStoreAdmin{}
	}
	if stubs.products == nil {
		stubs.products = &stubProductAdmin{}
	}
	if stubs.catalog == nil {
		stubs.catalog = &stubCatalog{}
	}

	return NewRouter(RouterConfig{
		Orders:      NewOrderHandler(stubs.orders, stubs.scheduler, stubs.canceller),
		Fleet:       NewFleetHandler(stubs.fleet, stubs.reallocator, stubs.reporter),
		Admin:       NewAdminHandler(stubs.stores, stubs.products),
		Catalog:     NewCatalogHandler(stubs.catalog),
		CORSOrigins: stubs.origins,
		Logger:      log.New(io.Discard, "", 0),
	})
}
