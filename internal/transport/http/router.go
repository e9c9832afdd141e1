package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// RouterConfig bundles the handlers and middleware settings for the API.
type RouterConfig struct {
	Orders      *OrderHandler
	Fleet       *FleetHandler
	Admin       *AdminHandler
	Catalog     *CatalogHandler
	CORSOrigins []string
	Logger      *log.Logger
}

// NewRouter wires all endpoints. Destructive fleet operations go through
// the reallocation handler, never straight to the storage layer.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", HealthHandler)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", cfg.Orders.Create)
		r.Get("/{orderID}", cfg.Orders.Get)
		r.Post("/{orderID}/schedule", cfg.Orders.Schedule)
		r.Post("/{orderID}/cancel", cfg.Orders.Cancel)
	})

	r.Route("/fleet", func(r chi.Router) {
		r.Post("/rail-trips", cfg.Fleet.CreateRailTrip)
		r.Post("/road-schedules", cfg.Fleet.CreateRoadSchedule)
		r.Get("/resources", cfg.Fleet.ListResources)
		r.Delete("/resources/{resourceID}", cfg.Fleet.Remove)
		r.Patch("/resources/{resourceID}/capacity", cfg.Fleet.Shrink)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/stores", cfg.Admin.CreateStore)
		r.Get("/stores", cfg.Admin.ListStores)
		r.Post("/products", cfg.Admin.CreateProduct)
		r.Get("/products", cfg.Admin.ListProducts)
	})

	r.Get("/catalog/candidates", cfg.Catalog.Candidates)

	r.NotFound(NotFoundHandler())
	return r
}
