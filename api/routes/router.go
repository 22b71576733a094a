package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trolleyhq/trolley-backend/api/controllers"
	"github.com/trolleyhq/trolley-backend/api/middleware"
	"github.com/trolleyhq/trolley-backend/internal/enrich"
	"github.com/trolleyhq/trolley-backend/internal/item"
	"github.com/trolleyhq/trolley-backend/internal/layout"
	"github.com/trolleyhq/trolley-backend/internal/listing"
	"github.com/trolleyhq/trolley-backend/internal/shop"
	"github.com/trolleyhq/trolley-backend/pkg/config"
	"github.com/trolleyhq/trolley-backend/pkg/logger"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	KV         controllers.Pinger
	Listing    listing.Service
	Items      item.Service
	Completion shop.CompletionService
	History    shop.HistoryService
	Enrichment enrich.Service
	Layout     layout.Service
	Metrics    prometheus.Gatherer
}

// NewRouter wires the HTTP surface.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
		middleware.Owner(p.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.KV))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ListItems(p.Listing, p.Logger))
			r.Post("/", controllers.CreateItem(p.Items, p.Logger))
			r.Patch("/{itemId}", controllers.UpdateItem(p.Items, p.Logger))
			r.Delete("/{itemId}", controllers.DeleteItem(p.Items, p.Logger))
		})

		r.Route("/shops", func(r chi.Router) {
			r.Post("/complete", controllers.CompleteShop(p.Completion, p.Logger))
			r.Get("/", controllers.ListShops(p.History, p.Logger))
			r.Get("/{shopId}", controllers.GetShop(p.History, p.Logger))
			r.Delete("/{shopId}", controllers.DeleteShop(p.History, p.Logger))
		})

		r.Route("/enrichment", func(r chi.Router) {
			r.Post("/recategorize", controllers.Recategorize(p.Enrichment, p.Logger, p.Config.Completion.BulkCallTimeout))
			r.Post("/reprice", controllers.Reprice(p.Enrichment, p.Logger, p.Config.Completion.BulkCallTimeout))
		})

		r.Route("/layout", func(r chi.Router) {
			r.Get("/", controllers.GetLayout(p.Layout, p.Logger))
			r.Put("/", controllers.SaveLayout(p.Layout, p.Logger))
		})
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Metrics, promhttp.HandlerOpts{}))
	}

	return r
}
