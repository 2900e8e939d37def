// Package server assembles the admin HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	catHandler "github.com/fekuna/omnipos-admin-service/internal/category/handler"
	custHandler "github.com/fekuna/omnipos-admin-service/internal/customer/handler"
	"github.com/fekuna/omnipos-admin-service/internal/dashboard"
	"github.com/fekuna/omnipos-admin-service/internal/importer"
	orderHandler "github.com/fekuna/omnipos-admin-service/internal/order/handler"
	"github.com/fekuna/omnipos-admin-service/internal/preference"
	prodHandler "github.com/fekuna/omnipos-admin-service/internal/product/handler"
	"github.com/fekuna/omnipos-admin-service/pkg/logger"
)

// Pinger reports whether a backing service is reachable.
type Pinger func(r *http.Request) error

type Deps struct {
	Categories  *catHandler.CategoryHandler
	Products    *prodHandler.ProductHandler
	Orders      *orderHandler.OrderHandler
	Customers   *custHandler.CustomerHandler
	Importer    *importer.Importer
	Preferences preference.Store
	Dashboard   *dashboard.Service
	Health      map[string]Pinger
	Logger      logger.ZapLogger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(d.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthz(d.Health))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Route("/categories", d.Categories.Routes)
		r.Route("/products", d.Products.Routes)
		r.Route("/orders", d.Orders.Routes)
		r.Route("/customers", d.Customers.Routes)

		imp := &importHandler{importer: d.Importer, logger: d.Logger}
		r.Post("/import/{kind}", imp.Import)

		prefs := &preferenceHandler{store: d.Preferences, logger: d.Logger}
		r.Get("/preferences/{key}", prefs.Get)
		r.Put("/preferences/{key}", prefs.Put)

		dash := &dashboardHandler{svc: d.Dashboard, logger: d.Logger}
		r.Get("/dashboard", dash.Get)
	})
	return r
}

func requestLogger(log logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug("http request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("took", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
