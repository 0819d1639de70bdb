// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/cache"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/config"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/server/handlers"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/boost"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/discovery"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/navigation"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/position"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/recommend"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// Services groups the handler dependencies wired at startup
type Services struct {
	Discovery  *discovery.Service
	Position   *position.Service
	Boost      *boost.Service
	Recommend  *recommend.Service
	Navigation *navigation.Service
	Cache      cache.ResultCache
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, cacheCfg config.CacheConfig, svc Services) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	discoveryHandler := handlers.NewDiscoveryHandler(svc.Discovery, svc.Cache, cacheCfg)
	positionHandler := handlers.NewPositionHandler(svc.Position)
	boostHandler := handlers.NewBoostHandler(svc.Boost)
	recommendHandler := handlers.NewRecommendHandler(svc.Recommend, svc.Cache, cacheCfg)
	navigationHandler := handlers.NewNavigationHandler(svc.Navigation)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Post("/update-position", positionHandler.UpdatePosition)
			r.Post("/precise-location", positionHandler.PreciseLocation)

			r.Post("/nearby-products", discoveryHandler.NearbyProducts)
			r.Post("/new-products-nearby", discoveryHandler.NewProductsNearby)
			r.Post("/nearby-sellers", discoveryHandler.NearbySellers)
			r.Post("/nearby-buyers", discoveryHandler.NearbyBuyers)
			r.Post("/area-stats", discoveryHandler.AreaStats)

			r.Post("/navigation", navigationHandler.Navigate)
			r.Post("/geo-boost", boostHandler.GeoBoost)
			r.Post("/personalized-recommendations", recommendHandler.PersonalizedRecommendations)
		})
	})

	// Unknown routes still answer with the error envelope
	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Router exposes the route table, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
