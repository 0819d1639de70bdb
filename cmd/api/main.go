// cmd/api/main.go

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/adapter/storage"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/cache"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/config"
	boostDomain "github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/domain/boost"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/server"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/boost"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/discovery"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/geocode"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/navigation"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/position"
	"github.com/Entreprise-SHOPNET/SHOPNET-BACKEND-sub000/internal/service/recommend"
)

func main() {
	// Local development overrides; absent in production
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	// Initialize storage adapters
	listingStore := storage.NewListingStore(db)
	actorStore := storage.NewActorStore(db)
	boostStore := storage.NewBoostStore(db)
	enrichmentStore := storage.NewEnrichmentStore(db)
	recommendStore := storage.NewRecommendStore(db)
	routeStore := storage.NewRouteStore(db)

	// Result cache
	resultCache := cache.NewLRUCache(cfg.Cache.Size, time.Minute)

	// Reverse geocoder
	geocoder := initGeocoder(cfg.Geocode)

	// Live position index, warmed from the store below
	liveIndex := position.NewLiveIndex()

	// Initialize services
	positionService := position.NewService(
		actorStore,
		liveIndex,
		natsConn,
		geocoder,
		position.NewGeofenceRegistry(),
		position.Config{
			EventsTopic:  cfg.Position.EventsTopic,
			StoreTimeout: cfg.Position.StoreTimeout,
		},
	)
	if err := positionService.WarmIndex(ctx); err != nil {
		log.Fatalf("Failed to warm live position index: %v", err)
	}

	discoveryService := discovery.NewService(
		listingStore,
		actorStore,
		enrichmentStore,
		discovery.Config{
			QueryTimeout:        cfg.Discovery.QueryTimeout,
			EnrichTimeout:       cfg.Discovery.EnrichTimeout,
			MaxConcurrentEnrich: cfg.Discovery.MaxConcurrentEnrich,
			DefaultLimit:        cfg.Discovery.DefaultLimit,
		},
	)

	boostService := boost.NewService(
		boostStore,
		listingStore,
		liveIndex,
		natsConn,
		boost.Config{
			BasePrice:             cfg.Boost.BasePrice,
			VisibilityCoefficient: cfg.Boost.VisibilityCoefficient,
			PopularityDelta:       cfg.Boost.PopularityDelta,
			EventsTopic:           cfg.Boost.EventsTopic,
			StoreTimeout:          cfg.Boost.StoreTimeout,
		},
	)

	recommendService := recommend.NewService(
		recommendStore,
		listingStore,
		recommend.Config{
			RadiusKm:       cfg.Recommend.RadiusKm,
			TrendingWindow: cfg.Recommend.TrendingWindow,
			StoreTimeout:   cfg.Recommend.StoreTimeout,
		},
	)

	navigationService := navigation.NewService(
		routeStore,
		listingStore,
		actorStore,
		navigation.Config{
			StoreTimeout: cfg.Navigation.StoreTimeout,
		},
	)

	// Payment confirmations arrive over NATS and settle pending boosts
	paymentSub, err := subscribePayments(natsConn, cfg.Boost.PaymentsTopic, boostService)
	if err != nil {
		log.Fatalf("Failed to subscribe to payment confirmations: %v", err)
	}
	defer paymentSub.Unsubscribe()

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, cfg.Cache, server.Services{
		Discovery:  discoveryService,
		Position:   positionService,
		Boost:      boostService,
		Recommend:  recommendService,
		Navigation: navigationService,
		Cache:      resultCache,
	})

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// initGeocoder selects the Nominatim geocoder when a server is configured,
// otherwise the offline coordinate labeler.
func initGeocoder(cfg config.GeocodeConfig) geocode.Geocoder {
	if cfg.NominatimServer == "" {
		return geocode.Static{}
	}

	geocoder, err := geocode.NewNominatim(cfg.NominatimServer)
	if err != nil {
		log.Printf("Nominatim unavailable, falling back to offline geocoder: %v", err)
		return geocode.Static{}
	}
	return geocoder
}

// subscribePayments settles pending boosts from payment confirmation events.
func subscribePayments(nc *nats.Conn, topic string, svc *boost.Service) (*nats.Subscription, error) {
	return nc.Subscribe(topic, func(msg *nats.Msg) {
		var conf boostDomain.PaymentConfirmation
		if err := json.Unmarshal(msg.Data, &conf); err != nil {
			log.Printf("Malformed payment confirmation: %v", err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := svc.HandlePaymentConfirmation(ctx, conf); err != nil {
			log.Printf("Payment confirmation for boost %s failed: %v", conf.BoostID, err)
		}
	})
}
