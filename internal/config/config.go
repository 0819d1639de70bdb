// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Cache       CacheConfig
	Geo         GeoConfig
	Discovery   DiscoveryConfig
	Position    PositionConfig
	Boost       BoostConfig
	Recommend   RecommendConfig
	Navigation  NavigationConfig
	Geocode     GeocodeConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// CacheConfig holds the per-endpoint result cache TTLs. Short TTLs: stale
// positions make stale answers, so nothing lives longer than a minute.
type CacheConfig struct {
	Size               int
	NearbyProductsTTL  time.Duration
	NewProductsTTL     time.Duration
	NearbySellersTTL   time.Duration
	NearbyBuyersTTL    time.Duration
	AreaStatsTTL       time.Duration
	RecommendationsTTL time.Duration
}

// GeoConfig holds geospatial defaults and limits
type GeoConfig struct {
	DefaultRadiusKm float64
	MinRadiusKm     float64
	MaxRadiusKm     float64
}

// DiscoveryConfig holds proximity search configuration
type DiscoveryConfig struct {
	QueryTimeout        time.Duration
	EnrichTimeout       time.Duration
	MaxConcurrentEnrich int
	DefaultLimit        int
}

// PositionConfig holds position ingestion configuration
type PositionConfig struct {
	EventsTopic  string
	StoreTimeout time.Duration
}

// BoostConfig holds geo-boost pricing configuration
type BoostConfig struct {
	BasePrice             float64
	VisibilityCoefficient float64
	PopularityDelta       float64
	EventsTopic           string
	PaymentsTopic         string
	StoreTimeout          time.Duration
}

// RecommendConfig holds recommendation composer configuration
type RecommendConfig struct {
	RadiusKm       float64
	TrendingWindow time.Duration
	StoreTimeout   time.Duration
}

// NavigationConfig holds navigation estimate configuration
type NavigationConfig struct {
	StoreTimeout time.Duration
}

// GeocodeConfig holds reverse geocoding configuration. An empty server URL
// selects the offline coordinate-label geocoder.
type GeocodeConfig struct {
	NominatimServer string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "shopnet"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Cache: CacheConfig{
			Size:               getEnvAsInt("CACHE_SIZE", 4096),
			NearbyProductsTTL:  getEnvAsDuration("CACHE_NEARBY_PRODUCTS_TTL", 30*time.Second),
			NewProductsTTL:     getEnvAsDuration("CACHE_NEW_PRODUCTS_TTL", 60*time.Second),
			NearbySellersTTL:   getEnvAsDuration("CACHE_NEARBY_SELLERS_TTL", 45*time.Second),
			NearbyBuyersTTL:    getEnvAsDuration("CACHE_NEARBY_BUYERS_TTL", 45*time.Second),
			AreaStatsTTL:       getEnvAsDuration("CACHE_AREA_STATS_TTL", 60*time.Second),
			RecommendationsTTL: getEnvAsDuration("CACHE_RECOMMENDATIONS_TTL", 30*time.Second),
		},
		Geo: GeoConfig{
			DefaultRadiusKm: getEnvAsFloat("GEO_DEFAULT_RADIUS_KM", 10.0),
			MinRadiusKm:     getEnvAsFloat("GEO_MIN_RADIUS_KM", 0.1),
			MaxRadiusKm:     getEnvAsFloat("GEO_MAX_RADIUS_KM", 100.0),
		},
		Discovery: DiscoveryConfig{
			QueryTimeout:        getEnvAsDuration("DISCOVERY_QUERY_TIMEOUT", 5*time.Second),
			EnrichTimeout:       getEnvAsDuration("DISCOVERY_ENRICH_TIMEOUT", 2*time.Second),
			MaxConcurrentEnrich: getEnvAsInt("DISCOVERY_MAX_CONCURRENT_ENRICH", 8),
			DefaultLimit:        getEnvAsInt("DISCOVERY_DEFAULT_LIMIT", 20),
		},
		Position: PositionConfig{
			EventsTopic:  getEnv("POSITION_EVENTS_TOPIC", "position"),
			StoreTimeout: getEnvAsDuration("POSITION_STORE_TIMEOUT", 3*time.Second),
		},
		Boost: BoostConfig{
			BasePrice:             getEnvAsFloat("BOOST_BASE_PRICE", 10.0),
			VisibilityCoefficient: getEnvAsFloat("BOOST_VISIBILITY_COEFFICIENT", 0.3),
			PopularityDelta:       getEnvAsFloat("BOOST_POPULARITY_DELTA", 10.0),
			EventsTopic:           getEnv("BOOST_EVENTS_TOPIC", "boost"),
			PaymentsTopic:         getEnv("BOOST_PAYMENTS_TOPIC", "payments.boost.confirmed"),
			StoreTimeout:          getEnvAsDuration("BOOST_STORE_TIMEOUT", 3*time.Second),
		},
		Recommend: RecommendConfig{
			RadiusKm:       getEnvAsFloat("RECOMMEND_RADIUS_KM", 10.0),
			TrendingWindow: getEnvAsDuration("RECOMMEND_TRENDING_WINDOW", 7*24*time.Hour),
			StoreTimeout:   getEnvAsDuration("RECOMMEND_STORE_TIMEOUT", 4*time.Second),
		},
		Navigation: NavigationConfig{
			StoreTimeout: getEnvAsDuration("NAVIGATION_STORE_TIMEOUT", 3*time.Second),
		},
		Geocode: GeocodeConfig{
			NominatimServer: getEnv("GEOCODE_NOMINATIM_SERVER", ""),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Geo.MinRadiusKm <= 0 || config.Geo.MaxRadiusKm <= config.Geo.MinRadiusKm {
		return fmt.Errorf("geo radius limits are inconsistent: min=%.2f max=%.2f",
			config.Geo.MinRadiusKm, config.Geo.MaxRadiusKm)
	}
	if config.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
