package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Typesense      TypesenseConfig
	Recommendation RecommendationConfig
	OTEL           OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// RecommendationConfig holds the tunables of the scoring and
// recommendation engine. The numeric boundaries here (wide-search
// threshold, weight split, boost ranges) are configuration, not
// invariants.
type RecommendationConfig struct {
	// WideSearchThresholdKm separates constrained searches from
	// unbounded ones; at or above it the distance factor is
	// normalized against the candidate set instead of the radius.
	WideSearchThresholdKm float64

	// Weight split between semantic relevance and distance for the
	// two search regimes.
	ConstrainedRelevanceWeight float64
	ConstrainedDistanceWeight  float64
	WideRelevanceWeight        float64
	WideDistanceWeight         float64

	// Collaborative filtering.
	NeighborLimit       int
	MinInteractions     int
	SimilarityThreshold float64

	// Preference aggregation decay.
	PreferenceHalfLifeDays float64

	// Trending decay: counters halve every TrendHalfLifeHours and
	// are hidden below TrendPruneThreshold.
	TrendHalfLifeHours  float64
	TrendPruneThreshold float64

	// Boost ranges. Neutral is always 1.0.
	HistoryBoostMin       float64
	HistoryBoostMax       float64
	CollaborativeBoostMax float64
	ReasonThreshold       float64

	// Operational limits.
	StoreTimeoutSeconds     int
	InteractionTTLDays      int
	NeighborCacheTTLMinutes int
	WeatherCacheTTLMinutes  int
	TrackQueueSize          int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "business_discovery"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Recommendation: RecommendationConfig{
			WideSearchThresholdKm:      getEnvAsFloat("RECO_WIDE_SEARCH_THRESHOLD_KM", 10000),
			ConstrainedRelevanceWeight: getEnvAsFloat("RECO_CONSTRAINED_RELEVANCE_WEIGHT", 0.7),
			ConstrainedDistanceWeight:  getEnvAsFloat("RECO_CONSTRAINED_DISTANCE_WEIGHT", 0.3),
			WideRelevanceWeight:        getEnvAsFloat("RECO_WIDE_RELEVANCE_WEIGHT", 0.4),
			WideDistanceWeight:         getEnvAsFloat("RECO_WIDE_DISTANCE_WEIGHT", 0.6),
			NeighborLimit:              getEnvAsInt("RECO_NEIGHBOR_LIMIT", 10),
			MinInteractions:            getEnvAsInt("RECO_MIN_INTERACTIONS", 3),
			SimilarityThreshold:        getEnvAsFloat("RECO_SIMILARITY_THRESHOLD", 0.1),
			PreferenceHalfLifeDays:     getEnvAsFloat("RECO_PREFERENCE_HALF_LIFE_DAYS", 21),
			TrendHalfLifeHours:         getEnvAsFloat("RECO_TREND_HALF_LIFE_HOURS", 24),
			TrendPruneThreshold:        getEnvAsFloat("RECO_TREND_PRUNE_THRESHOLD", 0.01),
			HistoryBoostMin:            getEnvAsFloat("RECO_HISTORY_BOOST_MIN", 0.8),
			HistoryBoostMax:            getEnvAsFloat("RECO_HISTORY_BOOST_MAX", 1.5),
			CollaborativeBoostMax:      getEnvAsFloat("RECO_COLLABORATIVE_BOOST_MAX", 1.5),
			ReasonThreshold:            getEnvAsFloat("RECO_REASON_THRESHOLD", 1.1),
			StoreTimeoutSeconds:        getEnvAsInt("RECO_STORE_TIMEOUT_SECONDS", 3),
			InteractionTTLDays:         getEnvAsInt("RECO_INTERACTION_TTL_DAYS", 30),
			NeighborCacheTTLMinutes:    getEnvAsInt("RECO_NEIGHBOR_CACHE_TTL_MINUTES", 60),
			WeatherCacheTTLMinutes:     getEnvAsInt("RECO_WEATHER_CACHE_TTL_MINUTES", 15),
			TrackQueueSize:             getEnvAsInt("RECO_TRACK_QUEUE_SIZE", 1024),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "business-discovery"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// Validate checks that tunables are internally consistent.
func (c *RecommendationConfig) Validate() error {
	if c.WideSearchThresholdKm <= 0 {
		return fmt.Errorf("wide search threshold must be positive, got %v", c.WideSearchThresholdKm)
	}
	if c.MinInteractions < 1 {
		return fmt.Errorf("min interactions must be at least 1, got %d", c.MinInteractions)
	}
	if c.HistoryBoostMin > 1.0 || c.HistoryBoostMax < 1.0 {
		return fmt.Errorf("history boost range [%v, %v] must contain neutral 1.0", c.HistoryBoostMin, c.HistoryBoostMax)
	}
	if c.CollaborativeBoostMax < 1.0 {
		return fmt.Errorf("collaborative boost max %v must not be below neutral 1.0", c.CollaborativeBoostMax)
	}
	if c.TrendHalfLifeHours <= 0 || c.PreferenceHalfLifeDays <= 0 {
		return fmt.Errorf("decay half-lives must be positive")
	}
	if c.TrackQueueSize < 1 {
		return fmt.Errorf("track queue size must be at least 1, got %d", c.TrackQueueSize)
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
