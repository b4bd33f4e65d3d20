// Package config provides centralized default values for the pulse engine
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

// parseSamplingRates parses "name=rate,name=rate" pairs. Invalid pairs are
// skipped; rates are clamped to [0,1].
func parseSamplingRates(raw string, defaults map[string]float64) map[string]float64 {
	rates := make(map[string]float64, len(defaults))
	for name, rate := range defaults {
		rates[name] = rate
	}
	if raw == "" {
		return rates
	}
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}
		rates[strings.ToLower(strings.TrimSpace(parts[0]))] = rate
	}
	return rates
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Database
	DatabaseURL              string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	DatabaseAuthToken        string
	SlowQueryThreshold       time.Duration

	// Capture & Sampling
	SamplingRates       map[string]float64
	DefaultSamplingRate float64

	// Batching & Delivery
	BatchSize        int
	FlushInterval    time.Duration
	MaxQueueSize     int
	DeliveryEndpoint string
	DeliveryTimeout  time.Duration

	// Session
	SessionTTL time.Duration

	// Engagement scoring
	// Heuristic constants carried from product defaults; env-overridable,
	// pending product validation, not tuned.
	WeightActivity    float64
	WeightInteraction float64
	WeightSocial      float64
	WeightFrequency   float64

	RefSessionsPerWeek   float64
	RefActionsPerSession float64

	ThresholdPowerUser int
	ThresholdActive    int
	ThresholdCasual    int

	ScoreCacheTTL    time.Duration
	SegmentCacheTTL  time.Duration
	HistoryMaxPoints int
	ProfileWindow    time.Duration

	// Recommendations
	SimilarityThreshold    float64
	MaxSimilarUsers        int
	MaxRecommendations     int
	MinRecommendationScore float64
	WeightCollaborative    float64
	WeightContentBased     float64
	WeightPopularity       float64
	PopularityCeiling      float64
	RecommendationCacheTTL time.Duration

	// Cache hygiene
	CleanupInterval time.Duration

	// Auth
	JWTSecret         string
	AdminPasswordHash string
	TokenTTL          time.Duration

	// Re-engagement email
	ReengagementEnabled bool
	EmailFrom           string
	EmailFromName       string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Database
	DatabaseURL = getEnvString("PULSE_DB_URL", "pulse.db")
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	DatabaseAuthToken = getEnvString("PULSE_DB_AUTH_TOKEN", "")
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 100*time.Millisecond)

	// Capture & Sampling
	DefaultSamplingRate = getEnvFloat("PULSE_DEFAULT_SAMPLING_RATE", 1.0)
	SamplingRates = parseSamplingRates(os.Getenv("PULSE_SAMPLING_RATES"), map[string]float64{
		"gallery.view": 0.8,
		"image.view":   0.5,
		"mouse.move":   0.1,
	})

	// Batching & Delivery
	BatchSize = getEnvInt("PULSE_BATCH_SIZE", 10)
	FlushInterval = getEnvDuration("PULSE_FLUSH_INTERVAL", 5*time.Second)
	MaxQueueSize = getEnvInt("PULSE_MAX_QUEUE_SIZE", 1000)
	DeliveryEndpoint = getEnvString("PULSE_DELIVERY_ENDPOINT", "http://localhost:9000/api/analytics/events")
	DeliveryTimeout = getEnvDuration("PULSE_DELIVERY_TIMEOUT", 10*time.Second)

	// Session
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour

	// Engagement scoring
	WeightActivity = getEnvFloat("ENGAGEMENT_WEIGHT_ACTIVITY", 0.30)
	WeightInteraction = getEnvFloat("ENGAGEMENT_WEIGHT_INTERACTION", 0.35)
	WeightSocial = getEnvFloat("ENGAGEMENT_WEIGHT_SOCIAL", 0.20)
	WeightFrequency = getEnvFloat("ENGAGEMENT_WEIGHT_FREQUENCY", 0.15)

	RefSessionsPerWeek = getEnvFloat("REF_SESSIONS_PER_WEEK", 5)
	RefActionsPerSession = getEnvFloat("REF_ACTIONS_PER_SESSION", 12)

	ThresholdPowerUser = getEnvInt("SEGMENT_THRESHOLD_POWER_USER", 75)
	ThresholdActive = getEnvInt("SEGMENT_THRESHOLD_ACTIVE", 50)
	ThresholdCasual = getEnvInt("SEGMENT_THRESHOLD_CASUAL", 25)

	ScoreCacheTTL = getEnvDuration("SCORE_CACHE_TTL", 5*time.Minute)
	SegmentCacheTTL = getEnvDuration("SEGMENT_CACHE_TTL", 5*time.Minute)
	HistoryMaxPoints = getEnvInt("HISTORY_MAX_POINTS", 100)
	ProfileWindow = getEnvDuration("PROFILE_WINDOW", 30*24*time.Hour)

	// Recommendations
	SimilarityThreshold = getEnvFloat("SIMILARITY_THRESHOLD", 0.5)
	MaxSimilarUsers = getEnvInt("MAX_SIMILAR_USERS", 5)
	MaxRecommendations = getEnvInt("MAX_RECOMMENDATIONS", 10)
	MinRecommendationScore = getEnvFloat("MIN_RECOMMENDATION_SCORE", 0.3)
	WeightCollaborative = getEnvFloat("HYBRID_WEIGHT_COLLABORATIVE", 0.4)
	WeightContentBased = getEnvFloat("HYBRID_WEIGHT_CONTENT", 0.4)
	WeightPopularity = getEnvFloat("HYBRID_WEIGHT_POPULARITY", 0.2)
	PopularityCeiling = getEnvFloat("POPULARITY_CEILING", 1000)
	RecommendationCacheTTL = getEnvDuration("RECOMMENDATION_CACHE_TTL", 10*time.Minute)

	// Cache hygiene
	CleanupInterval = getEnvDuration("CACHE_CLEANUP_INTERVAL", 30*time.Minute)

	// Auth
	JWTSecret = getEnvString("JWT_SECRET", "")
	AdminPasswordHash = getEnvString("ADMIN_PASSWORD_HASH", "")
	TokenTTL = getEnvDuration("TOKEN_TTL", 24*time.Hour)

	// Re-engagement email
	ReengagementEnabled = getEnvBool("REENGAGEMENT_EMAIL_ENABLED", false)
	EmailFrom = getEnvString("EMAIL_FROM", "noreply@pulsekit.dev")
	EmailFromName = getEnvString("EMAIL_FROM_NAME", "Pulse")
}
