package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Data layers
	DataDir         string
	CountiesPath    string // required county boundaries
	UtilitiesPath   string // optional utility service areas
	UtilityLayer    bool   // false forces county-only mode
	DataCentersPath string // optional existing data-center points
	LedgerPath      string // optional historical water-use ledger (CSV)

	// Simulation
	CoolingProfile string

	// Boundary fetch tool
	CensusCountyURL string

	ShutdownTimeout time.Duration

	// CORS
	AllowedOrigins []string
}

// Load loads environment variables and returns a Config struct
func Load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "data")

	return &Config{
		Port:            getEnv("APP_PORT", "8000"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DataDir:         dataDir,
		CountiesPath:    getEnv("COUNTIES_PATH", filepath.Join(dataDir, "counties.geojson")),
		UtilitiesPath:   getEnv("UTILITIES_PATH", filepath.Join(dataDir, "work_output_expanded_utility_service_areas.geojson")),
		UtilityLayer:    getEnvAsBool("UTILITY_LAYER_ENABLED", true),
		DataCentersPath: getEnv("DATA_CENTERS_PATH", "nova_dc.geojson"),
		LedgerPath:      getEnv("LEDGER_PATH", filepath.Join(dataDir, "VA_USWWD_Water_Use_Characteristics.csv")),
		CoolingProfile:  strings.ToLower(getEnv("COOLING_PROFILE", "standard")),
		CensusCountyURL: getEnv("CENSUS_COUNTY_URL", "https://www2.census.gov/geo/tiger/TIGER2023/COUNTY/tl_2023_us_county.zip"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		AllowedOrigins:  getEnvAsList("ALLOWED_ORIGINS", "*"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvAsList splits a comma-separated value, dropping empty entries.
func getEnvAsList(key, fallback string) []string {
	parts := strings.Split(getEnv(key, fallback), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := time.ParseDuration(valStr)
	if err != nil || val <= 0 {
		log.Printf("invalid duration for %s, defaulting to %v\n", key, fallback)
		return fallback
	}
	return val
}

func getEnvAsBool(key string, fallback bool) bool {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("invalid bool for %s, defaulting to %v\n", key, fallback)
		return fallback
	}
	return val
}
