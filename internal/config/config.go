// Package config loads process configuration once at startup into an
// immutable value passed by reference. There is no mutable package-level
// configuration state (§9).
package config

import (
	"log"
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
)

// ActivityParams overrides the ranking pipeline's default activity-window
// parameters for a single region. Two regions needed this historically;
// here it is data the pipeline consults, not a branch in its code (§9).
type ActivityParams struct {
	DayLimit    int
	NumTourneys int
}

// Config is the immutable, process-wide configuration value.
type Config struct {
	DatabaseURL          string
	Port                 string
	GinMode              string
	SessionCookieName    string
	AllowedOriginPattern *regexp.Regexp
	PBKDF2Iterations     int
	DefaultDayLimit      int
	DefaultNumTourneys   int
	RegionActivityParams map[string]ActivityParams
}

// Load reads environment variables (and a .env file, if present) into a
// Config. It exits the process on an unrecoverable startup error, matching
// the CLI contract in §6.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := &Config{
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		Port:                 getEnv("PORT", "8080"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		SessionCookieName:    getEnv("SESSION_COOKIE_NAME", "session_id"),
		PBKDF2Iterations:     getEnvInt("PBKDF2_ITERATIONS", 100000),
		DefaultDayLimit:      getEnvInt("DEFAULT_DAY_LIMIT", 60),
		DefaultNumTourneys:   getEnvInt("DEFAULT_NUM_TOURNEYS", 2),
		AllowedOriginPattern: regexp.MustCompile(getEnv("ALLOWED_ORIGIN_PATTERN", `^https?://(stage\.|www\.)?example\.com(:[0-9]+)?$`)),
		RegionActivityParams: map[string]ActivityParams{
			"westchester": {DayLimit: 1500, NumTourneys: 1},
			"nyc":         {DayLimit: 90, NumTourneys: 3},
		},
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	return cfg
}

// ActivityParamsFor returns the effective activity window for a region,
// falling back to the configured defaults when no override exists.
func (c *Config) ActivityParamsFor(region string) ActivityParams {
	if p, ok := c.RegionActivityParams[region]; ok {
		return p
	}
	return ActivityParams{DayLimit: c.DefaultDayLimit, NumTourneys: c.DefaultNumTourneys}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}