package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort       string
	DatabaseType     string
	DatabasePath     string
	DatabaseURL      string
	MigrationsPath   string
	SchoolConfigPath string

	// Editor tokens guard mutating API routes; empty disables the check
	EditorTokenSecret string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	// TrustProxy reads client IPs from forwarding headers
	TrustProxy bool

	AWSRegion     string
	SESFromEmail  string
	SESFromName   string
	ReportToEmail string

	TransitiveTeamTeaching bool
	Debug                  bool
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:             getEnv("PORT", "8080"),
		DatabaseType:           getEnv("DB_TYPE", "sqlite"),
		DatabasePath:           getEnv("DB_PATH", "./timetable.db"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		MigrationsPath:         getEnv("MIGRATIONS_PATH", "./migrations"),
		SchoolConfigPath:       getEnv("SCHOOL_CONFIG_PATH", ""),
		EditorTokenSecret:      getEnv("EDITOR_TOKEN_SECRET", ""),
		RateLimitRequests:      getEnvInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:        getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		TrustProxy:             getEnvBool("TRUST_PROXY", false),
		AWSRegion:              getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:           getEnv("SES_FROM_EMAIL", ""),
		SESFromName:            getEnv("SES_FROM_NAME", "School Timetable"),
		ReportToEmail:          getEnv("REPORT_TO_EMAIL", ""),
		TransitiveTeamTeaching: getEnvBool("TT_TRANSITIVE", false),
		Debug:                  getEnvBool("DEBUG", false),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid int for %s (%q), using %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s (%q), using %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid bool for %s (%q), using %t", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
