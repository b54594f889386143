// Package config provides configuration management for Cortexa.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment represents the deployment environment.
type Environment string

const (
	// EnvDevelopment is the default local development environment.
	EnvDevelopment Environment = "development"
	// EnvStaging is the staging/pre-production environment.
	EnvStaging Environment = "staging"
	// EnvProduction is the production environment.
	EnvProduction Environment = "production"
)

// ServerConfig holds server-level configuration loaded from environment variables.
type ServerConfig struct {
	Environment Environment
	Port        int
	DatabaseURL string
	JWTSecret   string
	JWTTTL      int // token lifetime in seconds (default: 86400)
}

// LoadServerConfig reads server configuration from environment variables.
func LoadServerConfig() (ServerConfig, error) {
	env := Environment(os.Getenv("ENV"))
	switch env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// valid
	default:
		env = EnvDevelopment
	}

	port := getEnvInt("PORT", 5000)
	if port <= 0 || port > 65535 {
		port = 5000
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return ServerConfig{}, fmt.Errorf("DATABASE_URL is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if env == EnvProduction {
			return ServerConfig{}, fmt.Errorf("JWT_SECRET is required in production")
		}
		secret = "cortexa-dev-secret"
	}

	ttl := getEnvInt("JWT_TTL_SECONDS", 86400)
	if ttl <= 0 {
		ttl = 86400
	}

	return ServerConfig{
		Environment: env,
		Port:        port,
		DatabaseURL: dbURL,
		JWTSecret:   secret,
		JWTTTL:      ttl,
	}, nil
}

// getEnvInt reads an integer from an environment variable, returning the default if unset or invalid.
func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
