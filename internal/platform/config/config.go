package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName     string
	HTTPPort        string
	PostgresDSN     string
	DBPingTimeout   time.Duration
	OwnerAccount    string
	OperatorAccount string
	OutboxBatchSize int

	EnableOutboxRelay bool
}

func Load() (Config, error) {
	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "scorpion"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	owner := strings.TrimSpace(os.Getenv("OWNER_ACCOUNT"))
	if owner == "" {
		owner = "owner"
	}
	operator := strings.TrimSpace(os.Getenv("OPERATOR_ACCOUNT"))
	if operator == "" {
		operator = "market"
	}

	return Config{
		ServiceName:     service,
		HTTPPort:        port,
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		DBPingTimeout:   time.Duration(envInt("DB_PING_TIMEOUT_SECONDS", 5)) * time.Second,
		OwnerAccount:    owner,
		OperatorAccount: operator,
		OutboxBatchSize: envInt("OUTBOX_BATCH_SIZE", 100),

		EnableOutboxRelay: envBool("ENABLE_OUTBOX_RELAY", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
