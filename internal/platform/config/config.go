package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr string

	// AuthoringOrigin is the only origin allowed to publish preview updates
	// and open preview channels. Messages from any other origin are discarded.
	AuthoringOrigin string

	// PreviewSigningKey signs short-lived preview channel tokens.
	PreviewSigningKey string

	// CartAbandonTimeout is how long a mutated, non-empty cart may sit idle
	// before the abandonment signal fires.
	CartAbandonTimeout time.Duration

	Redis    RedisConfig
	Postgres PostgresConfig
	Kafka    KafkaConfig
}

// RedisConfig configures the optional Redis backends (config store, cart store).
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the optional Postgres backends.
type PostgresConfig struct {
	URL string
}

// KafkaConfig configures the telemetry publisher. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VITRINE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	origin := os.Getenv("AUTHORING_ORIGIN")
	if origin == "" {
		// Development default - must be overridden in production
		origin = "http://localhost:3000"
	}

	signingKey := os.Getenv("PREVIEW_SIGNING_KEY")
	if signingKey == "" {
		// Use a default for development - should be overridden in production
		signingKey = "dev-secret-key-change-in-production"
	}

	abandonTimeout := 10 * time.Minute
	if raw := os.Getenv("CART_ABANDON_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			abandonTimeout = d
		}
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("KAFKA_TELEMETRY_TOPIC")
	if topic == "" {
		topic = "storefront.telemetry"
	}

	return Server{
		Addr:               addr,
		AuthoringOrigin:    origin,
		PreviewSigningKey:  signingKey,
		CartAbandonTimeout: abandonTimeout,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("POSTGRES_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: brokers,
			Topic:   topic,
		},
	}
}
