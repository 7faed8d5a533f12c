package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server  ServerConfig
	Gemini  GeminiConfig
	Storage StorageConfig
	Relay   RelayConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	gemini, err := loadGeminiConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	relay, err := loadRelayConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Gemini: gemini, Storage: storage, Relay: relay}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if _, err := strconv.Atoi(port); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// GeminiConfig covers both Gemini surfaces: the Live websocket endpoint the
// relay dials and the model used for post-session evaluation.
type GeminiConfig struct {
	APIKey       string
	LiveModel    string
	LiveEndpoint string
	EvalModel    string
	EvalTimeout  time.Duration
}

// Enabled reports whether the required credential is present.
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

// LiveURL returns the full dial URL for the Live API, key included.
func (c GeminiConfig) LiveURL() string {
	return c.LiveEndpoint + "?key=" + url.QueryEscape(c.APIKey)
}

func loadGeminiConfig() (GeminiConfig, error) {
	timeoutSeconds := 90
	if override, err := parseOptionalIntEnv("EVAL_TIMEOUT_SECONDS"); err != nil {
		return GeminiConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return GeminiConfig{}, fmt.Errorf("EVAL_TIMEOUT_SECONDS must be positive, got %d", *override)
		}
		timeoutSeconds = *override
	}

	return GeminiConfig{
		APIKey:       strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		LiveModel:    getEnvOrDefault("GEMINI_LIVE_MODEL", "models/gemini-2.0-flash-exp"),
		LiveEndpoint: getEnvOrDefault("GEMINI_LIVE_ENDPOINT", "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1alpha.GenerativeService.BidiGenerateContent"),
		EvalModel:    getEnvOrDefault("GEMINI_EVAL_MODEL", "gemini-2.0-flash"),
		EvalTimeout:  time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// StorageConfig describes the artifact archive bucket and the background
// writer pool in front of it.
type StorageConfig struct {
	Bucket    string
	Workers   int
	QueueSize int
}

// Enabled reports whether a bucket is configured.
func (c StorageConfig) Enabled() bool {
	return c.Bucket != ""
}

func loadStorageConfig() (StorageConfig, error) {
	workers := 4
	if override, err := parseOptionalIntEnv("STORAGE_WORKERS"); err != nil {
		return StorageConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return StorageConfig{}, fmt.Errorf("STORAGE_WORKERS must be positive, got %d", *override)
		}
		workers = *override
	}

	queueSize := 64
	if override, err := parseOptionalIntEnv("STORAGE_QUEUE_SIZE"); err != nil {
		return StorageConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return StorageConfig{}, fmt.Errorf("STORAGE_QUEUE_SIZE must be positive, got %d", *override)
		}
		queueSize = *override
	}

	return StorageConfig{
		Bucket:    strings.TrimSpace(os.Getenv("GCS_BUCKET_NAME")),
		Workers:   workers,
		QueueSize: queueSize,
	}, nil
}

// RelayConfig describes per-session relay behaviour.
type RelayConfig struct {
	DefaultPersona string
	Voice          string
	PingInterval   time.Duration
	ReadTimeout    time.Duration
}

func loadRelayConfig() (RelayConfig, error) {
	pingSeconds := 30
	if override, err := parseOptionalIntEnv("RELAY_PING_SECONDS"); err != nil {
		return RelayConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return RelayConfig{}, fmt.Errorf("RELAY_PING_SECONDS must be positive, got %d", *override)
		}
		pingSeconds = *override
	}

	readTimeout := 2 * pingSeconds

	return RelayConfig{
		DefaultPersona: getEnvOrDefault("RELAY_DEFAULT_PERSONA", "cautious-it-lead"),
		Voice:          strings.TrimSpace(os.Getenv("RELAY_VOICE")),
		PingInterval:   time.Duration(pingSeconds) * time.Second,
		ReadTimeout:    time.Duration(readTimeout) * time.Second,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
