package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	Debug   bool
	Port    string

	// Logging
	LogLevel string
	LogJSON  bool

	// Control plane sync
	SyncEndpoint        string // base URL of the topology control plane
	SyncNamespace       string
	ProxyName           string // single-name identity; takes precedence when set
	ProxyEnv            string // env/tag identity, used when ProxyName is empty
	ProxyTag            string
	SyncIntervalMinutes int

	// InfluxDB (Time-Series Event Storage)
	InfluxDBEnabled bool
	InfluxDBURL     string
	InfluxDBToken   string
	InfluxDBOrg     string
	InfluxDBBucket  string

	// Backend RCON probe
	RCONProbeEnabled         bool
	RCONPassword             string
	RCONPort                 int
	RCONProbeIntervalSeconds int
}

var AppConfig *Config

// Load loads configuration from environment
func Load() *Config {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		AppName:  getEnv("APP_NAME", "proxysync"),
		Debug:    getEnvBool("DEBUG", false),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogJSON:  getEnvBool("LOG_JSON", false),

		SyncEndpoint:        getEnv("SYNC_ENDPOINT", "localhost:8181"),
		SyncNamespace:       getEnv("SYNC_NAMESPACE", "default"),
		ProxyName:           getEnv("PROXY_NAME", ""),
		ProxyEnv:            getEnv("PROXY_ENV", "dev"),
		ProxyTag:            getEnv("PROXY_TAG", "proxy"),
		SyncIntervalMinutes: getEnvInt("SYNC_INTERVAL_MINUTES", 5),

		InfluxDBEnabled: getEnvBool("INFLUXDB_ENABLED", false),
		InfluxDBURL:     getEnv("INFLUXDB_URL", "http://localhost:8086"),
		InfluxDBToken:   getEnv("INFLUXDB_TOKEN", ""),
		InfluxDBOrg:     getEnv("INFLUXDB_ORG", "proxysync"),
		InfluxDBBucket:  getEnv("INFLUXDB_BUCKET", "topology-events"),

		RCONProbeEnabled:         getEnvBool("RCON_PROBE_ENABLED", false),
		RCONPassword:             getEnv("RCON_PASSWORD", ""),
		RCONPort:                 getEnvInt("RCON_PORT", 25575),
		RCONProbeIntervalSeconds: getEnvInt("RCON_PROBE_INTERVAL_SECONDS", 60),
	}

	AppConfig = config
	return config
}

// IdentityPath returns the control-plane identity path for this proxy:
// the configured name, or env/tag when no name is set.
func (c *Config) IdentityPath() string {
	if c.ProxyName != "" {
		return c.ProxyName
	}
	return c.ProxyEnv + "/" + c.ProxyTag
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("Invalid boolean for %s, using default: %v", key, defaultValue)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("Invalid integer for %s, using default: %d", key, defaultValue)
			return defaultValue
		}
		return intVal
	}
	return defaultValue
}
