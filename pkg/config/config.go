// Package config provides configuration management for the application.
// It loads environment variables and makes them available throughout the
// process.
package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all configuration values.
type Config struct {
	// Discord
	BotToken   string
	DevGuildID string

	// Lavalink node
	LinkName             string
	LinkHost             string
	LinkPort             int
	LinkPassword         string
	LinkSecure           bool
	LinkReconnectTries   int
	LinkReconnectTimeout int // milliseconds
	LinkResumeKey        string
	LinkResumeTimeout    int // seconds

	// Spotify
	SpotifyClientID string
	SpotifySecret   string

	// MongoDB
	MongoDBURL string
	DBName     string

	// MQTT
	MQTTHost     string
	MQTTPort     string
	MQTTUser     string
	MQTTPassword string

	// Web Server
	Port string

	// Environment
	Environment string

	// Webhooks
	ErrorWebhook string
	LogsWebhook  string
}

var (
	Version   = "Dev-Local"
	BuildTime = "Today"
)

var (
	cfg     *Config
	cfgOnce sync.Once
)

// resetForTesting resets the configuration for testing purposes.
// This function should only be called from test code.
func resetForTesting() {
	cfg = nil
	cfgOnce = sync.Once{}
}

// loadConfig performs the actual configuration loading
func loadConfig() {
	// Load .env file if it exists (ignoring error if it doesn't)
	_ = godotenv.Load()

	cfg = &Config{
		// Discord
		BotToken:   getEnv("botToken", ""),
		DevGuildID: getEnv("devGuildId", ""),

		// Lavalink node
		LinkName:             getEnv("linkName", "main"),
		LinkHost:             getEnv("linkHost", "localhost"),
		LinkPort:             getEnvInt("linkPort", 2333),
		LinkPassword:         getEnv("linkPassword", "youshallnotpass"),
		LinkSecure:           getEnvBool("linkSecure", false),
		LinkReconnectTries:   getEnvInt("linkReconnectTries", 5),
		LinkReconnectTimeout: getEnvInt("linkReconnectTimeoutMs", 5000),
		LinkResumeKey:        getEnv("linkResumeKey", ""),
		LinkResumeTimeout:    getEnvInt("linkResumeTimeout", 60),

		// Spotify
		SpotifyClientID: getEnv("spotifyClientId", ""),
		SpotifySecret:   getEnv("spotifySecret", ""),

		// MongoDB
		MongoDBURL: getEnv("mongodbUrl", "mongodb://localhost:27017"),
		DBName:     getEnv("dbName", "SonataLink"),

		// MQTT
		MQTTHost:     getEnv("MQTT_Host", "localhost"),
		MQTTPort:     getEnv("MQTT_Port", "1883"),
		MQTTUser:     getEnv("MQTT_User", ""),
		MQTTPassword: getEnv("MQTT_Password", ""),

		// Web Server
		Port: getEnv("PORT", "3000"),

		// Environment
		Environment: getEnv("enviroment", "dev"),

		// Webhooks
		ErrorWebhook: getEnv("errorWebhook", ""),
		LogsWebhook:  getEnv("logsWebhook", ""),
	}
}

// Load initializes the configuration from environment variables
func Load() (*Config, error) {
	cfgOnce.Do(loadConfig)
	return cfg, nil
}

// Get returns the current configuration
func Get() *Config {
	// Use sync.Once to ensure thread-safe initialization if Load wasn't called
	cfgOnce.Do(loadConfig)
	return cfg
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// IsProd returns true if the environment is production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}
