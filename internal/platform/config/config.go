// Package config loads service settings from the environment with viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds the token signing secret.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds the cache connection URL. An empty URL disables caching.
type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

// Load reads an optional .env file and returns a viper instance bound to
// environment variables under the given prefix (e.g. RIDE_DB_HOST).
func Load(prefix string) (*viper.Viper, error) {
	// a missing .env file is fine outside local development
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")
	v.SetDefault("REDIS_CACHE_TTL", "10m")

	if v.GetString("APP_ENV") != "development" && v.GetString("JWT_SECRET") == "" {
		return nil, fmt.Errorf("%s_JWT_SECRET is required outside development", prefix)
	}
	return v, nil
}

// GetServicePort returns the listen address for key, defaulting to :8080.
func GetServicePort(v *viper.Viper, key string) string {
	port := v.GetString(key)
	if port == "" {
		port = "8080"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

// GetAppEnv returns the deployment environment name.
func GetAppEnv(v *viper.Viper) string {
	return v.GetString("APP_ENV")
}

// LoadDatabaseConfig reads the database settings; dbNameKey names the database key.
func LoadDatabaseConfig(v *viper.Viper, dbNameKey string) DatabaseConfig {
	return DatabaseConfig{
		Host:     v.GetString("DB_HOST"),
		Port:     v.GetString("DB_PORT"),
		User:     v.GetString("DB_USER"),
		Password: v.GetString("DB_PASSWORD"),
		DBName:   v.GetString(dbNameKey),
		SSLMode:  v.GetString("DB_SSLMODE"),
	}
}

// LoadJWTConfig reads the JWT settings, falling back to a development secret.
func LoadJWTConfig(v *viper.Viper) JWTConfig {
	secret := v.GetString("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	return JWTConfig{Secret: secret}
}

// LoadKafkaConfig reads a comma separated broker list.
func LoadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{
		Brokers:     brokers,
		GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
	}
}

// LoadRedisConfig reads the cache settings.
func LoadRedisConfig(v *viper.Viper) RedisConfig {
	return RedisConfig{
		URL:      v.GetString("REDIS_URL"),
		CacheTTL: v.GetDuration("REDIS_CACHE_TTL"),
	}
}
