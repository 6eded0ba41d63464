package config

import (
	"time"

	"github.com/Kilat-Pet-Delivery/service-ride/internal/platform/config"
	"github.com/spf13/viper"
)

// GeocoderConfig holds the Nominatim client settings.
type GeocoderConfig struct {
	BaseURL      string
	UserAgent    string
	Limit        int
	CountryCodes string
	Timeout      time.Duration
}

// FareConfig holds the tariff used to price completed trips.
type FareConfig struct {
	BaseCents      int64
	PerKmCents     int64
	PerMinuteCents int64
	MinimumCents   int64
	Currency       string
}

// ServiceConfig holds all configuration for the ride service.
type ServiceConfig struct {
	Port             string
	AppEnv           string
	DBConfig         config.DatabaseConfig
	JWTConfig        config.JWTConfig
	KafkaConfig      config.KafkaConfig
	RedisConfig      config.RedisConfig
	Geocoder         GeocoderConfig
	Fare             FareConfig
	ApproachSpeedKmh float64
	TripSpeedKmh     float64
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RIDE")
	if err != nil {
		return nil, err
	}
	setDefaults(v)

	return &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		RedisConfig: config.LoadRedisConfig(v),
		Geocoder: GeocoderConfig{
			BaseURL:      v.GetString("GEOCODER_URL"),
			UserAgent:    v.GetString("GEOCODER_USER_AGENT"),
			Limit:        v.GetInt("GEOCODER_LIMIT"),
			CountryCodes: v.GetString("GEOCODER_COUNTRY_CODES"),
			Timeout:      v.GetDuration("GEOCODER_TIMEOUT"),
		},
		Fare: FareConfig{
			BaseCents:      v.GetInt64("FARE_BASE_CENTS"),
			PerKmCents:     v.GetInt64("FARE_PER_KM_CENTS"),
			PerMinuteCents: v.GetInt64("FARE_PER_MINUTE_CENTS"),
			MinimumCents:   v.GetInt64("FARE_MINIMUM_CENTS"),
			Currency:       v.GetString("FARE_CURRENCY"),
		},
		ApproachSpeedKmh: v.GetFloat64("APPROACH_SPEED_KMH"),
		TripSpeedKmh:     v.GetFloat64("TRIP_SPEED_KMH"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_NAME", "ride_db")
	v.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("GEOCODER_USER_AGENT", "service-ride/1.0")
	v.SetDefault("GEOCODER_LIMIT", 10)
	v.SetDefault("GEOCODER_TIMEOUT", "5s")
	v.SetDefault("FARE_BASE_CENTS", 250)
	v.SetDefault("FARE_PER_KM_CENTS", 175)
	v.SetDefault("FARE_PER_MINUTE_CENTS", 30)
	v.SetDefault("FARE_MINIMUM_CENTS", 700)
	v.SetDefault("FARE_CURRENCY", "USD")
	v.SetDefault("APPROACH_SPEED_KMH", 30)
	v.SetDefault("TRIP_SPEED_KMH", 35)
}
