package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	RemoteDriverREST      = "rest"
	RemoteDriverFirestore = "firestore"
	RemoteDriverPostgres  = "postgres"

	StorageDriverREST = "rest"
	StorageDriverGCS  = "gcs"
)

type Config struct {
	Environment string `yaml:"environment"`

	RemoteDriver   string        `yaml:"remote_driver"`
	BackendURL     string        `yaml:"backend_url"`
	BackendAnonKey string        `yaml:"backend_anon_key"`
	RemoteTimeout  time.Duration `yaml:"remote_timeout"`
	DatabaseURL    string        `yaml:"database_url"`

	FirebaseProject         string `yaml:"firebase_project"`
	FirebaseCredentialsPath string `yaml:"firebase_credentials_path"`

	StorageDriver string `yaml:"storage_driver"`
	StorageBucket string `yaml:"storage_bucket"`

	CachePath       string        `yaml:"cache_path"`
	RealtimeEnabled bool          `yaml:"realtime_enabled"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`

	NearbyRadiusKm     float64       `yaml:"nearby_radius_km"`
	DefaultCountryCode string        `yaml:"default_country_code"`
	LocationTimeout    time.Duration `yaml:"location_timeout"`
	DeviceLocation     string        `yaml:"device_location"`
	OTPCooldown        time.Duration `yaml:"otp_cooldown"`
}

// Load reads .env and the process environment, then overlays the YAML file
// named by NEARBASKET_CONFIG_FILE when set.
func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		Environment:             getEnv("ENVIRONMENT", "development"),
		RemoteDriver:            getEnv("REMOTE_DRIVER", RemoteDriverREST),
		BackendURL:              strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		BackendAnonKey:          getEnv("BACKEND_ANON_KEY", ""),
		RemoteTimeout:           getEnvAsDuration("REMOTE_TIMEOUT", 30*time.Second),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		FirebaseProject:         getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		StorageDriver:           getEnv("STORAGE_DRIVER", StorageDriverREST),
		StorageBucket:           getEnv("STORAGE_BUCKET", "profile-images"),
		CachePath:               getEnv("CACHE_PATH", "nearbasket.db"),
		RealtimeEnabled:         getEnvAsBool("REALTIME_ENABLED", false),
		RefreshInterval:         getEnvAsDuration("REFRESH_INTERVAL", 5*time.Minute),
		NearbyRadiusKm:          getEnvAsFloat("NEARBY_RADIUS_KM", 10),
		DefaultCountryCode:      getEnv("DEFAULT_COUNTRY_CODE", "+91"),
		LocationTimeout:         getEnvAsDuration("LOCATION_TIMEOUT", 10*time.Second),
		DeviceLocation:          getEnv("DEVICE_LOCATION", ""),
		OTPCooldown:             time.Duration(getEnvAsInt64("OTP_COOLDOWN_SECONDS", 60)) * time.Second,
	}

	if path := getEnv("NEARBASKET_CONFIG_FILE", ""); path != "" {
		if err := config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFile overlays the keys present in a YAML file onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	return nil
}

// Validate checks driver-specific settings. BACKEND_URL is always required:
// phone auth goes through the hosted backend whatever serves the tables.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}

	switch c.RemoteDriver {
	case RemoteDriverREST:
	case RemoteDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %q remote driver", c.RemoteDriver)
		}
	case RemoteDriverFirestore:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the %q remote driver", c.RemoteDriver)
		}
	default:
		return fmt.Errorf("unknown remote driver %q", c.RemoteDriver)
	}

	switch c.StorageDriver {
	case StorageDriverREST:
	case StorageDriverGCS:
		if c.FirebaseProject == "" {
			return fmt.Errorf("FIREBASE_PROJECT_ID is required for the %q storage driver", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	if c.RemoteTimeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}
	if c.NearbyRadiusKm <= 0 {
		return fmt.Errorf("NEARBY_RADIUS_KM must be positive")
	}
	if !strings.HasPrefix(c.DefaultCountryCode, "+") {
		return fmt.Errorf("DEFAULT_COUNTRY_CODE must start with +")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
