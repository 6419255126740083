package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/arnavshah/housekeeping-api-go/pkg/assignment"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the service needs at startup
type Config struct {
	Port        string `yaml:"port"`
	GinMode     string `yaml:"gin_mode"`
	DatabaseURL string `yaml:"database_url"`
	DataPath    string `yaml:"data_path"`

	JWTSecret       string `yaml:"jwt_secret"`
	APIMasterSecret string `yaml:"api_master_secret"`
	BcryptCost      int    `yaml:"bcrypt_cost"`

	Admin AdminConfig `yaml:"admin"`
	Log   LogConfig   `yaml:"log"`

	DefaultRateLimit int `yaml:"default_rate_limit"`

	Assignment assignment.Options `yaml:"assignment"`
}

// AdminConfig is the bootstrap admin created on an empty database
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Hotel    string `yaml:"hotel"`
}

// LogConfig selects the zap level and encoding
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	c := &Config{
		Port:             "8000",
		DataPath:         "housekeeping.db",
		BcryptCost:       14,
		DefaultRateLimit: 10000,
		Assignment:       assignment.DefaultOptions,
	}
	c.Admin.Username = "admin"
	c.Admin.Password = "admin123"
	c.Log.Level = "info"
	c.Log.Format = "json"
	return c
}

// Load reads .env, then the optional CONFIG_FILE, then environment overrides
func Load() (*Config, error) {
	// Try root and parent directories for flexibility
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	c := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := c.LoadFile(path); err != nil {
			return nil, err
		}
	}
	c.LoadFromEnv()
	return c, nil
}

// LoadFile merges a YAML file over the current values
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv overrides values with any environment variables that are set
func (c *Config) LoadFromEnv() {
	setString(&c.Port, "PORT")
	setString(&c.GinMode, "GIN_MODE")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.DataPath, "DATA_PATH")
	setString(&c.JWTSecret, "JWT_SECRET")
	setString(&c.APIMasterSecret, "API_MASTER_SECRET")
	setString(&c.Admin.Username, "ADMIN_USERNAME")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")
	setString(&c.Admin.Hotel, "ADMIN_HOTEL")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setInt(&c.BcryptCost, "BCRYPT_COST")
	setInt(&c.DefaultRateLimit, "DEFAULT_RATE_LIMIT")
	setInt(&c.Assignment.MaxWeightPasses, "MAX_WEIGHT_PASSES")
	setInt(&c.Assignment.MaxCountPasses, "MAX_COUNT_PASSES")
}

// Validate rejects configurations that are unsafe to serve traffic with
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.GinMode == "release" || c.GinMode == "" {
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required in release mode")
		}
		if c.APIMasterSecret == "" {
			return errors.New("API_MASTER_SECRET is required in release mode")
		}
	}
	if c.DefaultRateLimit <= 0 {
		return fmt.Errorf("invalid default rate limit %d", c.DefaultRateLimit)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// setInt ignores values that do not parse and keeps the previous setting
func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
