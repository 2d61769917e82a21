package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server ServerConfig
	App    AppConfig
	Log    LogConfig
	Cache  CacheConfig
	Store  StoreConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"5000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"incywincy-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// CacheConfig holds cache settings for the catalog views.
type CacheConfig struct {
	Type       string        `envconfig:"CACHE_TYPE" default:"memory"` // memory, redis, or none
	TTL        time.Duration `envconfig:"CACHE_TTL" default:"30s"`
	MaxEntries int           `envconfig:"CACHE_MAX_ENTRIES" default:"1024"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"incywincy:toys"`
}

// StoreConfig holds toy store settings.
type StoreConfig struct {
	Type string `envconfig:"TOY_DB_TYPE" default:"mongodb"` // mongodb, sqlite, postgres, mysql, or memory
	Path string `envconfig:"TOY_DB_PATH" default:"./data/toys.db"`
	// SQL server settings (postgres, mysql)
	Host     string `envconfig:"TOY_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"TOY_DB_PORT" default:"0"`
	Name     string `envconfig:"TOY_DB_NAME" default:"incywincy"`
	SQLUser  string `envconfig:"TOY_DB_USER" default:"postgres"`
	SQLPass  string `envconfig:"TOY_DB_PASS" default:""`
	SSLMode  string `envconfig:"TOY_DB_SSLMODE" default:"disable"`
	// MongoDB settings. When MONGODB_URI is empty the Atlas SRV URI is built
	// from DB_USER, DB_PASS and MONGODB_CLUSTER.
	MongoURI        string `envconfig:"MONGODB_URI" default:""`
	MongoUser       string `envconfig:"DB_USER" default:""`
	MongoPassword   string `envconfig:"DB_PASS" default:""`
	MongoCluster    string `envconfig:"MONGODB_CLUSTER" default:"cluster0.ws55k5x.mongodb.net"`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"incyWincyCars"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"toys"`
}

// MongoConnectionURI returns the MongoDB connection string.
func (s *StoreConfig) MongoConnectionURI() string {
	if s.MongoURI != "" {
		return s.MongoURI
	}
	if s.MongoUser == "" {
		return "mongodb://localhost:27017"
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(s.MongoUser), url.QueryEscape(s.MongoPassword), s.MongoCluster)
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *StoreConfig) PostgresDSN() string {
	port := s.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.SQLUser, s.SQLPass),
		Host:     fmt.Sprintf("%s:%d", s.Host, port),
		Path:     "/" + s.Name,
		RawQuery: "sslmode=" + url.QueryEscape(s.SSLMode),
	}
	return u.String()
}

// MySQLDSN returns the MySQL data source name.
func (s *StoreConfig) MySQLDSN() string {
	port := s.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		s.SQLUser, s.SQLPass, s.Host, port, s.Name)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
