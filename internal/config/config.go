package config

import (
	"fmt"
	"strings"
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
	Server      ServerConfig
	App         AppConfig
	Store       StoreConfig
	Kafka       KafkaConfig
	SMTP        SMTPConfig
	Cache       CacheConfig
	DeliveryLog DeliveryLogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"gameswap-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// StoreConfig holds record store settings.
type StoreConfig struct {
	Type          string `envconfig:"STORE_TYPE" default:"mongodb"` // mongodb or memory
	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"gameswap"`
}

// KafkaConfig holds event log settings.
type KafkaConfig struct {
	Brokers string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	GroupID string `envconfig:"KAFKA_GROUP_ID" default:"email-group"`
}

// SMTPConfig holds mail transport settings for the notifier.
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST" default:"localhost"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USER" default:""`
	Password string `envconfig:"SMTP_PASS" default:""`
	From     string `envconfig:"SMTP_FROM" default:"Game Exchange <noreply@gameswap.local>"`
}

// CacheConfig holds the notifier's lookup cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// DeliveryLogConfig holds the notifier's delivery log settings.
type DeliveryLogConfig struct {
	Type string `envconfig:"DELIVERY_LOG_TYPE" default:"sqlite"` // sqlite, mysql, or postgres
	Path string `envconfig:"DELIVERY_LOG_PATH" default:"./data/deliveries.db"`

	Host     string `envconfig:"DELIVERY_LOG_HOST" default:"localhost"`
	Port     int    `envconfig:"DELIVERY_LOG_PORT" default:"0"`
	Name     string `envconfig:"DELIVERY_LOG_NAME" default:"gameswap"`
	User     string `envconfig:"DELIVERY_LOG_USER" default:""`
	Password string `envconfig:"DELIVERY_LOG_PASS" default:""`
	SSLMode  string `envconfig:"DELIVERY_LOG_SSLMODE" default:"disable"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// BrokerList splits the comma-separated broker setting.
func (k *KafkaConfig) BrokerList() []string {
	parts := strings.Split(k.Brokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// MySQLDSN returns the MySQL data source name for the delivery log.
func (d *DeliveryLogConfig) MySQLDSN() string {
	port := d.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, port, d.Name)
}

// PostgresDSN returns the PostgreSQL connection string for the delivery log.
func (d *DeliveryLogConfig) PostgresDSN() string {
	port := d.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, port, d.Name, d.SSLMode)
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
