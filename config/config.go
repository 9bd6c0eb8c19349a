package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Log           LogConfig           `yaml:"log"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	FlightService FlightServiceConfig `yaml:"flight_service"`
	Inventory     InventoryConfig     `yaml:"inventory"`
	Events        EventsConfig        `yaml:"events"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	RabbitMQ      RabbitMQConfig      `yaml:"rabbitmq"`
	NATS          NATSConfig          `yaml:"nats"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DatabaseConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Name        string `yaml:"name"`
	SSLMode     string `yaml:"ssl_mode"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// FlightsTTLSeconds bounds how long the cached flight list may be served.
	FlightsTTLSeconds int `yaml:"flights_ttl_seconds"`
	// FlightTTLSeconds bounds how long a single cached flight, and so its
	// seat availability, may be served.
	FlightTTLSeconds int `yaml:"flight_ttl_seconds"`
}

func (r RedisConfig) FlightsTTL() time.Duration {
	return time.Duration(r.FlightsTTLSeconds) * time.Second
}

func (r RedisConfig) FlightTTL() time.Duration {
	return time.Duration(r.FlightTTLSeconds) * time.Second
}

// FlightServiceConfig describes how the booking service reaches the flight service.
type FlightServiceConfig struct {
	Address string        `yaml:"address"`
	Timeout time.Duration `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	Window           time.Duration `yaml:"window"`
	Cooldown         time.Duration `yaml:"cooldown"`
	HalfOpenMaxCalls int           `yaml:"half_open_max_calls"`
}

type InventoryConfig struct {
	MaxCASRetries int `yaml:"max_cas_retries"`
}

type EventsConfig struct {
	// Transport is one of "kafka", "rabbitmq", "nats" or "none".
	Transport string `yaml:"transport"`
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	BookingTopic string   `yaml:"booking_topic"`
	GroupID      string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type NATSConfig struct {
	URL       string `yaml:"url"`
	ClusterID string `yaml:"cluster_id"`
	ClientID  string `yaml:"client_id"`
	Subject   string `yaml:"subject"`
}

// LoadConfig reads .env (when present), the YAML file at path and then applies
// environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Path returns the config file location taken from CONFIG_PATH.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := os.Getenv("FLIGHT_SERVICE_ADDR"); v != "" {
		c.FlightService.Address = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.FlightService.Timeout <= 0 {
		c.FlightService.Timeout = 3 * time.Second
	}
	b := &c.FlightService.Breaker
	if b.FailureThreshold <= 0 {
		b.FailureThreshold = 5
	}
	if b.Window <= 0 {
		b.Window = 30 * time.Second
	}
	if b.Cooldown <= 0 {
		b.Cooldown = 10 * time.Second
	}
	if b.HalfOpenMaxCalls <= 0 {
		b.HalfOpenMaxCalls = 1
	}
	if c.Inventory.MaxCASRetries <= 0 {
		c.Inventory.MaxCASRetries = 5
	}
	if c.Redis.FlightsTTLSeconds <= 0 {
		c.Redis.FlightsTTLSeconds = 60
	}
	if c.Redis.FlightTTLSeconds <= 0 {
		c.Redis.FlightTTLSeconds = 5
	}
	if c.Events.Transport == "" {
		c.Events.Transport = "none"
	}
	if c.Kafka.BookingTopic == "" {
		c.Kafka.BookingTopic = "booking-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "booking-notifier"
	}
	if c.RabbitMQ.Queue == "" {
		c.RabbitMQ.Queue = "booking.confirmed"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "booking.events"
	}
}
