package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	BrokerNone     = "none"
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Broker   BrokerConfig   `yaml:"broker"`
	Consul   ConsulConfig   `yaml:"consul"`
	Checkout CheckoutConfig `yaml:"checkout"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// Checkout requests per second allowed per client IP, 0 disables limiting.
	CheckoutRate  float64 `yaml:"checkout_rate"`
	CheckoutBurst int     `yaml:"checkout_burst"`
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	CartTTL  time.Duration `yaml:"cart_ttl"`
}

type BrokerConfig struct {
	Kind     string         `yaml:"kind"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type ConsulConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	ServiceName string `yaml:"service_name"`
	ServiceID   string `yaml:"service_id"`
}

type CheckoutConfig struct {
	// KeepCartOnFailure leaves the cart intact when placement fails.
	KeepCartOnFailure bool `yaml:"keep_cart_on_failure"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns settings for a stand-alone local run.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:          ":8080",
			CheckoutRate:  1,
			CheckoutBurst: 3,
		},
		Database: DatabaseConfig{
			Driver:     DriverSQLite,
			Host:       "localhost",
			Port:       5432,
			User:       "bookstore",
			Password:   "bookstore",
			Name:       "bookstore",
			SQLitePath: "bookstore.db",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			CacheTTL: 5 * time.Minute,
			CartTTL:  24 * time.Hour,
		},
		Broker: BrokerConfig{
			Kind: BrokerNone,
			RabbitMQ: RabbitMQConfig{
				Host:     "localhost",
				Port:     5672,
				User:     "guest",
				Password: "guest",
			},
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				GroupID: "bookstore-receipts",
			},
		},
		Consul: ConsulConfig{
			Host:        "localhost",
			Port:        8500,
			ServiceName: "bookstore",
			ServiceID:   "bookstore-1",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads defaults, then the YAML file at path (if any), then BOOKSTORE_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Broker.Kind {
	case BrokerNone, BrokerRabbitMQ, BrokerKafka:
	default:
		return fmt.Errorf("unsupported broker kind %q", c.Broker.Kind)
	}

	if c.Broker.Kind == BrokerKafka && len(c.Broker.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka broker selected but no brokers configured")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.HTTP.Addr, "BOOKSTORE_HTTP_ADDR")
	setString(&cfg.Database.Driver, "BOOKSTORE_DB_DRIVER")
	setString(&cfg.Database.Host, "BOOKSTORE_DB_HOST")
	setString(&cfg.Database.User, "BOOKSTORE_DB_USER")
	setString(&cfg.Database.Password, "BOOKSTORE_DB_PASSWORD")
	setString(&cfg.Database.Name, "BOOKSTORE_DB_NAME")
	setString(&cfg.Database.SQLitePath, "BOOKSTORE_SQLITE_PATH")
	setString(&cfg.Redis.Host, "BOOKSTORE_REDIS_HOST")
	setString(&cfg.Broker.Kind, "BOOKSTORE_BROKER")
	setString(&cfg.Broker.RabbitMQ.Host, "BOOKSTORE_RABBITMQ_HOST")
	setString(&cfg.Consul.Host, "BOOKSTORE_CONSUL_HOST")
	setString(&cfg.Log.Level, "BOOKSTORE_LOG_LEVEL")

	if v := os.Getenv("BOOKSTORE_KAFKA_BROKERS"); v != "" {
		cfg.Broker.Kafka.Brokers = strings.Split(v, ",")
	}

	ints := map[string]*int{
		"BOOKSTORE_DB_PORT":     &cfg.Database.Port,
		"BOOKSTORE_REDIS_PORT":  &cfg.Redis.Port,
		"BOOKSTORE_CONSUL_PORT": &cfg.Consul.Port,
	}
	for key, dst := range ints {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}

	bools := map[string]*bool{
		"BOOKSTORE_REDIS_ENABLED":        &cfg.Redis.Enabled,
		"BOOKSTORE_CONSUL_ENABLED":       &cfg.Consul.Enabled,
		"BOOKSTORE_KEEP_CART_ON_FAILURE": &cfg.Checkout.KeepCartOnFailure,
		"BOOKSTORE_LOG_PRETTY":           &cfg.Log.Pretty,
	}
	for key, dst := range bools {
		if err := setBool(dst, key); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

// PostgresDSN builds a lib/pq connection string.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
