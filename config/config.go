package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.yaml.in/yaml/v4"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	ShipBox  ShipBoxConfig  `yaml:"shipbox"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// ConnString builds the pgx DSN; ssl_mode defaults to disable.
func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, sslMode)
}

type KafkaConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	ShipmentTrackingTopic string `yaml:"shipment_tracking_topic_name"`
	OrderStatusTopic      string `yaml:"order_status_topic_name"`
}

func (k KafkaConfig) Brokers() []string {
	return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)}
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type ShipBoxConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	StorageBackend     string `yaml:"storage_backend"` // "postgres" | "memory"
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	TrackingCacheTTLSeconds     int `yaml:"tracking_cache_ttl_seconds"`
	CalculateRateLimitPerMinute int `yaml:"calculate_rate_limit_per_minute"`
	RequestTimeoutSeconds       int `yaml:"request_timeout_seconds"`

	WorkerPollIntervalSeconds int `yaml:"worker_poll_interval_seconds"`
	WorkerBatchSize           int `yaml:"worker_batch_size"`
	WorkerConcurrency         int `yaml:"worker_concurrency"`
	WorkerLeaseSeconds        int `yaml:"worker_lease_seconds"`
	WorkerRateLimitPerMinute  int `yaml:"worker_rate_limit_per_minute"`
	// Per provider code, e.g. {"DLV": 60}.
	WorkerProviderRateLimits map[string]int `yaml:"worker_provider_rate_limits"`

	WorkerHTTPAddr string `yaml:"worker_http_addr"`

	WorkerNextCheckInTransitMinSeconds int `yaml:"worker_next_check_in_transit_min_seconds"`
	WorkerNextCheckInTransitMaxSeconds int `yaml:"worker_next_check_in_transit_max_seconds"`
	WorkerNextCheckUnknownSeconds      int `yaml:"worker_next_check_unknown_seconds"`
	WorkerNextCheckPendingSeconds      int `yaml:"worker_next_check_pending_seconds"`
	WorkerNextCheckLastMileSeconds     int `yaml:"worker_next_check_out_for_delivery_seconds"`
	WorkerBackoff1Seconds              int `yaml:"worker_backoff_1_seconds"`
	WorkerBackoff2Seconds              int `yaml:"worker_backoff_2_seconds"`
	WorkerBackoff3Seconds              int `yaml:"worker_backoff_3_seconds"`
	WorkerBackoff4Seconds              int `yaml:"worker_backoff_4_seconds"`

	CarrierEmulatorBaseURL string `yaml:"carrier_emulator_base_url"`
	CarrierEmulatorMode    string `yaml:"carrier_emulator_mode"` // "v1" | "" (fake)
	CarrierEmulatorAPIKey  string `yaml:"carrier_emulator_api_key"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	switch config.ShipBox.StorageBackend {
	case "":
		config.ShipBox.StorageBackend = StorageBackendPostgres
	case StorageBackendPostgres, StorageBackendMemory:
	default:
		return nil, fmt.Errorf("unknown storage_backend %q", config.ShipBox.StorageBackend)
	}

	return &config, nil
}

// ResolvePath finds the config file: .env (if present) → env configPath → --config flag.
func ResolvePath(name string, args []string) (string, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env not loaded", "error", err.Error())
	}

	path := os.Getenv("configPath")
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&path, "config", "c", path, "path to the YAML config")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if path == "" {
		return "", fmt.Errorf("config path is required (--config or configPath env)")
	}
	return path, nil
}
