package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Logger    LoggerConfig        `yaml:"logger"`
	Postgres  PostgresConfig      `yaml:"postgres"`
	Redis     RedisConfig         `yaml:"redis"`
	Kafka     KafkaConfig         `yaml:"kafka"`
	Elastic   ElasticsearchConfig `yaml:"elastic"`
	Storage   StorageConfig       `yaml:"storage"`
	Import    ImportConfig        `yaml:"import"`
	Cache     CacheConfig         `yaml:"cache"`
	Dashboard DashboardConfig     `yaml:"dashboard"`
}

type ServerConfig struct {
	AppEnv   string `yaml:"app_env"`
	HTTPPort string `yaml:"http_port"`
	GRPCPort string `yaml:"grpc_port"` // Health checks only
}

type LoggerConfig struct {
	Level             string `yaml:"level"`
	Encoding          string `yaml:"encoding"`
	DisableCaller     bool   `yaml:"disable_caller"`
	DisableStacktrace bool   `yaml:"disable_stacktrace"`
}

type PostgresConfig struct {
	Host            string `yaml:"host"`
	Port            string `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	DBName          string `yaml:"db_name"`
	SSLMode         string `yaml:"ssl_mode"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`  // Seconds
	ConnMaxIdleTime int    `yaml:"conn_max_idle_time"` // Seconds
}

type RedisConfig struct {
	Addr     string `yaml:"addr"` // Empty disables caching and stores preferences in memory
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"` // Empty disables change events
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

type ElasticsearchConfig struct {
	Addresses []string `yaml:"addresses"` // Empty disables search
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
}

type StorageConfig struct {
	Bucket        string `yaml:"bucket"` // Empty disables image uploads
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	PublicBaseURL string `yaml:"public_base_url"`
}

type ImportConfig struct {
	Mode        string `yaml:"mode"`
	Concurrency int    `yaml:"concurrency"`
}

type CacheConfig struct {
	ListTTL int `yaml:"list_ttl"` // Seconds
}

type DashboardConfig struct {
	LowStockThreshold int `yaml:"low_stock_threshold"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:   "dev",
			HTTPPort: ":8080",
			GRPCPort: ":8082",
		},
		Logger: LoggerConfig{
			Level:             "debug",
			Encoding:          "console",
			DisableStacktrace: true,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            "5433",
			User:            "omnipos",
			Password:        "omnipos",
			DBName:          "omnipos_admin",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			ConnMaxIdleTime: 60,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topic:   "admin.changes",
			GroupID: "admin-service",
		},
		Elastic:   ElasticsearchConfig{Addresses: []string{"http://localhost:9200"}},
		Storage:   StorageConfig{Region: "us-east-1"},
		Import:    ImportConfig{Mode: "partial", Concurrency: 4},
		Cache:     CacheConfig{ListTTL: 300},
		Dashboard: DashboardConfig{LowStockThreshold: 5},
	}
}

// Load starts from Default, overlays the YAML file at path (when path is
// not empty) and then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadEnv is Load without a file.
func LoadEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	c.Server.AppEnv = getEnv("APP_ENV", c.Server.AppEnv)
	c.Server.HTTPPort = getEnv("HTTP_PORT", c.Server.HTTPPort)
	c.Server.GRPCPort = getEnv("GRPC_PORT", c.Server.GRPCPort)

	c.Logger.Level = getEnv("LOGGER_LEVEL", c.Logger.Level)
	c.Logger.Encoding = getEnv("LOGGER_ENCODING", c.Logger.Encoding)
	c.Logger.DisableCaller = getEnvBool("LOGGER_DISABLE_CALLER", c.Logger.DisableCaller)
	c.Logger.DisableStacktrace = getEnvBool("LOGGER_DISABLE_STACKTRACE", c.Logger.DisableStacktrace)

	c.Postgres.Host = getEnv("POSTGRES_HOST", c.Postgres.Host)
	c.Postgres.Port = getEnv("POSTGRES_PORT", c.Postgres.Port)
	c.Postgres.User = getEnv("POSTGRES_USER", c.Postgres.User)
	c.Postgres.Password = getEnv("POSTGRES_PASSWORD", c.Postgres.Password)
	c.Postgres.DBName = getEnv("POSTGRES_DB", c.Postgres.DBName)
	c.Postgres.SSLMode = getEnv("POSTGRES_SSLMODE", c.Postgres.SSLMode)
	c.Postgres.MaxOpenConns = getEnvInt("POSTGRES_MAX_OPEN_CONNS", c.Postgres.MaxOpenConns)
	c.Postgres.MaxIdleConns = getEnvInt("POSTGRES_MAX_IDLE_CONNS", c.Postgres.MaxIdleConns)
	c.Postgres.ConnMaxLifetime = getEnvInt("POSTGRES_CONN_MAX_LIFETIME", c.Postgres.ConnMaxLifetime)
	c.Postgres.ConnMaxIdleTime = getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", c.Postgres.ConnMaxIdleTime)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Kafka.Brokers = getEnvSlice("KAFKA_BROKERS", c.Kafka.Brokers)
	c.Kafka.Topic = getEnv("KAFKA_TOPIC_CHANGES", c.Kafka.Topic)
	c.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", c.Kafka.GroupID)

	c.Elastic.Addresses = getEnvSlice("ELASTICSEARCH_ADDRESSES", c.Elastic.Addresses)
	c.Elastic.Username = getEnv("ELASTICSEARCH_USERNAME", c.Elastic.Username)
	c.Elastic.Password = getEnv("ELASTICSEARCH_PASSWORD", c.Elastic.Password)

	c.Storage.Bucket = getEnv("S3_BUCKET", c.Storage.Bucket)
	c.Storage.Region = getEnv("S3_REGION", c.Storage.Region)
	c.Storage.Endpoint = getEnv("S3_ENDPOINT", c.Storage.Endpoint)
	c.Storage.AccessKey = getEnv("S3_ACCESS_KEY", c.Storage.AccessKey)
	c.Storage.SecretKey = getEnv("S3_SECRET_KEY", c.Storage.SecretKey)
	c.Storage.PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", c.Storage.PublicBaseURL)

	c.Import.Mode = getEnv("IMPORT_MODE", c.Import.Mode)
	c.Import.Concurrency = getEnvInt("IMPORT_CONCURRENCY", c.Import.Concurrency)

	c.Cache.ListTTL = getEnvInt("CACHE_LIST_TTL", c.Cache.ListTTL)

	c.Dashboard.LowStockThreshold = getEnvInt("DASHBOARD_LOW_STOCK_THRESHOLD", c.Dashboard.LowStockThreshold)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvSlice splits on commas. A set but empty variable yields an empty
// slice, which disables the matching integration.
func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	out := []string{}
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
