package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig `mapstructure:"backend"`
	AuthRPC   AuthRPCConfig `mapstructure:"auth_rpc"`
	Store     StoreConfig   `mapstructure:"store"`
	Redis     RedisConfig
	Minio     MinioConfig `mapstructure:"minio"`
	Database  DatabaseConfig
	Session   SessionConfig   `mapstructure:"session"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type BackendConfig struct {
	BaseURL             string `mapstructure:"base_url"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
	RecommendationsTopK int    `mapstructure:"recommendations_top_k"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type AuthRPCConfig struct {
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (a AuthRPCConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// StoreConfig 本地持久化后端
type StoreConfig struct {
	Type      string `mapstructure:"type"`
	FilePath  string `mapstructure:"file_path"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type SessionConfig struct {
	VerifySchedule string `mapstructure:"verify_schedule"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMinio  = "minio"
	StoreMySQL  = "mysql"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout_seconds", 15)
	v.SetDefault("backend.recommendations_top_k", 10)
	v.SetDefault("auth_rpc.timeout_seconds", 10)
	v.SetDefault("store.type", StoreFile)
	v.SetDefault("store.file_path", "data/local_store.json")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.bucket", "stibap-portal")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("session.verify_schedule", "@every 10m")
	v.SetDefault("log.file", "logs/portal.log")
	v.SetDefault("log.level", "info")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.max_requests", 600)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	// .env 可选，缺失时只用环境变量和配置文件
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("STIBAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Backend
	v.BindEnv("backend.base_url", "BACKEND_BASE_URL", "REACT_APP_API_URL")

	// Auth RPC
	v.BindEnv("auth_rpc.url", "AUTH_RPC_URL")
	v.BindEnv("auth_rpc.api_key", "AUTH_RPC_KEY")

	// Store
	v.BindEnv("store.type", "STORE_TYPE")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// MinIO
	v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("minio.bucket", "MINIO_BUCKET")

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "PORT")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Store.Type == StoreFile {
		if dir := filepath.Dir(cfg.Store.FilePath); dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				os.MkdirAll(dir, 0755)
			}
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Type {
	case StoreMemory, StoreFile, StoreRedis, StoreMinio, StoreMySQL:
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}

	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}

	if c.Server.Mode == "release" && c.AuthRPC.URL == "" {
		return errors.New("auth_rpc.url is required in release mode")
	}

	return nil
}
