package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	DB       DBConfig
	Auth     AuthConfig
	Realtime RealtimeConfig
	// Path to a regions YAML file. Empty means the embedded default.
	RegionsFile string
	LogLevel    string
}

type ServerConfig struct {
	Host        string
	Port        int
	MaxBodySize int64
	Timeout     time.Duration
	GinMode     string
}

type StoreConfig struct {
	Driver string
	File   string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

type AuthConfig struct {
	AdminToken        string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration
}

type RealtimeConfig struct {
	RedisAddr   string
	WatchDBFile bool
}

// Load reads the environment, after loading .env when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "3577"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	maxBodyMB, err := strconv.ParseInt(getEnv("MAX_BODY_MB", "5000"), 10, 64)
	if err != nil || maxBodyMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_BODY_MB %q", os.Getenv("MAX_BODY_MB"))
	}

	timeout, err := time.ParseDuration(getEnv("SERVER_TIMEOUT", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_TIMEOUT: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("ADMIN_TOKEN_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("HOST", "0.0.0.0"),
			Port:        port,
			MaxBodySize: maxBodyMB << 20,
			Timeout:     timeout,
			GinMode:     getEnv("GIN_MODE", "release"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", StoreDriverFile)),
			File:   getEnv("DB_FILE", "db.json"),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USERNAME", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: getEnv("DB_DATABASE", "winelist"),
		},
		Auth: AuthConfig{
			AdminToken:        os.Getenv("ADMIN_TOKEN"),
			AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			JWTSecret:         os.Getenv("JWT_SECRET"),
			TokenTTL:          ttl,
		},
		Realtime: RealtimeConfig{
			RedisAddr:   os.Getenv("REDIS_ADDR"),
			WatchDBFile: getBool("WATCH_DB_FILE", true),
		},
		RegionsFile: os.Getenv("REGIONS_FILE"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverFile:
		if c.Store.File == "" {
			return fmt.Errorf("DB_FILE is required for the file store")
		}
	case StoreDriverPostgres:
		if c.DB.Host == "" || c.DB.Database == "" {
			return fmt.Errorf("DB_HOST and DB_DATABASE are required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %q or %q)", c.Store.Driver, StoreDriverFile, StoreDriverPostgres)
	}

	if c.Auth.AdminToken == "" && c.Auth.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_TOKEN or ADMIN_PASSWORD_HASH must be set")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
