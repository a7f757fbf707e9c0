// Package config loads the service configuration from a YAML file with
// environment overrides.
package config

import (
	"fmt"
	"log"
	"os"
	"time"
	// Embedded zone database so Timezone resolves on minimal images.
	_ "time/tzdata"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Environments accepted in Config.Env.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config holds every setting of the service.
type Config struct {
	Env             string `yaml:"env" env:"APP_ENV" env-default:"local"`
	Timezone        string `yaml:"timezone" env:"APP_TIMEZONE" env-default:"America/Sao_Paulo"`
	LogLevel        string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Storage         `yaml:"storage"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
	RedisConnection `yaml:"redis_connection"`
	RabbitMQ        `yaml:"rabbitmq"`
	SMTP            `yaml:"smtp"`
	Reminders       `yaml:"reminders"`
}

// Storage configures the PostgreSQL pool.
type Storage struct {
	StorageConnectionString string        `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MaxOpenConns            int           `yaml:"max_open_conns" env:"STORAGE_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns            int           `yaml:"max_idle_conns" env:"STORAGE_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime         time.Duration `yaml:"conn_max_lifetime" env:"STORAGE_CONN_MAX_LIFETIME" env-default:"30m"`
	SkipMigrations          bool          `yaml:"skip_migrations" env:"STORAGE_SKIP_MIGRATIONS"`
}

// HTTPServer configures the listener and the per-owner rate limit.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	RateLimit   float64       `yaml:"rate_limit" env:"HTTP_RATE_LIMIT" env-default:"10"`
	RateBurst   int           `yaml:"rate_burst" env:"HTTP_RATE_BURST" env-default:"20"`
}

// JWTToken configures session tokens.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// RedisConnection configures the token revocation store.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// RabbitMQ configures appointment events. An empty URL disables publishing.
type RabbitMQ struct {
	RabbitURL      string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange       string `yaml:"exchange" env:"RABBITMQ_EXCHANGE" env-default:"psycontrol.appointments"`
	ConnectRetries int    `yaml:"connect_retries" env:"RABBITMQ_CONNECT_RETRIES" env-default:"5"`
}

// SMTP configures the reminder mailer. An empty host disables delivery.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"pass" env:"SMTP_PASS"`
	SMTPFrom string `yaml:"from" env:"SMTP_FROM"`
}

// Reminders configures the day-before reminder sweep of the worker.
type Reminders struct {
	SweepInterval time.Duration `yaml:"sweep_interval" env:"REMINDERS_SWEEP_INTERVAL" env-default:"12h"`
	MarkerTTL     time.Duration `yaml:"marker_ttl" env:"REMINDERS_MARKER_TTL" env-default:"48h"`
}

// MustLoad reads the file named by CONFIG_PATH and exits the process on failure.
// A .env file in the working directory, when present, seeds the environment
// without overriding variables that are already set.
func MustLoad() *Config {
	if err := godotenv.Load(); err == nil {
		log.Print("environment seeded from .env")
	}
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	switch cfg.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return nil, fmt.Errorf("%s: unknown env %q", op, cfg.Env)
	}
	return &cfg, nil
}

// Location resolves Timezone. "Today" for date bounds is computed in it.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// String renders the configuration with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Timezone: %s\n"+
			"Storage:\n"+
			"  MaxOpenConns: %d\n"+
			"  MaxIdleConns: %d\n"+
			"  SkipMigrations: %t\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"  RateLimit: %g/s burst %d\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"RabbitMQ:\n"+
			"  Enabled: %t\n"+
			"  Exchange: %s\n"+
			"SMTP:\n"+
			"  Host: %s:%s\n",
		c.Env,
		c.Timezone,
		c.MaxOpenConns,
		c.MaxIdleConns,
		c.SkipMigrations,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.RateLimit,
		c.RateBurst,
		c.TokenTTL,
		c.RabbitURL != "",
		c.Exchange,
		c.SMTPHost,
		c.SMTPPort,
	)
}
