package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"helphands-go/pkg/logger"
)

type Config struct {
	HTTPPort       string        `yaml:"httpPort" validate:"required,numeric"`
	Env            string        `yaml:"env" validate:"required"`
	RequestTimeout time.Duration `yaml:"requestTimeout" validate:"gt=0"`
	CORS           CORSConfig    `yaml:"cors"`
	DB             DBConfig      `yaml:"db"`
	Auth           AuthConfig    `yaml:"auth"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

type DBConfig struct {
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host" validate:"required_without=DSN"`
	Port            string        `yaml:"port" validate:"required_without=DSN"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name" validate:"required_without=DSN"`
	SSLMode         string        `yaml:"sslMode"`
	TimeZone        string        `yaml:"timeZone"`
	MaxOpenConns    int           `yaml:"maxOpenConns" validate:"gte=0"`
	MaxIdleConns    int           `yaml:"maxIdleConns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" validate:"gte=0"`
}

type AuthConfig struct {
	JWTSecret      string        `yaml:"jwtSecret" validate:"required,min=16"`
	TokenTTL       time.Duration `yaml:"tokenTTL" validate:"gt=0"`
	BcryptCost     int           `yaml:"bcryptCost" validate:"gte=4,lte=31"`
	CallerCacheTTL time.Duration `yaml:"callerCacheTTL" validate:"gte=0"`
}

var validate = validator.New()

func Defaults() Config {
	return Config{
		HTTPPort:       "4000",
		Env:            "development",
		RequestTimeout: 30 * time.Second,
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		DB: DBConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			Name:            "helphands",
			SSLMode:         "disable",
			TimeZone:        "UTC",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Auth: AuthConfig{
			TokenTTL:       24 * time.Hour,
			BcryptCost:     10,
			CallerCacheTTL: 30 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in increasing order of precedence.
func Load(log logger.Logger, path string) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
		log.Info("config: loaded file", "path", path)
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPPort = getEnv("HTTP_PORT", getEnv("PORT", cfg.HTTPPort))
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.CORS.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)

	cfg.DB.DSN = getEnv("DB_DSN", getEnv("DATABASE_URL", cfg.DB.DSN))
	cfg.DB.Host = getEnv("DB_HOST", cfg.DB.Host)
	cfg.DB.Port = getEnv("DB_PORT", cfg.DB.Port)
	cfg.DB.User = getEnv("DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = getEnv("DB_NAME", cfg.DB.Name)
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", cfg.DB.SSLMode)
	cfg.DB.TimeZone = getEnv("DB_TIMEZONE", cfg.DB.TimeZone)
	cfg.DB.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DB.MaxOpenConns)
	cfg.DB.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.DB.MaxIdleConns)
	cfg.DB.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.DB.ConnMaxLifetime)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = getEnvDuration("JWT_TTL", cfg.Auth.TokenTTL)
	cfg.Auth.BcryptCost = getEnvInt("BCRYPT_COST", cfg.Auth.BcryptCost)
	cfg.Auth.CallerCacheTTL = getEnvDuration("CALLER_CACHE_TTL", cfg.Auth.CallerCacheTTL)
}

func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}
