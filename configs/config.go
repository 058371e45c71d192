package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when LoadConfig is called without an explicit path.
const DefaultConfigFile = "taskly.yaml"

type Config struct {
	Port             int           `yaml:"port"`
	Debug            bool          `yaml:"debug"`
	StaticDir        string        `yaml:"static_dir"`
	LogDir           string        `yaml:"log_dir"`
	SecretKey        string        `yaml:"secret_key"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	EnforceOwnership bool          `yaml:"enforce_ownership"`
	RateLimitMax     int           `yaml:"rate_limit_max"`
	SecureCookies    bool          `yaml:"secure_cookies"`

	DBHost     string `yaml:"db_host"`
	DBPort     int    `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	RedisHost     string `yaml:"redis_host"`
	RedisPort     int    `yaml:"redis_port"`
	RedisPassword string `yaml:"redis_password"`
}

// Default returns the settings used when neither a file nor the environment says otherwise.
func Default() Config {
	return Config{
		Port:         3004,
		StaticDir:    "static",
		LogDir:       "logs",
		SecretKey:    "secret",
		TokenTTL:     time.Hour,
		SessionTTL:   14 * 24 * time.Hour,
		RateLimitMax: 100,
		DBHost:       "localhost",
		DBPort:       5432,
		DBUser:       "postgres",
		DBName:       "taskly",
		RedisPort:    6379,
	}
}

// LoadConfig layers defaults, the YAML file at path (or taskly.yaml when path is empty and the
// file exists), .env and the process environment, in that order.
func LoadConfig(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Muat file .env
	if err := godotenv.Load(); err != nil {
		// Hanya log jika tidak dalam mode test
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using config file and defaults")
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.DBHost, "DB_HOST")
	setInt(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.RedisHost, "REDIS_HOST")
	setInt(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.SecretKey, "SECRET_KEY")
	setInt(&cfg.Port, "PORT")
	setBool(&cfg.Debug, "DEBUG")
	setString(&cfg.StaticDir, "STATIC_DIR")
	setString(&cfg.LogDir, "LOG_DIR")
	setBool(&cfg.EnforceOwnership, "ENFORCE_OWNERSHIP")
	setInt(&cfg.RateLimitMax, "RATE_LIMIT_MAX")
	setBool(&cfg.SecureCookies, "SECURE_COOKIES")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Unparseable numbers keep the previous value, same as a missing variable.
func setInt(dst *int, key string) {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = n
	}
}

func setBool(dst *bool, key string) {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = b
	}
}

// DSN is the lib/pq connection string for the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
