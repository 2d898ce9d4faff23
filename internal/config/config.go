package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/aliskhannn/lexiquiz/pkg/validator"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env          string       `mapstructure:"env" validate:"required"` // current application environment (local, dev, production etc)
	HTTP         HTTP         `mapstructure:"http"`
	Storage      Storage      `mapstructure:"storage"`
	DB           DB           `mapstructure:"database"` // database configuration section
	RecentWindow RecentWindow `mapstructure:"recent_window"`
	Redis        Redis        `mapstructure:"redis"`
	Quiz         Quiz         `mapstructure:"quiz"`
	Content      Content      `mapstructure:"content"`
	Telegram     Telegram     `mapstructure:"telegram"`
}

// HTTP contains the HTTP server settings.
type HTTP struct {
	Addr         string        `mapstructure:"addr" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`
}

// Storage selects where content, ledger and sessions live.
type Storage struct {
	Backend string `mapstructure:"backend" validate:"oneof=postgres memory"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                                // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections" validate:"min=1"` // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`                // maximum lifetime of a single connection
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// RecentWindow configures the recent question window.
type RecentWindow struct {
	Backend string `mapstructure:"backend" validate:"oneof=postgres redis memory"`
	Size    int    `mapstructure:"size" validate:"min=1,max=100"` // number of presented rounds remembered per user
}

// Redis contains the Redis connection settings.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"-"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

// Quiz contains the quiz engine rules.
type Quiz struct {
	DefaultQuestionCount   int                `mapstructure:"default_question_count" validate:"min=1"`
	MaxQuestionCount       int                `mapstructure:"max_question_count" validate:"min=1,gtefield=DefaultQuestionCount"`
	MasteryThreshold       int                `mapstructure:"mastery_threshold" validate:"min=1"`
	AllowShortQuiz         bool               `mapstructure:"allow_short_quiz"`
	CategoryDistribution   map[string]int     `mapstructure:"category_distribution" validate:"dive,min=0"`
	DifficultyDistribution map[string]float64 `mapstructure:"difficulty_distribution" validate:"dive,min=0,max=1"`
}

// Content points to the seed files loaded into the content store at startup.
type Content struct {
	SeedPath string `mapstructure:"seed_path"`
}

// Telegram contains the bot settings.
type Telegram struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"-"` // Telegram API token loaded from environment
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Load reads configuration from .env, config files and environment variables.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.Telegram.Token = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")
	cfg.Redis.Password = v.GetString("redis_password")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the field rules and the settings that depend on each other.
func (c *Config) Validate() error {
	if err := validator.ValidateStruct(c); err != nil {
		return err
	}

	needsDB := c.Storage.Backend == BackendPostgres || c.RecentWindow.Backend == BackendPostgres
	if needsDB && c.DB.URL == "" {
		return fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}
	if c.RecentWindow.Backend == BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required for the redis recent window")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Set default values for configuration keys.
	v.SetDefault("env", "local")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")

	v.SetDefault("storage.backend", BackendPostgres)

	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("database.connect_timeout", "5s")

	v.SetDefault("recent_window.backend", BackendPostgres)
	v.SetDefault("recent_window.size", 5)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("quiz.default_question_count", 20)
	v.SetDefault("quiz.max_question_count", 50)
	v.SetDefault("quiz.mastery_threshold", 2)
	v.SetDefault("quiz.allow_short_quiz", true)
	v.SetDefault("quiz.category_distribution", map[string]int{
		"synonym":       4,
		"antonym":       4,
		"word_meaning":  4,
		"fill_in_blank": 3,
		"analogy":       3,
		"odd_one_out":   2,
	})
	v.SetDefault("quiz.difficulty_distribution", map[string]float64{
		"easy":   0.4,
		"medium": 0.4,
		"hard":   0.2,
	})

	v.SetDefault("content.seed_path", "")

	v.SetDefault("telegram.enabled", false)
}
