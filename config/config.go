package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"demand-forecast-api/models"
)

type Config struct {
	Server  ServerConfig
	Model   ModelConfig
	History HistoryConfig
	Redis   RedisConfig
	CORS    CORSConfig
	Inputs  models.InputDefaults
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type ModelConfig struct {
	Path         string
	URL          string
	FeatureNames []string
	Timeout      time.Duration
	ReadyTimeout time.Duration
}

type HistoryConfig struct {
	CSVPath        string
	DSN            string
	Table          string
	ReferenceYears []int
}

type RedisConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Password        string
	DB              int
	ConnectAttempts int
	CacheTTL        time.Duration
	Channel         string
}

type CORSConfig struct {
	AllowedOrigins string
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func LoadConfig() (*Config, error) {
	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	shutdown, err := getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	modelTimeout, err := getDurationEnv("MODEL_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_TIMEOUT: %w", err)
	}
	modelReady, err := getDurationEnv("MODEL_READY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid MODEL_READY_TIMEOUT: %w", err)
	}

	years, err := getIntListEnv("REFERENCE_YEARS", []int{2022, 2023, 2024})
	if err != nil {
		return nil, fmt.Errorf("invalid REFERENCE_YEARS: %w", err)
	}

	redisEnabled, err := getBoolEnv("REDIS_ENABLED", false)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_ENABLED: %w", err)
	}
	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	redisAttempts, err := getIntEnv("REDIS_CONNECT_ATTEMPTS", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_CONNECT_ATTEMPTS: %w", err)
	}
	cacheTTL, err := getDurationEnv("PREDICTION_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid PREDICTION_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            serverPort,
			ShutdownTimeout: shutdown,
		},
		Model: ModelConfig{
			Path:         getEnv("MODEL_PATH", "models/xgb_model.json"),
			URL:          os.Getenv("MODEL_URL"),
			FeatureNames: getListEnv("MODEL_FEATURES", nil),
			Timeout:      modelTimeout,
			ReadyTimeout: modelReady,
		},
		History: HistoryConfig{
			CSVPath:        getEnv("HISTORY_CSV", "data/processed/dataset_consulta.csv"),
			DSN:            os.Getenv("HISTORY_DSN"),
			Table:          getEnv("HISTORY_TABLE", "demanda_historica"),
			ReferenceYears: years,
		},
		Redis: RedisConfig{
			Enabled:         redisEnabled,
			Host:            getEnv("REDIS_HOST", "localhost"),
			Port:            redisPort,
			Password:        os.Getenv("REDIS_PASSWORD"),
			DB:              redisDB,
			ConnectAttempts: redisAttempts,
			CacheTTL:        cacheTTL,
			Channel:         getEnv("REDIS_CHANNEL", "demand:predictions"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Inputs: models.DefaultInputs(),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.History.ReferenceYears) == 0 {
		return errors.New("at least one reference year is required")
	}
	in := c.Inputs
	if in.Hour < 0 || in.Hour > 23 {
		return fmt.Errorf("default hora %d out of range 0-23", in.Hour)
	}
	if in.Month < 1 || in.Month > 12 {
		return fmt.Errorf("default mes %d out of range 1-12", in.Month)
	}
	if in.Weekday < 1 || in.Weekday > 7 {
		return fmt.Errorf("default dia_semana %d out of range 1-7", in.Weekday)
	}
	for _, d := range []float64{in.DemandLag1, in.DemandLag24, in.DemandLag168, in.MovingAvg24h} {
		if d < 0 {
			return fmt.Errorf("default demand %v must not be negative", d)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func getDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func getListEnv(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getIntListEnv(key string, fallback []int) ([]int, error) {
	items := getListEnv(key, nil)
	if items == nil {
		return fallback, nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, err := strconv.Atoi(item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
