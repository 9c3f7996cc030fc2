package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // Минуты
	} `yaml:"jwt"`

	Booking struct {
		SlotMinutes     int `yaml:"slot_minutes"`     // Гранулярность слота
		DefaultCapacity int `yaml:"default_capacity"` // Если у станции не задано num_grounds
		MaxAdvanceDays  int `yaml:"max_advance_days"` // Насколько вперед можно записаться
	} `yaml:"booking"`

	Recovery struct {
		TokenTTLMinutes      int `yaml:"token_ttl_minutes"`      // Время жизни токена восстановления
		MaxAttempts          int `yaml:"max_attempts"`           // Порог неудачных попыток
		AttemptWindowMinutes int `yaml:"attempt_window_minutes"` // Окно счетчика попыток
		MinAnswers           int `yaml:"min_answers"`            // Минимум ответов для доступности восстановления
	} `yaml:"recovery"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		log.Println("Загрузка из config.yaml (режим НЕ-тест)")

		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	log.Println("Загрузка конфигурации из ПЕРЕМЕННЫХ ОКРУЖЕНИЯ (режим теста)")

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60
	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")

	applyDefaults(&cfg)
	AppConfig = &cfg
}

// applyDefaults проставляет задокументированные значения по умолчанию,
// чтобы частичный config.yaml не ронял инварианты бронирований.
func applyDefaults(cfg *Config) {
	if cfg.Booking.SlotMinutes <= 0 {
		cfg.Booking.SlotMinutes = 30
	}
	if cfg.Booking.DefaultCapacity <= 0 {
		cfg.Booking.DefaultCapacity = 1
	}
	if cfg.Booking.MaxAdvanceDays <= 0 {
		cfg.Booking.MaxAdvanceDays = 90
	}
	if cfg.Recovery.TokenTTLMinutes <= 0 {
		cfg.Recovery.TokenTTLMinutes = 15
	}
	if cfg.Recovery.MaxAttempts <= 0 {
		cfg.Recovery.MaxAttempts = 5
	}
	if cfg.Recovery.AttemptWindowMinutes <= 0 {
		cfg.Recovery.AttemptWindowMinutes = 15
	}
	if cfg.Recovery.MinAnswers <= 0 {
		cfg.Recovery.MinAnswers = 2
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
