package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env         string    `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer  `yaml:"http_server"`
	DB          DB        `yaml:"db"`
	Snapshot    Snapshot  `yaml:"snapshot"`
	Dashboard   Dashboard `yaml:"dashboard"`
	CORSOrigins []string  `yaml:"cors_origins" env:"CORS_ORIGINS" env-default:"http://localhost:5173"`
	FrontendDir string    `yaml:"frontend_dir" env:"FRONTEND_DIR" env-default:"./frontend-dist"`
	ErrorLog    string    `yaml:"error_log" env:"ERROR_LOG" env-default:"errors.log"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"30s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DB — подключение к базе Odoo под read-only пользователем.
type DB struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-required:"true"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	MaxConns int32  `yaml:"max_conns" env-default:"4"`
}

type Snapshot struct {
	TTL time.Duration `yaml:"ttl" env:"SNAPSHOT_TTL" env-default:"600s"`
	// 0 — прогрев выключен, снимок грузится по первому запросу после истечения TTL.
	WarmInterval time.Duration `yaml:"warm_interval" env:"SNAPSHOT_WARM_INTERVAL" env-default:"0s"`
}

type Dashboard struct {
	Variant             string `yaml:"variant" env:"DASHBOARD_VARIANT" env-default:"full"`
	TopN                int    `yaml:"top_n" env-default:"10"`
	MovingAverageWindow int    `yaml:"moving_average_window" env-default:"7"`
	ForecastDays        int    `yaml:"forecast_days" env-default:"30"`
}

// Load reads the yaml file at path and applies environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustConfig() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return cfg
}
