package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config конфигурация сервиса из переменных окружения (префикс AERIUM_)
type Config struct {
	Addr        string        `envconfig:"ADDR" default:":9091"`
	DatabaseURL string        `envconfig:"DATABASE_URL"`
	JWTSecret   string        `envconfig:"JWT_SECRET" default:"dev-secret"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	CORSOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON     bool          `envconfig:"LOG_JSON" default:"true"`
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("aerium", &c); err != nil {
		return nil, err
	}
	return &c, nil
}
