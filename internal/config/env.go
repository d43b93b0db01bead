package config

import (
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Env struct {
	AppAddr string `yaml:"app_addr" env:"APP_ADDR" env-default:":4000"`
	GinMode string `yaml:"gin_mode" env:"GIN_MODE"`
	// IANA zone for trip dates and tickets; falls back to UTC+05:30.
	AppTimezone string `yaml:"app_timezone" env:"APP_TIMEZONE" env-default:"Asia/Colombo"`

	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     string `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBUser     string `yaml:"db_user" env:"DB_USER" env-default:"root"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD"`
	DBName     string `yaml:"db_name" env:"DB_NAME" env-default:"bus_booking"`
	// MySQL time_zone offset, Sri Lanka by default.
	DBTimezone string `yaml:"db_timezone" env:"DB_TIMEZONE" env-default:"+05:30"`

	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"change-me-in-production"`
	JWTTTL    time.Duration `yaml:"jwt_ttl" env:"JWT_TTL" env-default:"168h"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`

	RedisAddr    string   `yaml:"redis_addr" env:"REDIS_ADDR"`
	KafkaBrokers []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `yaml:"kafka_topic" env:"KAFKA_TOPIC" env-default:"booking-events"`

	MetricsEnabled bool          `yaml:"metrics_enabled" env:"METRICS_ENABLED" env-default:"true"`
	StatsCacheTTL  time.Duration `yaml:"stats_cache_ttl" env:"STATS_CACHE_TTL" env-default:"30s"`
}

// LoadEnv reads config.yaml when present; environment variables always win.
func LoadEnv() Env {
	var env Env
	if err := cleanenv.ReadConfig("config.yaml", &env); err != nil {
		if err := cleanenv.ReadEnv(&env); err != nil {
			log.Fatalf("[CONFIG] failed to read configuration: %v", err)
		}
	}
	env.AppAddr = strings.TrimSpace(env.AppAddr)
	env.GinMode = strings.TrimSpace(env.GinMode)
	env.CORSAllowedOrigins = trimAll(env.CORSAllowedOrigins)
	env.KafkaBrokers = trimAll(env.KafkaBrokers)
	return env
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
