package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	UserRepo     string `env:"POSTGRES_USER" env-default:"postgres"`
	PasswordRepo string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	HostRepo     string `env:"POSTGRES_HOST" env-default:"localhost"`
	PortRepo     string `env:"POSTGRES_PORT" env-default:"5432"`
	DBName       string `env:"POSTGRES_DB" env-default:"campuseats"`
	SSLMode      string `env:"POSTGRES_SSLMODE" env-default:"disable"`

	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`

	JWTSecret string `env:"JWT_SECRET" env-required:"true"`

	CORSOrigins string `env:"CORS_ORIGINS" env-default:"http://localhost:3000,http://localhost:5173"`
}

// MustLoad читает конфигурацию из окружения (и .env, если он есть) и
// паникует при некорректных значениях.
func MustLoad() *Config {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read config: " + err.Error())
	}
	return &cfg
}
