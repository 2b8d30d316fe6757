// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Gateway                 `yaml:"gateway"`
	SMTP                    `yaml:"smtp"`
	OddsAPI                 `yaml:"odds_api"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// RabbitMQ структура для настройки подключения к брокеру сообщений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"168h"`
}

// Gateway настройки платежного шлюза: ключи, адрес API и redirect-адреса
// для checkout-сессий.
type Gateway struct {
	GatewayAPIURL    string `yaml:"gateway_api_url" env-default:"https://api.paygate.example.com/v1"`
	GatewaySecretKey string `yaml:"gateway_secret_key" env:"GATEWAY_SECRET_KEY"`
	WebhookSecret    string `yaml:"webhook_secret" env:"GATEWAY_WEBHOOK_SECRET"`
	SuccessURL       string `yaml:"success_url" env-default:"https://www.fademebets.com/success.html?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL        string `yaml:"cancel_url" env-default:"https://www.fademebets.com/subscribe.html"`
}

// SMTP настройки почтового транспорта для воркера рассылки.
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass string `yaml:"smtp_pass" env:"SMTP_PASS"`
}

// OddsAPI настройки стороннего API с коэффициентами и таблицами лиг.
type OddsAPI struct {
	OddsAPIURL   string        `yaml:"odds_api_url" env-default:"https://api.the-odds-api.com/v4"`
	OddsAPIKey   string        `yaml:"odds_api_key" env:"ODDS_API_KEY"`
	OddsCacheTTL time.Duration `yaml:"odds_cache_ttl" env-default:"5m"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной CONFIG_PATH.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
