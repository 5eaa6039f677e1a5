// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек всех сервисов.
type Config struct {
	Env                     string        `yaml:"env" env-default:"local"`
	StorageConnectionString string        `yaml:"storage_connection_string"`
	RabbitMQURL             string        `yaml:"rabbitmq_url"`
	RabbitMQMaxRetries      int           `yaml:"rabbitmq_max_retries" env-default:"10"`
	RabbitMQRetryDelay      time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	SMTP                    `yaml:"smtp"`
	SMSGateway              `yaml:"sms_gateway"`
	PaymentProvider         `yaml:"payment_provider"`
	Scheduler               `yaml:"scheduler"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
}

// SMTP настройки исходящей почты. Пустые Host или User означают,
// что канал не настроен и работает в демо-режиме.
type SMTP struct {
	SMTPHost string `yaml:"smtp_host"`
	SMTPPort string `yaml:"smtp_port" env-default:"587"`
	SMTPUser string `yaml:"smtp_user"`
	SMTPPass string `yaml:"smtp_pass"`
}

// SMSGateway настройки REST-шлюза для отправки SMS.
// Пустые Username или Password означают демо-режим.
type SMSGateway struct {
	SMSGatewayURL string `yaml:"sms_gateway_url"`
	SMSUsername   string `yaml:"sms_username"`
	SMSPassword   string `yaml:"sms_password"`
	SMSFrom       string `yaml:"sms_from"`
}

// PaymentProvider настройки платёжного провайдера.
type PaymentProvider struct {
	MerchantID    string `yaml:"merchant_id"`
	PaymentAPIURL string `yaml:"payment_api_url"`
	CallbackURL   string `yaml:"callback_url"`
	SuccessURL    string `yaml:"success_url"`
	CancelledURL  string `yaml:"cancelled_url"`
	FailedURL     string `yaml:"failed_url"`
}

// Scheduler настройки планировщика напоминаний.
type Scheduler struct {
	Timezone      string        `yaml:"timezone" env-default:"UTC"`
	DailyHour     int           `yaml:"daily_hour" env-default:"9"`
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"6h"`
}

// MustLoad загружает конфиг из файла, указанного в CONFIG_PATH.
// При любой ошибке завершает процесс.
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
