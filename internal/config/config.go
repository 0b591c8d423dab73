// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек всех сервисов панели
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	IdentityProvider        `yaml:"identity_provider"`
	RabbitConnection        `yaml:"rabbit_connection"`
	SMTPConnection          `yaml:"smtp_connection"`
	Assignment              `yaml:"assignment"`
	Reconciler              `yaml:"reconciler"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном сессий сотрудников
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// IdentityProvider структура для доступа к внешнему провайдеру аутентификации
type IdentityProvider struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key"`
}

// RabbitConnection структура для настройки подключения к RabbitMQ
type RabbitConnection struct {
	ConnectionString string        `yaml:"connection_string"`
	Retries          int           `yaml:"retries" env-default:"5"`
	RetryDelay       time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTPConnection структура для отправки писем операторам
type SMTPConnection struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	SMTPUser      string `yaml:"smtp_user"`
	SMTPPassword  string `yaml:"smtp_password"`
	OperatorEmail string `yaml:"operator_email"`
}

// Assignment настройки воркфлоу назначения подписки
type Assignment struct {
	// PickMostRecent переключает join-движок с легаси-правила
	// "первая активная запись в порядке выборки" на выбор самой
	// свежей активной записи.
	PickMostRecent bool `yaml:"pick_most_recent" env-default:"false"`
}

// Reconciler настройки фоновой сверки указателей подписки с историей
type Reconciler struct {
	Interval time.Duration `yaml:"interval" env-default:"12h"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, при ошибке завершает процесс
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
