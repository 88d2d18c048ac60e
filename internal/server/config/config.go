// Package config собирает настройки сервера из нескольких источников.
// Порядок (каждый следующий перекрывает предыдущий): значения по умолчанию,
// файл .env, JSON файл (-c / -config), переменные окружения BUDGET_*, флаги.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Драйверы хранилища
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SMTP параметры отправки писем активации. Пустой Host - письма только логируются.
type SMTP struct {
	Host     string
	Username string
	Password string
	From     string
	Port     int
}

// S3 параметры выгрузки отчетов. Пустой Bucket отключает экспорт.
type S3 struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	URLExpiry time.Duration
}

// Config настройки сервера
type Config struct {
	SMTP             SMTP
	S3               S3
	Addr             string
	Driver           string
	DSN              string
	JWTSecret        string
	JWTIssuer        string
	JWTAudience      string
	PublicURL        string // базовый адрес для ссылок активации
	LogLevel         string
	LogFormat        string
	EnvFile          string
	CleanupInterval  time.Duration
	RateWindow       time.Duration
	ShutdownTimeout  time.Duration
	JWTExpiryMinutes int
	RateLimit        int
}

// Defaults значения для локального запуска. JWTSecret намеренно пуст.
func Defaults() *Config {
	return &Config{
		Addr:             ":8080",
		Driver:           DriverSQLite,
		DSN:              "budgetkeeper.db",
		JWTIssuer:        "budgetkeeper",
		JWTAudience:      "budgetkeeper-api",
		JWTExpiryMinutes: 60,
		PublicURL:        "http://localhost:8080",
		LogLevel:         "info",
		LogFormat:        "json",
		EnvFile:          ".env",
		CleanupInterval:  time.Hour,
		RateLimit:        20,
		RateWindow:       time.Minute,
		ShutdownTimeout:  5 * time.Second,
		SMTP:             SMTP{Port: 587, From: "no-reply@budgetkeeper.local"},
		S3:               S3{Region: "us-east-1", URLExpiry: 15 * time.Minute},
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required.Error("must be set (BUDGET_JWT_SECRET or -jwt-secret)")),
		validation.Field(&c.JWTIssuer, validation.Required),
		validation.Field(&c.JWTAudience, validation.Required),
		validation.Field(&c.JWTExpiryMinutes, validation.Required, validation.Min(1)),
		validation.Field(&c.CleanupInterval, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.RateLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.RateWindow, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.ShutdownTimeout, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("json", "text")),
	)
}

// SlogLevel уровень логирования для slog
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ActivationURL адрес эндпоинта активации для писем
func (c *Config) ActivationURL() string {
	return strings.TrimRight(c.PublicURL, "/") + "/api/v1/auth/activate"
}

// ExportEnabled сообщает, настроена ли выгрузка отчетов в S3
func (c *Config) ExportEnabled() bool {
	return c.S3.Bucket != ""
}

// Load собирает конфигурацию из всех источников и проверяет ее.
// args - аргументы командной строки без имени программы.
func Load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	flags, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()

	envFile := cfg.EnvFile
	if v, ok := lookupEnv("BUDGET_ENV_FILE"); ok {
		envFile = v
	}
	if v, ok := flags.values["env-file"]; ok {
		envFile = v
	}
	cfg.EnvFile = envFile

	dotenv, err := readDotEnv(envFile)
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, func(key string) (string, bool) {
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", envFile, err)
	}

	if flags.configFile != "" {
		if err := applyJSONFile(cfg, flags.configFile); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, lookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	if err := flags.apply(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ErrHelp запрошена справка по флагам
var ErrHelp = errors.New("help requested")
