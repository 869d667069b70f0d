package config

import (
	"os"
	"strconv"
	"time"
)

type InsuranceServiceConfig struct {
	Port          string
	LogDir        string
	SweepInterval time.Duration
	SweepBatch    int
	PostgresCfg   PostgresConfig
	RabbitMQCfg   RabbitMQConfig
	RedisCfg      RedisConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
	Enabled  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func New() *InsuranceServiceConfig {
	return &InsuranceServiceConfig{
		Port:          getEnvOrDefault("PORT", "8086"),
		LogDir:        getEnvOrDefault("LOG_DIR", "/insurance-service/log"),
		SweepInterval: getEnvDurationOrDefault("EXPIRY_SWEEP_INTERVAL", time.Minute),
		SweepBatch:    getEnvIntOrDefault("EXPIRY_SWEEP_BATCH", 200),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "insurance_service"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
			Enabled:  getEnvOrDefault("RABBITMQ_ENABLED", "true") == "true",
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
