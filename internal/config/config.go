package config

import (
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL        string
	RedisURL           string
	KafkaBrokers       string
	NatsURL            string
	Port               string
	DeterministicFraud bool
	RemoteFraudCheck   bool
}

func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	deterministicFraud, _ := strconv.ParseBool(os.Getenv("FRAUD_DETERMINISTIC"))
	remoteFraudCheck, _ := strconv.ParseBool(os.Getenv("FRAUD_REMOTE"))

	return &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		NatsURL:            natsURL,
		Port:               port,
		DeterministicFraud: deterministicFraud,
		RemoteFraudCheck:   remoteFraudCheck,
	}
}
