package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	LogMode       string // "dev" ou "prod"

	// chemin du descripteur de schéma de risques_probabilites,
	// vide = toutes les colonnes facultatives présentes
	SchemaDescripteur string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:             os.Getenv("DB_DSN"),
		ServerPort:        os.Getenv("SERVER_PORT"),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		LogMode:           os.Getenv("LOG_MODE"),
		SchemaDescripteur: os.Getenv("SCHEMA_DESCRIPTEUR"),
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}
	if cfg.LogMode == "" {
		cfg.LogMode = "dev"
	}

	return cfg
}
