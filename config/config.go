package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config is process-level configuration read from the environment.
type Config struct {
	DatabaseURL string
	Port        string
	RoomsFile   string
}

// Load reads .env (if present) and the environment. DATABASE_URL is
// required; everything else has a default.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Port:        os.Getenv("PORT"),
		RoomsFile:   os.Getenv("ROOMS_FILE"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required in .env or environment")
	}
	if cfg.Port == "" {
		cfg.Port = "4000"
	}
	if cfg.RoomsFile == "" {
		cfg.RoomsFile = "rooms.yaml"
	}
	return cfg, nil
}
