package main

import (
	"log"

	"github.com/selamgames/bingo-engine/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if _, err := config.SetupDatabase(cfg.DatabaseURL); err != nil {
		log.Fatalf("[FATAL] Migration failed: %v", err)
	}
	log.Println("Database migration completed successfully")
}
