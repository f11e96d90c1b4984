package main

import (
	"banking_backend/internal/config" // Custom import path (Config)
	"banking_backend/internal/db"     // Custom import path (Database)
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())      // Run schema migration
}
