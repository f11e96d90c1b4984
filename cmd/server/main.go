package main

import (
	"context" // context package is needed for the Redis ping
	"log"     // log package is needed for logging

	"banking_backend/internal/api"        // Custom package for API handlers
	"banking_backend/internal/auth"       // Token verification and sessions
	"banking_backend/internal/config"     // Custom package for configuration
	"banking_backend/internal/middleware" // Custom package for middleware
	"banking_backend/internal/service"    // Account service
	"banking_backend/internal/store"      // Ledger store

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Hard requirements that have no sane fallback
	if cfg.SessionSecret == "" {
		logrus.Fatal("SESSION_SECRET environment variable not set")
	}
	if !cfg.DevMode && cfg.GoogleClientID == "" {
		logrus.Fatal("GOOGLE_CLIENT_ID environment variable not set")
	}

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	ledger := store.NewLedger(db)                              // Ledger store
	accounts := service.NewAccounts(db)                        // Account service
	sessions := auth.NewSessions(redisClient, cfg.SessionSecret) // Session manager

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	r.GET("/", api.IndexHandler(ledger, sessions)) // Welcome endpoint

	// Identity resolution is a strategy: session cookies in normal
	// operation, one fixed user in dev mode. The /api routes below are
	// identical either way.
	var identity gin.HandlerFunc
	if cfg.DevMode {
		logrus.Warn("DEV_MODE enabled: authentication is bypassed")
		identity = middleware.DevUser(ledger, cfg.DevUserEmail, cfg.DevUserName)
	} else {
		verifier := &auth.GoogleVerifier{ClientID: cfg.GoogleClientID}
		identity = middleware.SessionAuth(sessions, ledger)
		// Auth routes only exist when authentication does
		r.POST("/auth/google_signin", api.GoogleSignInHandler(verifier, ledger, sessions, cfg.CookieDomain))
		r.POST("/auth/logout", identity, api.LogoutHandler(sessions, cfg.CookieDomain))
	}

	// Account routes (behind the identity strategy)
	apiGroup := r.Group("/api")
	apiGroup.Use(identity)
	apiGroup.GET("/profile", api.ProfileHandler(ledger))             // Profile endpoint
	apiGroup.GET("/account", api.AccountHandler(ledger))             // Account listing endpoint
	apiGroup.POST("/deposit", api.DepositHandler(ledger, accounts))  // Deposit endpoint
	apiGroup.POST("/withdraw", api.WithdrawHandler(ledger, accounts)) // Withdraw endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
