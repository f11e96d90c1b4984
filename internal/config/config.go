package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort        string // Application port
	DBUser         string // Database user
	DBPassword     string // Database password
	DBHost         string // Database host
	DBPort         string // Database port
	DBName         string // Database name
	RedisAddr      string // Redis server address
	RedisPass      string // Redis password
	RedisDB        int    // Redis database number
	SessionSecret  string // HMAC secret for session cookie tokens
	GoogleClientID string // OAuth client id the ID tokens must be issued for
	CookieDomain   string // Domain attribute of the session cookie
	DevMode        bool   // Bypass authentication with a fixed dev user
	DevUserEmail   string // Email of the fixed dev user
	DevUserName    string // Display name of the fixed dev user
	IsProd         bool   // Is production environment
}

// DSN builds the MySQL data source name for GORM
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	cfg := &Config{
		AppPort:        os.Getenv("APP_PORT"),          // Application port
		DBUser:         os.Getenv("DB_USER"),           // Database user
		DBPassword:     os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:         os.Getenv("DB_HOST"),           // Database host
		DBPort:         os.Getenv("DB_PORT"),           // Database port
		DBName:         os.Getenv("DB_NAME"),           // Database name
		RedisAddr:      os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:      os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:        redisDB,                        // Redis database number
		SessionSecret:  os.Getenv("SESSION_SECRET"),    // Session token secret
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),  // Google OAuth client id
		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),     // Session cookie domain
		DevMode:        os.Getenv("DEV_MODE") == "true",
		DevUserEmail:   os.Getenv("DEV_USER_EMAIL"),
		DevUserName:    os.Getenv("DEV_USER_NAME"),
		IsProd:         os.Getenv("IS_PROD") == "true", // Is production environment
	}
	if cfg.DevUserEmail == "" {
		cfg.DevUserEmail = "dev@localhost" // Fallback dev identity
	}
	if cfg.DevUserName == "" {
		cfg.DevUserName = "Dev User"
	}
	return cfg
}
