package config

import (
	"log"
	"os"

	"bakery-menu-api/cart"
	"bakery-menu-api/docstore"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

const (
	defaultJWTSecret      = "bakery_menu_super_secret_2024"
	defaultWhatsAppNumber = "918210936795"
)

// JWTSecret signs admin session tokens. Load resolves it from the
// environment once .env has been read; resolving at import time would
// miss values that only exist in the .env file.
var JWTSecret = []byte(defaultJWTSecret)

// AdminPasswordHash is the bcrypt hash of the shared admin password.
// ADMIN_PASSWORD_HASH takes precedence; otherwise ADMIN_PASSWORD (or its
// fallback) is hashed at startup by Load.
var AdminPasswordHash string

// WhatsAppNumber receives composed orders via the wa.me deep link
var WhatsAppNumber = defaultWhatsAppNumber

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnv exposes the env-with-fallback helper to other packages
func GetEnv(key, fallback string) string {
	return getEnv(key, fallback)
}

// Load reads .env (if present) and derives credentials
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	JWTSecret = []byte(getEnv("JWT_SECRET", defaultJWTSecret))
	WhatsAppNumber = getEnv("WHATSAPP_NUMBER", defaultWhatsAppNumber)

	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		AdminPasswordHash = hash
		return
	}
	password := getEnv("ADMIN_PASSWORD", "admin123")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash admin password:", err)
	}
	AdminPasswordHash = string(hash)
}

func InitDB() {
	var err error
	DB, err = gorm.Open(sqlite.Open(getEnv("DB_PATH", "bakery_menu.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := docstore.Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	if err := cart.Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("✅ Database connected and migrated successfully")
}
