package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds everything the server reads from the environment. Load fails
// the process immediately when a required value is missing so a misconfigured
// deployment never starts serving traffic.
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	FrontendURL string

	// Identity provider (Clerk)
	ClerkSecretKey string
	ClerkAPIURL    string

	// Media store (Cloudinary)
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	// Optional SMTP settings for admin notifications
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	AdminEmail string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, relying on process environment")
	}

	cfg := Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DB_URL"),
		FrontendURL: os.Getenv("FRONTEND_URL"),

		ClerkSecretKey: os.Getenv("CLERK_SECRET_KEY"),
		ClerkAPIURL:    getEnv("CLERK_API_URL", "https://api.clerk.com"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		SMTPHost:   os.Getenv("SMTP_HOST"),
		SMTPPort:   os.Getenv("SMTP_PORT"),
		SMTPUser:   os.Getenv("SMTP_USER"),
		SMTPPass:   os.Getenv("SMTP_PASS"),
		AdminEmail: os.Getenv("ADMIN_EMAIL"),
	}

	required := map[string]string{
		"DB_URL":                cfg.DatabaseURL,
		"CLERK_SECRET_KEY":      cfg.ClerkSecretKey,
		"CLOUDINARY_CLOUD_NAME": cfg.CloudinaryCloudName,
		"CLOUDINARY_API_KEY":    cfg.CloudinaryAPIKey,
		"CLOUDINARY_API_SECRET": cfg.CloudinaryAPISecret,
	}
	for name, value := range required {
		if value == "" {
			logrus.Fatalf("missing required environment variable %s", name)
		}
	}

	if !validPostgresURL(cfg.DatabaseURL) {
		logrus.Fatalf("DB_URL does not look like a postgres connection string")
	}

	return cfg
}

// IsProduction reports whether the server runs with production settings
// (restricted CORS, generic 500 bodies).
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func validPostgresURL(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
