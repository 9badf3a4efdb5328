package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBURL     string
	HTTPPort  string
	JWTSecret string
	UploadDir string
	CDNBase   string
	AdminKey  string
	Env       string
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	cfg := &Config{
		DBURL:     os.Getenv("DB_URL"),     // e.g., postgres://user:pass@db:5432/medhire
		HTTPPort:  os.Getenv("HTTP_PORT"),  // e.g., :8080
		JWTSecret: os.Getenv("JWT_SECRET"), // token signing key
		UploadDir: os.Getenv("UPLOAD_DIR"), // e.g., uploads
		CDNBase:   os.Getenv("CDN_BASE"),   // e.g., https://cdn.example.com
		AdminKey:  os.Getenv("ADMIN_KEY"),  // verification review key; empty keeps the surface closed
		Env:       os.Getenv("APP_ENV"),    // development | production
	}
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = ":8080"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	return cfg, nil
}

func (c *Config) Development() bool {
	return c.Env == "development"
}
