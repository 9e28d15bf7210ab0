package config

import "os"

type Config struct {
	Addr        string
	DatabaseURL string
	JWTSecret   string
	UploadDir   string
}

func Load() Config {
	return Config{
		Addr:        envOr("CATALOG_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		UploadDir:   envOr("UPLOAD_DIR", "./uploads"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
