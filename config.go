package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI        string
	MongoDB         string
	Store           string // mongo | memory
	SoilGridsURL    string
	UpstreamTimeout time.Duration
	JWTSecret       string
	Port            string
}

func mustConfig() Config {
	// .env is optional
	_ = godotenv.Load()

	cfg := Config{
		MongoURI:        getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getenv("MONGO_DB", "krishimitra"),
		Store:           getenv("STORE", "mongo"),
		SoilGridsURL:    getenv("SOILGRIDS_URL", "https://rest.isric.org/soilgrids/v2.0"),
		UpstreamTimeout: getenvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		JWTSecret:       getenv("JWT_SECRET", "change_me"),
		Port:            getenv("PORT", "5000"),
	}

	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
		return d
	}
	return def
}
