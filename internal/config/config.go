package config

import (
	"os"
)

type Config struct {
	APIURL       string
	WSURL        string
	CredsPath    string
	HistoryLimit string
}

func Load() *Config {
	return &Config{
		APIURL:       getEnv("GTFLOW_API_URL", "http://localhost:8000"),
		WSURL:        getEnv("GTFLOW_WS_URL", "ws://localhost:8000"),
		CredsPath:    getEnv("GTFLOW_CREDENTIALS", ""),
		HistoryLimit: getEnv("GTFLOW_HISTORY_LIMIT", "50"),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
