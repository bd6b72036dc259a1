package config

import (
	"os"
)

type Config struct {
	ServerPort    string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	JWTSecret     string
	EncryptionKey string
	SolanaRPCURL  string
}

func Load() *Config {
	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "ember"),
		DBPassword:    getEnv("DB_PASSWORD", "ember_dev_password"),
		DBName:        getEnv("DB_NAME", "ember"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		EncryptionKey: getEnv("ENCRYPTION_KEY", "dev-encryption-key-change-me"),
		SolanaRPCURL:  getEnv("SOLANA_RPC_URL", "https://api.devnet.solana.com"),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}
