package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	GoogleProject  string
	StorageBucket  string
	Environment    string
	JWTSecret      string
	JWTExpiry      int64
	AdminEmail     string
	GeocoderURL    string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SMTPSender     string
	MailQueueSize  int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		GoogleProject: getEnv("GOOGLE_CLOUD_PROJECT", ""),
		StorageBucket: getEnv("STORAGE_BUCKET", ""),
		Environment:   getEnv("ENVIRONMENT", "development"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiry:     getEnvAsInt64("JWT_EXPIRY", 24*60*60), // 24 hours
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		GeocoderURL:   getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPSender:    getEnv("SMTP_SENDER", ""),
		MailQueueSize: int(getEnvAsInt64("MAIL_QUEUE_SIZE", 64)),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
