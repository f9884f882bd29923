package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	AppURL  string
	JWTKey  []byte
	JWTExp  time.Duration

	DatabaseURL   string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBConnStr     string
	DBAutoMigrate bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AuthRateLimitMax    int
	AuthRateLimitWindow time.Duration

	GitHubClientID     string
	GitHubClientSecret string

	LeaderPasswordLength int
	MemberPasswordLength int
	TeamPasswordLength   int

	SeedFile      string
	AdminEmail    string
	AdminPassword string

	CORSAllowedOrigins []string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current process environment without touching .env files.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:              getEnv("API_PORT", "8080"),
		AppURL:               strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		JWTKey:               []byte(getEnv("JWT_SECRET", "change-me-quickhacker")),
		JWTExp:               time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "postgres"),
		DBPassword:           getEnv("DB_PASSWORD", "postgres"),
		DBName:               getEnv("DB_NAME", "quickhacker"),
		DBSslMode:            getEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate:        getEnvAsBool("DB_AUTO_MIGRATE", true),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		AuthRateLimitMax:     getEnvAsInt("RATE_LIMIT_AUTH_MAX", 10),
		AuthRateLimitWindow:  time.Duration(getEnvAsInt("RATE_LIMIT_AUTH_WINDOW_SECONDS", 300)) * time.Second,
		GitHubClientID:       getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret:   getEnv("GITHUB_CLIENT_SECRET", ""),
		LeaderPasswordLength: getEnvAsInt("LEADER_PASSWORD_LENGTH", 12),
		MemberPasswordLength: getEnvAsInt("MEMBER_PASSWORD_LENGTH", 10),
		TeamPasswordLength:   getEnvAsInt("TEAM_PASSWORD_LENGTH", 12),
		SeedFile:             getEnv("SEED_FILE", ""),
		AdminEmail:           getEnv("ADMIN_EMAIL", ""),
		AdminPassword:        getEnv("ADMIN_PASSWORD", ""),
		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	cfg.DBConnStr = cfg.DatabaseURL
	if cfg.DBConnStr == "" {
		cfg.DBConnStr = "host=" + cfg.DBHost +
			" port=" + cfg.DBPort +
			" user=" + cfg.DBUser +
			" password=" + cfg.DBPassword +
			" dbname=" + cfg.DBName +
			" sslmode=" + cfg.DBSslMode
	}
	return cfg
}

// GitHubEnabled reports whether both OAuth client credentials are configured.
func (c *Config) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
