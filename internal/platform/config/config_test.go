package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("GITHUB_CLIENT_ID", "")

	cfg := FromEnv()

	assert.Equal(t, 24*time.Hour, cfg.JWTExp)
	assert.Equal(t, 12, cfg.LeaderPasswordLength)
	assert.Equal(t, 10, cfg.MemberPasswordLength)
	assert.Contains(t, cfg.DBConnStr, "dbname=quickhacker")
	assert.False(t, cfg.GitHubEnabled())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/hack")
	t.Setenv("JWT_EXPIRATION_HOURS", "168")
	t.Setenv("APP_URL", "https://hack.example.org/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.org, https://b.example.org,")
	t.Setenv("GITHUB_CLIENT_ID", "id")
	t.Setenv("GITHUB_CLIENT_SECRET", "secret")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg := FromEnv()

	assert.Equal(t, "postgres://u:p@db:5432/hack", cfg.DBConnStr)
	assert.Equal(t, 168*time.Hour, cfg.JWTExp)
	assert.Equal(t, "https://hack.example.org", cfg.AppURL)
	assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.GitHubEnabled())
	assert.False(t, cfg.DBAutoMigrate)
}
