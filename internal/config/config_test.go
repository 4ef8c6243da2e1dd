package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "access")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4242, cfg.Port)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.False(t, cfg.IsDevelopment(), "stack traces stay hidden unless APP_ENV says otherwise")
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", EnvDevelopment)
	t.Setenv("JWT_ACCESS_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.JWTAccessTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing access secret", env: map[string]string{"JWT_REFRESH_SECRET": "r"}, want: "JWT_ACCESS_SECRET is required"},
		{name: "missing refresh secret", env: map[string]string{"JWT_ACCESS_SECRET": "a"}, want: "JWT_REFRESH_SECRET is required"},
		{name: "bad port", env: map[string]string{"JWT_ACCESS_SECRET": "a", "JWT_REFRESH_SECRET": "r", "PORT": "http"}, want: "parse PORT"},
		{name: "bad ttl", env: map[string]string{"JWT_ACCESS_SECRET": "a", "JWT_REFRESH_SECRET": "r", "JWT_REFRESH_TTL": "week"}, want: "parse JWT_REFRESH_TTL"},
		{name: "bad env", env: map[string]string{"JWT_ACCESS_SECRET": "a", "JWT_REFRESH_SECRET": "r", "APP_ENV": "staging"}, want: "APP_ENV must be"},
		{name: "bad cost", env: map[string]string{"JWT_ACCESS_SECRET": "a", "JWT_REFRESH_SECRET": "r", "BCRYPT_COST": "2"}, want: "BCRYPT_COST must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_ACCESS_SECRET", "")
			t.Setenv("JWT_REFRESH_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
