package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_MAX_CONNS", "OPENAI_MODEL", "OPENAI_MAX_TOKENS", "SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 500, cfg.LLM.MaxTokens)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/inboxpilot_test")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("OPENAI_TIMEOUT", "10s")

	cfg := LoadConfig()

	assert.Equal(t, "postgres://localhost/inboxpilot_test", cfg.Database.DSN)
	assert.Equal(t, int32(7), cfg.Database.MaxConns)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout)
}

func TestLoadConfig_UnparsableValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "plenty")
	t.Setenv("OPENAI_TIMEOUT", "soonish")

	cfg := LoadConfig()

	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{DSN: "postgres://localhost/db"},
			Server:   ServerConfig{Addr: ":8080"},
			Auth:     AuthConfig{SecretKey: "s3cret"},
		}
	}

	require.NoError(t, valid().Validate())

	c := valid()
	c.Database.DSN = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.Auth.SecretKey = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.Server.Addr = ""
	assert.Error(t, c.Validate())
}
