package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"DB_DRIVER", "DB_URL", "OCR_LANG", "WORKERS", "SIMILARITY_FLOOR", "PROCESS_TIMEOUT"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "spa", cfg.OCR.Language)
	assert.Equal(t, "tesseract", cfg.OCR.Engine)
	assert.Equal(t, 2, cfg.Worker.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Worker.ProcessTimeout)
	assert.InDelta(t, 0.70, cfg.Extract.SimilarityFloor, 1e-9)
	assert.Equal(t, 2, cfg.Extract.MinLineLength)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", "file:test.db")
	t.Setenv("DB_MAX_CONNS", "7")
	t.Setenv("WORKERS", "5")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("SIMILARITY_FLOOR", "0.8")
	t.Setenv("OCR_DPI", "not-a-number")

	cfg := LoadConfig()
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
	assert.Equal(t, int32(7), cfg.Database.MaxConns)
	assert.Equal(t, 5, cfg.Worker.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Worker.PollInterval)
	assert.InDelta(t, 0.8, cfg.Extract.SimilarityFloor, 1e-9)
	assert.Equal(t, 300, cfg.OCR.DPI, "unparsable values fall back to the default")
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		c := LoadConfig()
		c.Database.Driver = "postgres"
		c.Database.DSN = "postgres://localhost/pricelist"
		c.OCR.Engine = "tesseract"
		c.Extract.MinLineLength = 2
		c.Extract.SimilarityFloor = 0.7
		c.Worker.Workers = 1
		c.Server.GRPCAddr = ":8080"
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"dsn", func(c *Config) { c.Database.DSN = "" }},
		{"grpc addr", func(c *Config) { c.Server.GRPCAddr = "" }},
		{"engine", func(c *Config) { c.OCR.Engine = "easyocr" }},
		{"min line length", func(c *Config) { c.Extract.MinLineLength = 0 }},
		{"floor", func(c *Config) { c.Extract.SimilarityFloor = 1.5 }},
		{"workers", func(c *Config) { c.Worker.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "CONFIG_ERROR", appErr.Code)
		})
	}
}
