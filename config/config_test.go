package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lizet96/medibot-backend/config"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TTS_ORDER", "")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, config.BlobGridFS, cfg.Blob.Backend)
	assert.Equal(t, "test", cfg.Mongo.Database)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "whisper-large-v3", cfg.AI.Groq.STTModel)
	assert.Equal(t, []string{"elevenlabs", "huggingface", "google", "voicerss"}, cfg.AI.TTSOrder)
	assert.Equal(t, 15*time.Second, cfg.AI.TTSTimeout)
	assert.Equal(t, 30, cfg.Log.RetentionDays)
	assert.NotEmpty(t, cfg.Auth.JWTSecret, "development gets a throwaway secret")
}

func TestLoad_FileExpandsEnvAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: "9000"
  base_url: "https://medibot.example.com/"
blob:
  backend: s3
  s3_bucket: uploads
ai:
  groq:
    api_key: ${TEST_GROQ_KEY}
  tts_order: [google, voicerss]
  tts_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TEST_GROQ_KEY", "gsk-from-env")
	t.Setenv("PORT", "7000")
	t.Setenv("TTS_ORDER", "")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port, "env wins over file")
	assert.Equal(t, "https://medibot.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "gsk-from-env", cfg.AI.Groq.APIKey)
	assert.Equal(t, []string{"google", "voicerss"}, cfg.AI.TTSOrder)
	assert.Equal(t, 5*time.Second, cfg.AI.TTSTimeout)
	assert.Equal(t, config.BlobS3, cfg.Blob.Backend)
}

func TestLoad_TTSOrderFromEnv(t *testing.T) {
	t.Setenv("TTS_ORDER", " Google , voicerss,, ")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"google", "voicerss"}, cfg.AI.TTSOrder)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{
			name:   "valid memory backend",
			mutate: func(c *config.Config) {},
		},
		{
			name:    "unknown tts provider",
			mutate:  func(c *config.Config) { c.AI.TTSOrder = []string{"google", "pyttsx3"} },
			wantErr: `unknown tts provider "pyttsx3"`,
		},
		{
			name:    "unknown blob backend",
			mutate:  func(c *config.Config) { c.Blob.Backend = "ftp" },
			wantErr: `unknown blob backend "ftp"`,
		},
		{
			name:    "gridfs needs mongo",
			mutate:  func(c *config.Config) { c.Blob.Backend = config.BlobGridFS },
			wantErr: "MONGO_CONN is required",
		},
		{
			name:    "missing secret",
			mutate:  func(c *config.Config) { c.Auth.JWTSecret = "" },
			wantErr: "JWT_SECRET is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Database: config.DatabaseConfig{URL: "postgres://localhost/medibot"},
				Blob:     config.BlobConfig{Backend: config.BlobMemory},
				Auth:     config.AuthConfig{JWTSecret: "s3cret"},
				AI:       config.AIConfig{TTSOrder: []string{"google"}},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
