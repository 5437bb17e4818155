package config

import (
	"testing"
	"time"

	"cyoa-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		LLM:   LLMConfig{Provider: "openai", APIKey: "sk-test"},
		Image: ImageConfig{Backend: ImageBackendFreepik, FreepikAPIKey: "fp-test", PollInterval: 10 * time.Second, MaxWait: 600 * time.Second},
		Jobs:  JobsConfig{Dispatcher: DispatcherLocal},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing llm key", mutate: func(c *Config) { c.LLM.APIKey = "" }, wantErr: "LLM_API_KEY"},
		{name: "ollama without model", mutate: func(c *Config) { c.LLM.Provider = "ollama"; c.LLM.APIKey = "" }, wantErr: "LLM_MODEL"},
		{name: "ollama with model", mutate: func(c *Config) { c.LLM.Provider = "ollama"; c.LLM.APIKey = ""; c.LLM.Model = "llama3" }},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "cohere" }, wantErr: "LLM_PROVIDER"},
		{name: "missing freepik key", mutate: func(c *Config) { c.Image.FreepikAPIKey = "" }, wantErr: "FREEPIK_API_KEY"},
		{name: "imagen without google key", mutate: func(c *Config) { c.Image.Backend = ImageBackendImagen }, wantErr: "GOOGLE_API_KEY"},
		{name: "images disabled", mutate: func(c *Config) { c.Image.Backend = ImageBackendNone; c.Image.FreepikAPIKey = "" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Image.Backend = "dalle" }, wantErr: "IMAGE_BACKEND"},
		{name: "amqp without url", mutate: func(c *Config) { c.Jobs.Dispatcher = DispatcherAMQP }, wantErr: "RABBITMQ_URL"},
		{name: "unknown dispatcher", mutate: func(c *Config) { c.Jobs.Dispatcher = "kafka" }, wantErr: "JOBS_DISPATCHER"},
		{name: "zero poll interval", mutate: func(c *Config) { c.Image.PollInterval = 0 }, wantErr: "IMAGE_POLL_INTERVAL"},
		{name: "negative limits", mutate: func(c *Config) { c.Story.MaxNodes = -1 }, wantErr: "STORY_MAX_NODES"},
		{name: "stale sweep without timeout", mutate: func(c *Config) { c.Jobs.StaleAfter = time.Hour; c.Jobs.SweepInterval = time.Minute }, wantErr: "JOBS_STALE_AFTER"},
		{name: "stale sweep within timeout", mutate: func(c *Config) {
			c.Jobs.JobTimeout = time.Hour
			c.Jobs.StaleAfter = time.Hour
			c.Jobs.SweepInterval = time.Minute
		}, wantErr: "JOBS_STALE_AFTER"},
		{name: "stale sweep without interval", mutate: func(c *Config) { c.Jobs.JobTimeout = time.Hour; c.Jobs.StaleAfter = 2 * time.Hour }, wantErr: "JOBS_SWEEP_INTERVAL"},
		{name: "stale sweep enabled", mutate: func(c *Config) {
			c.Jobs.JobTimeout = time.Hour
			c.Jobs.StaleAfter = 2 * time.Hour
			c.Jobs.SweepInterval = time.Minute
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_API_KEY", "g-key")
	t.Setenv("IMAGE_BACKEND", "imagen")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("STORY_MAX_NODES", "40")
	t.Setenv("IMAGE_NODE_DELAY", "1500ms")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, ImageBackendImagen, cfg.Image.Backend)
	assert.Equal(t, 40, cfg.Story.MaxNodes)
	assert.Equal(t, 1500*time.Millisecond, cfg.Image.NodeDelay)
	assert.Equal(t, 2*time.Second, cfg.Image.StoryDelay)
	assert.Equal(t, 10*time.Second, cfg.Image.PollInterval)
	assert.Equal(t, 600*time.Second, cfg.Image.MaxWait)
	assert.Equal(t, 30*time.Second, cfg.Image.RateLimitBackoff)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DispatcherLocal, cfg.Jobs.Dispatcher)
	assert.Equal(t, 2*time.Hour, cfg.Jobs.JobTimeout)
	assert.Greater(t, cfg.Jobs.StaleAfter, cfg.Jobs.JobTimeout)
	assert.Equal(t, time.Minute, cfg.Jobs.SweepInterval)
}

func TestLoad_InvalidCredentials(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("IMAGE_BACKEND", "none")

	_, err := Load()
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
