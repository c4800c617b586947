package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"console"`
	Output     string `envconfig:"LOG_OUTPUT" default:"stdout"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"rfc3339"`
	FilePath   string `envconfig:"LOG_FILE_PATH" default:"logs/ikiguide.log"`
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	// TimeoutHours is how long a session lives after creation.
	TimeoutHours int `envconfig:"SESSION_MAX_TIMEOUT" default:"24"`
	// MaxConcurrent caps live sessions for the in-memory store.
	MaxConcurrent int `envconfig:"SESSION_MAX_CONCURRENT" default:"1000"`
	// CookieMaxAge is the session_id cookie lifetime in seconds.
	CookieMaxAge int `envconfig:"SESSION_MAX_AGE" default:"3600"`
	// RedisURL selects the Redis store when set; empty means in-memory.
	RedisURL string `envconfig:"REDIS_URL"`
}

// TTL returns the session timeout as a duration.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TimeoutHours) * time.Hour
}

// ModelConfig holds chat model configuration for the ikigai generator
type ModelConfig struct {
	Provider    string  `envconfig:"MODEL_PROVIDER" default:"openai"`
	Model       string  `envconfig:"MODEL_NAME" default:"gpt-4o"`
	APIKey      string  `envconfig:"OPENAI_API_KEY"`
	BaseURL     string  `envconfig:"MODEL_BASE_URL"`
	MaxTokens   int     `envconfig:"MODEL_MAX_TOKENS" default:"1500"`
	Temperature float64 `envconfig:"MODEL_TEMPERATURE" default:"0.2"`
}

// EmailConfig holds Microsoft Graph mail configuration
type EmailConfig struct {
	TenantID     string `envconfig:"AZURE_TENANT_ID"`
	ClientID     string `envconfig:"AZURE_CLIENT_ID"`
	ClientSecret string `envconfig:"AZURE_CLIENT_SECRET"`
	From         string `envconfig:"EMAIL_FROM"`
}

// Configured reports whether every field needed to send mail is present.
func (e EmailConfig) Configured() bool {
	return e.TenantID != "" && e.ClientID != "" && e.ClientSecret != "" && e.From != ""
}

// Config is the full application configuration, loaded from the environment.
type Config struct {
	AppName string `envconfig:"APP_NAME" default:"Ikiguide"`
	AppEnv  string `envconfig:"APP_ENV" default:"development"`

	APIHost string `envconfig:"API_HOST" default:"localhost"`
	APIPort int    `envconfig:"API_PORT" default:"8000"`

	// CORSOrigins is a comma-separated origin list.
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	Log     LogConfig
	Session SessionConfig
	Model   ModelConfig
	Email   EmailConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing environment configuration: %w", err)
	}
	return &cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.APIHost, c.APIPort)
}

// Origins splits CORSOrigins into a cleaned slice.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Development reports whether the app runs in the development environment.
// The session cookie is only marked Secure outside development.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}
