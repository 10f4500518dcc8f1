// Package config provides server configuration loaded from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/morezero/salaatflow-assistant/pkg/backend"
	"github.com/morezero/salaatflow-assistant/pkg/commsutil"
	"github.com/morezero/salaatflow-assistant/pkg/genclient"
	"github.com/morezero/salaatflow-assistant/pkg/observability"
)

const logPrefix = "config:LoadConfig"

// Config holds assistant configuration.
type Config struct {
	// COMMS: connect to NATS at COMMSURL; empty disables the COMMS surface and events.
	COMMSURL  string `envconfig:"COMMS_URL"`
	COMMSName string `envconfig:"SERVICE_NAME" default:"salaatflow-assistant"`

	COMMSConnectTimeout time.Duration `envconfig:"COMMS_CONNECT_TIMEOUT" default:"10s"`
	COMMSReconnectWait  time.Duration `envconfig:"COMMS_RECONNECT_WAIT" default:"2s"`
	COMMSMaxReconnects  int           `envconfig:"COMMS_MAX_RECONNECTS" default:"60"`

	// Subjects
	AssistantSubject string `envconfig:"ASSISTANT_SUBJECT" default:"cap.salaatflow.assistant.v1"`
	EventSubject     string `envconfig:"ASSISTANT_EVENT_SUBJECT" default:"assistant.events"`

	// HTTP
	HTTPAddr           string        `envconfig:"ASSISTANT_HTTP_ADDR"`
	HTTPPort           int           `envconfig:"HTTP_PORT" default:"8080"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"45s"`
	HealthCheckTimeout time.Duration `envconfig:"HEALTH_CHECK_TIMEOUT" default:"10s"`

	// Task backend
	BackendBaseURL   string        `envconfig:"BACKEND_BASE_URL" default:"http://localhost:8000/api/v1"`
	BackendTimeout   time.Duration `envconfig:"BACKEND_TIMEOUT" default:"10s"`
	BackendRateLimit float64       `envconfig:"BACKEND_RATE_LIMIT" default:"20"`
	BackendRateBurst int           `envconfig:"BACKEND_RATE_BURST" default:"10"`

	// Tools
	ToolManifestFile string `envconfig:"TOOL_MANIFEST_FILE"`
	DefaultMasjidID  int    `envconfig:"DEFAULT_MASJID_ID" default:"0"`

	// Generation
	GeminiAPIKey      string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GeminiTimeout     time.Duration `envconfig:"GEMINI_TIMEOUT" default:"30s"`
	GeminiMaxAttempts int           `envconfig:"GEMINI_MAX_ATTEMPTS" default:"3"`
	GeminiRetryDelay  time.Duration `envconfig:"GEMINI_RETRY_DELAY" default:"1s"`
	GeminiBaseURL     string        `envconfig:"GEMINI_BASE_URL"`
	HistoryLimit      int           `envconfig:"HISTORY_LIMIT" default:"10"`

	// Logging
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogDir        string `envconfig:"LOG_DIR" default:"logs"`
	LogBufferSize int    `envconfig:"LOG_BUFFER_SIZE" default:"1024"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ValidateForServe checks required config when running the assistant server.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForGeneration(); err != nil {
		return err
	}
	if c.BackendBaseURL == "" {
		return fmt.Errorf("%s - BACKEND_BASE_URL is required for serve", logPrefix)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("%s - BACKEND_TIMEOUT must be positive", logPrefix)
	}
	if c.BackendRateLimit < 0 || c.BackendRateBurst < 0 {
		return fmt.Errorf("%s - BACKEND_RATE_LIMIT and BACKEND_RATE_BURST must not be negative", logPrefix)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%s - REQUEST_TIMEOUT must be positive", logPrefix)
	}
	if c.HealthCheckTimeout <= 0 {
		return fmt.Errorf("%s - HEALTH_CHECK_TIMEOUT must be positive", logPrefix)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("%s - HISTORY_LIMIT must not be negative", logPrefix)
	}
	if c.DefaultMasjidID < 0 {
		return fmt.Errorf("%s - DEFAULT_MASJID_ID must not be negative", logPrefix)
	}
	return nil
}

// ValidateForGeneration checks the generation settings (health and serve commands).
func (c *Config) ValidateForGeneration() error {
	if err := c.Generation().WithDefaults().Validate(); err != nil {
		return fmt.Errorf("%s - %w", logPrefix, err)
	}
	return nil
}

// Generation returns the generation client settings.
func (c *Config) Generation() genclient.Config {
	return genclient.Config{
		APIKey:      c.GeminiAPIKey,
		Model:       c.GeminiModel,
		Timeout:     c.GeminiTimeout,
		MaxAttempts: c.GeminiMaxAttempts,
		RetryDelay:  c.GeminiRetryDelay,
		BaseURL:     c.GeminiBaseURL,
	}
}

// Backend returns the task backend client settings.
func (c *Config) Backend() backend.Config {
	return backend.Config{
		BaseURL:   c.BackendBaseURL,
		Timeout:   c.BackendTimeout,
		RateLimit: c.BackendRateLimit,
		Burst:     c.BackendRateBurst,
	}
}

// Logging returns the logging settings. The generation credential is
// registered as a secret so it is redacted from every stream.
func (c *Config) Logging() observability.Options {
	return observability.Options{
		Level:      c.LogLevel,
		Dir:        c.LogDir,
		BufferSize: c.LogBufferSize,
		Secrets:    []string{c.GeminiAPIKey},
	}
}

// Comms returns the COMMS connection settings.
func (c *Config) Comms() commsutil.ConnectOptions {
	return commsutil.ConnectOptions{
		URL:            c.COMMSURL,
		Name:           c.COMMSName,
		ConnectTimeout: c.COMMSConnectTimeout,
		ReconnectWait:  c.COMMSReconnectWait,
		MaxReconnects:  c.COMMSMaxReconnects,
	}
}

// ListenAddr returns the HTTP listen address.
func (c *Config) ListenAddr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return fmt.Sprintf(":%d", c.HTTPPort)
}
