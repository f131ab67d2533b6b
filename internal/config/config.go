package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix for every environment variable, e.g. AGENTCHAT_AGENT_URL.
// envconfig falls back to the unprefixed name (ANTHROPIC_API_KEY, PORT).
const Prefix = "agentchat"

const (
	LLMMock      = "mock"
	LLMVertex    = "vertex"
	LLMAnthropic = "anthropic"

	StorageMemory    = "memory"
	StorageFirestore = "firestore"
)

type Config struct {
	// Chat client
	AgentURL     string        `envconfig:"AGENT_URL" default:"http://localhost:8000/chat"`
	AgentTimeout time.Duration `envconfig:"AGENT_TIMEOUT" default:"10s"`
	SessionID    string        `envconfig:"SESSION_ID"`
	DesignFields []string      `envconfig:"DESIGN_FIELDS" default:"design_result_url"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	// Dev agent backend
	Port           string   `envconfig:"PORT" default:"8000"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
	LLMProvider    string   `envconfig:"LLM_PROVIDER" default:"mock"`
	StorageBackend string   `envconfig:"STORAGE_BACKEND" default:"memory"`
	DesignBaseURL  string   `envconfig:"DESIGN_BASE_URL" default:"https://image-api.com/v1/design"`

	GCPProjectID    string `envconfig:"GCP_PROJECT"`
	GCPLocation     string `envconfig:"GCP_LOCATION" default:"us-central1"`
	ModelName       string `envconfig:"MODEL_NAME"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
}

// Load reads an optional .env file, then the environment. It does not
// validate: callers apply their overrides first and then call Validate.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SessionID == "" {
		cfg.SessionID = NewSessionID()
	}
	cfg.DesignFields = trimFields(cfg.DesignFields)

	return &cfg, nil
}

// NewSessionID returns a fresh identifier for one running client.
func NewSessionID() string {
	return "session-" + uuid.NewString()
}

func trimFields(in []string) []string {
	var out []string
	for _, f := range in {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks the settings every command needs to reach the agent.
func (c *Config) Validate() error {
	u, err := url.Parse(c.AgentURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid agent URL %q", c.AgentURL)
	}

	if c.AgentTimeout <= 0 {
		return fmt.Errorf("agent timeout must be positive, got %s", c.AgentTimeout)
	}

	if strings.TrimSpace(c.SessionID) == "" {
		return fmt.Errorf("session id must not be blank")
	}

	c.DesignFields = trimFields(c.DesignFields)
	if len(c.DesignFields) == 0 {
		return fmt.Errorf("at least one design field name is required")
	}

	return nil
}

// ValidateBackend checks the settings only the development backend uses.
func (c *Config) ValidateBackend() error {
	switch c.LLMProvider {
	case LLMMock:
	case LLMVertex:
		if c.GCPProjectID == "" {
			return fmt.Errorf("AGENTCHAT_GCP_PROJECT must be set for the vertex provider")
		}
	case LLMAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY must be set for the anthropic provider")
		}
	default:
		return fmt.Errorf("unknown LLM provider %q", c.LLMProvider)
	}

	switch c.StorageBackend {
	case StorageMemory:
	case StorageFirestore:
		if c.GCPProjectID == "" {
			return fmt.Errorf("AGENTCHAT_GCP_PROJECT must be set for firestore storage")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	return nil
}
