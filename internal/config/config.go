package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Jira (required; the assistant is useless without a tracker)
	JiraBaseURL  string `envconfig:"JIRA_BASE_URL"`
	JiraAPIEmail string `envconfig:"JIRA_API_EMAIL"`
	JiraAPIToken string `envconfig:"JIRA_API_TOKEN"`

	// Anthropic (optional; grooming endpoints are disabled without it)
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-5"`
	GroomMaxTokens  int    `envconfig:"GROOM_MAX_TOKENS" default:"4096"`
	PromptFile      string `envconfig:"PROMPT_FILE"` // YAML prompt overrides

	// Slack notifications (optional)
	SlackBotToken string `envconfig:"SLACK_BOT_TOKEN"`
	SlackChannel  string `envconfig:"SLACK_CHANNEL"`

	// Persistence
	DBPath string `envconfig:"DB_PATH" default:"backlogpilot.db"`

	// API server
	ListenAddr     string        `envconfig:"LISTEN_ADDR" default:":8080"`
	AuthMode       string        `envconfig:"AUTH_MODE" default:"api-key"`
	APIKey         string        `envconfig:"API_KEY"`
	JWTSecret      string        `envconfig:"JWT_SECRET"`
	CORSOrigins    string        `envconfig:"CORS_ORIGINS"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Validate fails fast when required tracker credentials are absent. The
// error names every missing variable so a misconfigured deployment is
// fixable in one pass.
func (c *Config) Validate() error {
	var missing []string
	if c.JiraBaseURL == "" {
		missing = append(missing, "JIRA_BASE_URL")
	}
	if c.JiraAPIEmail == "" {
		missing = append(missing, "JIRA_API_EMAIL")
	}
	if c.JiraAPIToken == "" {
		missing = append(missing, "JIRA_API_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GroomingEnabled returns true if an Anthropic API key is configured.
func (c *Config) GroomingEnabled() bool {
	return c.AnthropicAPIKey != ""
}

// SlackEnabled returns true if Slack notifications are configured.
func (c *Config) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannel != ""
}
