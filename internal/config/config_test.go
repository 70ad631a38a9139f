package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JIRA_BASE_URL", "https://example.atlassian.net")
	t.Setenv("JIRA_API_EMAIL", "pm@example.com")
	t.Setenv("JIRA_API_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "api-key", cfg.AuthMode)
	require.NoError(t, cfg.Validate())
}

func TestValidate_EnumeratesMissing(t *testing.T) {
	cfg := &Config{JiraBaseURL: "https://example.atlassian.net"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JIRA_API_EMAIL")
	assert.Contains(t, err.Error(), "JIRA_API_TOKEN")
	assert.NotContains(t, err.Error(), "JIRA_BASE_URL")
}

func TestValidate_AllMissing(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JIRA_BASE_URL, JIRA_API_EMAIL, JIRA_API_TOKEN")
}

func TestGroomingEnabled(t *testing.T) {
	assert.False(t, (&Config{}).GroomingEnabled())
	assert.True(t, (&Config{AnthropicAPIKey: "sk-ant"}).GroomingEnabled())
}

func TestSlackEnabled(t *testing.T) {
	assert.False(t, (&Config{SlackBotToken: "xoxb"}).SlackEnabled())
	assert.True(t, (&Config{SlackBotToken: "xoxb", SlackChannel: "#releases"}).SlackEnabled())
}
