package jira

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchIssues_NeverNil(t *testing.T) {
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		// Tracker omitting the issues field entirely.
		w.Write([]byte(`{"startAt":0,"maxResults":100,"total":0}`))
	})

	issues, err := client.SearchIssues(context.Background(), "project = EMPTY", nil)
	require.NoError(t, err)
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestSearchIssues_DefaultProjectionAndPageSize(t *testing.T) {
	var payload struct {
		JQL        string   `json:"jql"`
		Fields     []string `json:"fields"`
		MaxResults int      `json:"maxResults"`
	}
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/3/search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		json.NewEncoder(w).Encode(SearchResult{Issues: []Issue{{Key: "PM-1"}}})
	})

	issues, err := client.SearchIssues(context.Background(), "project = PM", nil)
	require.NoError(t, err)
	assert.Len(t, issues, 1)
	assert.Equal(t, "project = PM", payload.JQL)
	assert.Equal(t, 100, payload.MaxResults)
	assert.Equal(t, defaultSearchFields, payload.Fields)
}

func TestSearchIssues_ExplicitProjection(t *testing.T) {
	var payload struct {
		Fields []string `json:"fields"`
	}
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		json.NewEncoder(w).Encode(SearchResult{})
	})

	_, err := client.SearchIssues(context.Background(), "ORDER BY created DESC", []string{"project"})
	require.NoError(t, err)
	assert.Equal(t, []string{"project"}, payload.Fields)
}

func TestIdeasReadyForGrooming_JQL(t *testing.T) {
	var jql string
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		jql = payload["jql"].(string)
		json.NewEncoder(w).Encode(SearchResult{})
	})

	_, err := client.IdeasReadyForGrooming(context.Background(), "PM")
	require.NoError(t, err)
	assert.Contains(t, jql, `project = "PM"`)
	assert.Contains(t, jql, `statusCategory = "To Do"`)
	assert.Contains(t, jql, "ORDER BY created DESC")
}

func TestIssuesInRelease_JQL(t *testing.T) {
	var jql string
	client, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &payload)
		jql = payload["jql"].(string)
		json.NewEncoder(w).Encode(SearchResult{})
	})

	_, err := client.IssuesInRelease(context.Background(), "1.1", `issuetype != Sub-task`)
	require.NoError(t, err)
	assert.Contains(t, jql, `fixVersion = "1.1"`)
	assert.Contains(t, jql, `AND (issuetype != Sub-task)`)
	assert.Contains(t, jql, "ORDER BY priority DESC, updated DESC")

	_, err = client.IssuesInRelease(context.Background(), "1.2", "")
	require.NoError(t, err)
	assert.NotContains(t, jql, "AND")
}
