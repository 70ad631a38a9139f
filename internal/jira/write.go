package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Document is the minimal Atlassian Document Format envelope Jira Cloud
// requires for rich-text fields. Bare strings are rejected by the API.
type Document struct {
	Type    string    `json:"type"`
	Version int       `json:"version"`
	Content []DocNode `json:"content"`
}

// DocNode is a node within a Document.
type DocNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []DocNode `json:"content,omitempty"`
}

// TextDocument wraps plain text into a single-paragraph ADF document.
func TextDocument(text string) Document {
	return Document{
		Type:    "doc",
		Version: 1,
		Content: []DocNode{
			{
				Type: "paragraph",
				Content: []DocNode{
					{Type: "text", Text: text},
				},
			},
		},
	}
}

// EpicParams describes a groomed epic to create. The issue type id is
// caller-supplied because type ids are tenant-specific.
type EpicParams struct {
	ProjectKey  string
	IssueTypeID string
	Summary     string
	Description string
	Labels      []string
	Components  []string
}

// StoryParams describes a groomed story to create.
type StoryParams struct {
	ProjectKey  string
	IssueTypeID string
	Summary     string
	Description string
	Labels      []string
	Components  []string
	StoryPoints *float64
	ParentKey   string
}

// GetIssue fetches a single issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (*Issue, error) {
	raw, err := c.do(ctx, http.MethodGet, "/issue/"+key, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching issue %s: %w", key, err)
	}
	var issue Issue
	if err := json.Unmarshal(raw, &issue); err != nil {
		return nil, fmt.Errorf("decoding issue %s: %w", key, err)
	}
	return &issue, nil
}

// CreateIssue posts a raw field map and reads back the created issue.
// The create response carries only a key, and the tracker may default
// fields server-side, so the readback is what callers get, never the
// local echo.
func (c *Client) CreateIssue(ctx context.Context, fields map[string]interface{}) (*Issue, error) {
	raw, err := c.do(ctx, http.MethodPost, "/issue", map[string]interface{}{"fields": fields}, nil)
	if err != nil {
		return nil, fmt.Errorf("creating issue: %w", err)
	}

	var created createResult
	if err := json.Unmarshal(raw, &created); err != nil {
		return nil, fmt.Errorf("decoding create response: %w", err)
	}

	issue, err := c.GetIssue(ctx, created.Key)
	if err != nil {
		return nil, fmt.Errorf("reading back created issue %s: %w", created.Key, err)
	}
	return issue, nil
}

// CreateEpic creates an epic from groomed fields.
func (c *Client) CreateEpic(ctx context.Context, p EpicParams) (*Issue, error) {
	return c.CreateIssue(ctx, buildIssueFields(p.ProjectKey, p.IssueTypeID, p.Summary, p.Description, p.Labels, p.Components))
}

// CreateStory creates a story from groomed fields. Story points are set
// only when the dynamic field resolves; a parent reference is attached
// when an epic key is given.
func (c *Client) CreateStory(ctx context.Context, p StoryParams) (*Issue, error) {
	fields := buildIssueFields(p.ProjectKey, p.IssueTypeID, p.Summary, p.Description, p.Labels, p.Components)

	if p.StoryPoints != nil {
		if fieldID, ok := c.StoryPointsFieldID(ctx); ok {
			fields[fieldID] = *p.StoryPoints
		}
	}
	if p.ParentKey != "" {
		fields["parent"] = map[string]string{"key": p.ParentKey}
	}

	return c.CreateIssue(ctx, fields)
}

// buildIssueFields assembles the shared field map for epics and stories.
// Labels are never nil; components become {name} refs only when present.
func buildIssueFields(projectKey, issueTypeID, summary, description string, labels, components []string) map[string]interface{} {
	if labels == nil {
		labels = []string{}
	}
	fields := map[string]interface{}{
		"project":     map[string]string{"key": projectKey},
		"issuetype":   map[string]string{"id": issueTypeID},
		"summary":     summary,
		"description": TextDocument(description),
		"labels":      labels,
	}
	if len(components) > 0 {
		refs := make([]map[string]string, 0, len(components))
		for _, name := range components {
			refs = append(refs, map[string]string{"name": name})
		}
		fields["components"] = refs
	}
	return fields
}

// LinkIssues links two issues. An empty link type defaults to "Blocks".
// Absence of an error is the only success signal.
func (c *Client) LinkIssues(ctx context.Context, inwardKey, outwardKey, linkType string) error {
	if linkType == "" {
		linkType = "Blocks"
	}
	body := map[string]interface{}{
		"type":         map[string]string{"name": linkType},
		"inwardIssue":  map[string]string{"key": inwardKey},
		"outwardIssue": map[string]string{"key": outwardKey},
	}
	if _, err := c.do(ctx, http.MethodPost, "/issueLink", body, nil); err != nil {
		return fmt.Errorf("linking %s to %s: %w", inwardKey, outwardKey, err)
	}
	return nil
}

// ProjectVersions returns the fix versions of a project.
func (c *Client) ProjectVersions(ctx context.Context, projectKey string) ([]Version, error) {
	raw, err := c.do(ctx, http.MethodGet, "/project/"+projectKey+"/versions", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching versions for %s: %w", projectKey, err)
	}
	var versions []Version
	if err := json.Unmarshal(raw, &versions); err != nil {
		return nil, fmt.Errorf("decoding versions: %w", err)
	}
	return versions, nil
}

// UpdateVersionDescription sets a version's description. Partial update,
// no readback required.
func (c *Client) UpdateVersionDescription(ctx context.Context, versionID, description string) error {
	body := map[string]string{"description": description}
	if _, err := c.do(ctx, http.MethodPut, "/version/"+versionID, body, nil); err != nil {
		return fmt.Errorf("updating version %s: %w", versionID, err)
	}
	return nil
}
