package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const searchPageSize = 100

// defaultSearchFields is the fixed projection used when the caller does
// not pass an explicit field list.
var defaultSearchFields = []string{
	"summary", "description", "issuetype", "project", "fixVersions",
	"labels", "components", "status", "parent", "priority",
	"assignee", "reporter", "created", "updated",
}

// SearchIssues runs a JQL search and returns the matched issues. A nil
// fields slice selects the default projection. The result is never nil,
// even when the tracker reports zero matches. Single page only; callers
// needing more than searchPageSize results paginate themselves.
func (c *Client) SearchIssues(ctx context.Context, jql string, fields []string) ([]Issue, error) {
	if fields == nil {
		fields = defaultSearchFields
	}
	body := map[string]interface{}{
		"jql":        jql,
		"fields":     fields,
		"maxResults": searchPageSize,
	}

	raw, err := c.do(ctx, http.MethodPost, "/search", body, nil)
	if err != nil {
		return nil, fmt.Errorf("searching issues: %w", err)
	}

	var result SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding search result: %w", err)
	}
	if result.Issues == nil {
		return []Issue{}, nil
	}
	return result.Issues, nil
}

// IdeasReadyForGrooming returns the backlog items of a project that are
// still in the To Do status category, newest first.
func (c *Client) IdeasReadyForGrooming(ctx context.Context, projectKey string) ([]Issue, error) {
	jql := fmt.Sprintf(
		`project = %q AND issuetype IN (Idea, Task, Story) AND statusCategory = "To Do" ORDER BY created DESC`,
		projectKey,
	)
	return c.SearchIssues(ctx, jql, nil)
}

// IssuesInRelease returns the issues whose fix version matches the named
// release, optionally narrowed by an extra JQL clause, ordered by
// priority and then recency.
func (c *Client) IssuesInRelease(ctx context.Context, version, extraJQL string) ([]Issue, error) {
	jql := fmt.Sprintf("fixVersion = %q", version)
	if extraJQL != "" {
		jql += fmt.Sprintf(" AND (%s)", extraJQL)
	}
	jql += " ORDER BY priority DESC, updated DESC"
	return c.SearchIssues(ctx, jql, nil)
}
