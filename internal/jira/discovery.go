package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const projectPageSize = 100

// ListProjects returns every project visible to the authenticated
// identity. Tenants expose inconsistent project endpoints depending on
// permission model and deployment age, so this walks a prioritized
// fallback chain: paginated project search, then the legacy flat
// listing, then inference from recent issues. An empty result is a
// valid outcome; only a failed identity check is an error.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	if _, err := c.Myself(ctx); err != nil {
		return nil, fmt.Errorf("validating identity: %w", err)
	}

	projects, err := c.searchProjects(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("project search unavailable, trying legacy listing")
	}
	if len(projects) > 0 {
		return projects, nil
	}

	projects, err = c.listProjectsLegacy(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("legacy project listing unavailable, inferring from issues")
	}
	if len(projects) > 0 {
		return projects, nil
	}

	return c.projectsFromRecentIssues(ctx)
}

// searchProjects pages through /project/search, accumulating values
// until a page comes back empty or the server-reported total is reached.
// A failure on any page discards the whole accumulation: a truncated
// listing must not pass for a complete one, so the caller falls through
// to the next strategy instead.
func (c *Client) searchProjects(ctx context.Context) ([]Project, error) {
	var all []Project
	startAt := 0
	for {
		path := fmt.Sprintf("/project/search?maxResults=%d&startAt=%d&expand=description,lead,issueTypes",
			projectPageSize, startAt)
		raw, err := c.do(ctx, http.MethodGet, path, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("searching projects: %w", err)
		}

		var page projectSearchResult
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decoding project page: %w", err)
		}
		if len(page.Values) == 0 {
			return all, nil
		}

		all = append(all, page.Values...)
		if len(all) >= page.Total {
			return all, nil
		}
		startAt += len(page.Values)
	}
}

// listProjectsLegacy calls the deprecated non-paginated listing, which
// some older tenants still serve when project search is disabled.
func (c *Client) listProjectsLegacy(ctx context.Context) ([]Project, error) {
	raw, err := c.do(ctx, http.MethodGet, "/project", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	var projects []Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("decoding project list: %w", err)
	}
	return projects, nil
}

// projectsFromRecentIssues infers visible projects from the project
// references on recently created issues, deduplicated by key in
// first-seen order. Least precise strategy, tried last.
func (c *Client) projectsFromRecentIssues(ctx context.Context) ([]Project, error) {
	issues, err := c.SearchIssues(ctx, "ORDER BY created DESC", []string{"project"})
	if err != nil {
		return nil, fmt.Errorf("inferring projects from issues: %w", err)
	}

	seen := make(map[string]bool)
	projects := []Project{}
	for _, issue := range issues {
		p := issue.Fields.Project
		if p == nil || p.Key == "" || seen[p.Key] {
			continue
		}
		seen[p.Key] = true
		projects = append(projects, *p)
	}
	return projects, nil
}
