// Package api provides the HTTP API for the assistant.
package api

import (
	"github.com/backlogpilot/backlogpilot/internal/groom"
)

// --- Request DTOs ---

// GroomRequest is the payload for POST /api/v1/groom/{epic,stories}.
type GroomRequest struct {
	ProjectKey  string `json:"project_key"`
	SourceIssue string `json:"source_issue,omitempty"`
	Summary     string `json:"summary"`
	Text        string `json:"text"`
}

// CreateEpicRequest is the payload for POST /api/v1/epics.
type CreateEpicRequest struct {
	ProjectKey  string            `json:"project_key"`
	IssueTypeID string            `json:"issue_type_id"`
	SessionID   string            `json:"session_id,omitempty"`
	Epic        groom.GroomedEpic `json:"epic"`
}

// CreateStoryRequest is the payload for POST /api/v1/stories.
type CreateStoryRequest struct {
	ProjectKey  string             `json:"project_key"`
	IssueTypeID string             `json:"issue_type_id"`
	SessionID   string             `json:"session_id,omitempty"`
	ParentKey   string             `json:"parent_key,omitempty"`
	Story       groom.GroomedStory `json:"story"`
}

// LinkRequest is the payload for POST /api/v1/links.
type LinkRequest struct {
	InwardKey  string `json:"inward_key"`
	OutwardKey string `json:"outward_key"`
	LinkType   string `json:"link_type,omitempty"`
}

// ReleaseNotesRequest is the payload for POST /api/v1/release-notes.
type ReleaseNotesRequest struct {
	Version   string `json:"version"`
	VersionID string `json:"version_id,omitempty"`
	ExtraJQL  string `json:"extra_jql,omitempty"`
	Publish   bool   `json:"publish,omitempty"`
}

// TemplateRequest is the payload for PUT /api/v1/templates/:name.
type TemplateRequest struct {
	Kind string `json:"kind"`
	Body string `json:"body"`
}

// --- Response DTOs ---

// GroomEpicResponse carries a groomed epic and its session id.
type GroomEpicResponse struct {
	SessionID string            `json:"session_id"`
	Epic      groom.GroomedEpic `json:"epic"`
}

// GroomStoriesResponse carries groomed stories and their session id.
type GroomStoriesResponse struct {
	SessionID string               `json:"session_id"`
	Stories   []groom.GroomedStory `json:"stories"`
}

// ReleaseNotesResponse carries synthesized notes.
type ReleaseNotesResponse struct {
	Version    string `json:"version"`
	Notes      string `json:"notes"`
	IssueCount int    `json:"issue_count"`
	Published  bool   `json:"published"`
}

// Problem is an RFC 7807-style error body.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status"`
}
