package jira

// User represents a Jira user.
type User struct {
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress,omitempty"`
	DisplayName  string `json:"displayName"`
	Active       bool   `json:"active"`
}

// Project represents a Jira project.
type Project struct {
	ID             string       `json:"id,omitempty"`
	Key            string       `json:"key"`
	Name           string       `json:"name,omitempty"`
	Description    string       `json:"description,omitempty"`
	ProjectTypeKey string       `json:"projectTypeKey,omitempty"`
	Lead           *User        `json:"lead,omitempty"`
	AvatarUrls     AvatarUrls   `json:"avatarUrls,omitempty"`
	IssueTypes     []IssueType  `json:"issueTypes,omitempty"`
}

// AvatarUrls holds project avatar image URLs by size.
type AvatarUrls struct {
	Small string `json:"24x24,omitempty"`
	Large string `json:"48x48,omitempty"`
}

// IssueType represents a Jira issue type.
type IssueType struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Subtask bool   `json:"subtask,omitempty"`
}

// Status represents a workflow status.
type Status struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name"`
	StatusCategory *StatusCategory `json:"statusCategory,omitempty"`
}

// StatusCategory represents a status category ("To Do", "In Progress", "Done").
type StatusCategory struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Priority represents an issue priority.
type Priority struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Component represents a project component reference.
type Component struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Version represents a project fix version.
type Version struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Released    bool   `json:"released"`
	Archived    bool   `json:"archived"`
	ProjectID   int64  `json:"projectId,omitempty"`
}

// ParentRef references a parent issue (epic) by key.
type ParentRef struct {
	ID  string `json:"id,omitempty"`
	Key string `json:"key,omitempty"`
}

// IssueFields is the typed field bag of an issue.
type IssueFields struct {
	Summary     string      `json:"summary"`
	Description interface{} `json:"description,omitempty"` // ADF document on read
	IssueType   *IssueType  `json:"issuetype,omitempty"`
	Project     *Project    `json:"project,omitempty"`
	FixVersions []Version   `json:"fixVersions,omitempty"`
	Labels      []string    `json:"labels,omitempty"`
	Components  []Component `json:"components,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	Parent      *ParentRef  `json:"parent,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	Assignee    *User       `json:"assignee,omitempty"`
	Reporter    *User       `json:"reporter,omitempty"`
	Created     string      `json:"created,omitempty"`
	Updated     string      `json:"updated,omitempty"`
}

// Issue represents a single work item in the tracker.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// SearchResult is the response of a JQL search.
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// projectSearchResult is the paginated /project/search response.
type projectSearchResult struct {
	StartAt int       `json:"startAt"`
	Total   int       `json:"total"`
	Values  []Project `json:"values"`
}

// Field describes one entry of the tracker's field catalog.
type Field struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
}

// createResult is the minimal response of POST /issue.
type createResult struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}
