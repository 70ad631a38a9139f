package api

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/backlogpilot/backlogpilot/internal/apierrors"
	"github.com/backlogpilot/backlogpilot/internal/groom"
	"github.com/backlogpilot/backlogpilot/internal/jira"
	"github.com/backlogpilot/backlogpilot/internal/metrics"
	"github.com/backlogpilot/backlogpilot/internal/notify"
	"github.com/backlogpilot/backlogpilot/internal/store"
)

// Handlers holds dependencies for the HTTP handlers. The groomer and
// notifier may be nil; the corresponding endpoints degrade gracefully.
type Handlers struct {
	tracker  *jira.Client
	groomer  *groom.Groomer
	store    *store.Store
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(tracker *jira.Client, groomer *groom.Groomer, st *store.Store, notifier *notify.Notifier, m *metrics.Metrics, logger zerolog.Logger) *Handlers {
	return &Handlers{
		tracker:  tracker,
		groomer:  groomer,
		store:    st,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "handlers").Logger(),
	}
}

// trackerError maps a tracker failure onto an API response. The
// tracker's own 404s pass through; everything else is a bad gateway.
func trackerError(c *fiber.Ctx, err error) error {
	if apierrors.StatusOf(err) == fiber.StatusNotFound {
		return problemResponse(c, fiber.StatusNotFound,
			"tracker_not_found", "Not Found", err.Error())
	}
	if errors.Is(err, apierrors.ErrAuthFailure) {
		return problemResponse(c, fiber.StatusBadGateway,
			"tracker_auth_failed", "Bad Gateway", err.Error())
	}
	return problemResponse(c, fiber.StatusBadGateway,
		"tracker_error", "Bad Gateway", err.Error())
}

// ListProjects handles GET /api/v1/projects.
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	projects, err := h.tracker.ListProjects(c.Context())
	if err != nil {
		return trackerError(c, err)
	}

	if h.store != nil {
		snapshots := make([]store.ProjectSnapshot, 0, len(projects))
		for _, p := range projects {
			snap := store.ProjectSnapshot{Key: p.Key, Name: p.Name, ProjectType: p.ProjectTypeKey}
			if p.Lead != nil {
				snap.Lead = p.Lead.DisplayName
			}
			snapshots = append(snapshots, snap)
		}
		if err := h.store.SaveProjectSnapshots(snapshots); err != nil {
			h.logger.Warn().Err(err).Msg("failed to persist project snapshots")
		}
	}

	return c.JSON(fiber.Map{"projects": projects, "count": len(projects)})
}

// ListIdeas handles GET /api/v1/projects/:key/ideas.
func (h *Handlers) ListIdeas(c *fiber.Ctx) error {
	issues, err := h.tracker.IdeasReadyForGrooming(c.Context(), c.Params("key"))
	if err != nil {
		return trackerError(c, err)
	}
	return c.JSON(fiber.Map{"issues": issues, "count": len(issues)})
}

// ListVersions handles GET /api/v1/projects/:key/versions.
func (h *Handlers) ListVersions(c *fiber.Ctx) error {
	versions, err := h.tracker.ProjectVersions(c.Context(), c.Params("key"))
	if err != nil {
		return trackerError(c, err)
	}
	return c.JSON(fiber.Map{"versions": versions, "count": len(versions)})
}

// GroomEpic handles POST /api/v1/groom/epic.
func (h *Handlers) GroomEpic(c *fiber.Ctx) error {
	req, err := parseGroomRequest(c)
	if req == nil {
		return err
	}
	if h.groomer == nil {
		return problemResponse(c, fiber.StatusServiceUnavailable,
			"grooming_disabled", "Service Unavailable", "No language model configured")
	}

	start := time.Now()
	epic, err := h.groomer.GroomEpic(c.Context(), req.Summary, req.Text)
	h.observeGroom("epic", start, err)
	if err != nil {
		return problemResponse(c, fiber.StatusBadGateway,
			"groom_failed", "Bad Gateway", err.Error())
	}

	sessionID := h.saveSession(req, "epic", epic)
	return c.JSON(GroomEpicResponse{SessionID: sessionID, Epic: *epic})
}

// GroomStories handles POST /api/v1/groom/stories.
func (h *Handlers) GroomStories(c *fiber.Ctx) error {
	req, err := parseGroomRequest(c)
	if req == nil {
		return err
	}
	if h.groomer == nil {
		return problemResponse(c, fiber.StatusServiceUnavailable,
			"grooming_disabled", "Service Unavailable", "No language model configured")
	}

	start := time.Now()
	stories, err := h.groomer.GroomStories(c.Context(), req.Summary, req.Text)
	h.observeGroom("stories", start, err)
	if err != nil {
		return problemResponse(c, fiber.StatusBadGateway,
			"groom_failed", "Bad Gateway", err.Error())
	}

	sessionID := h.saveSession(req, "stories", stories)
	return c.JSON(GroomStoriesResponse{SessionID: sessionID, Stories: stories})
}

// parseGroomRequest validates the shared groom payload. A nil request
// means the rejection response has already been written.
func parseGroomRequest(c *fiber.Ctx) (*GroomRequest, error) {
	var req GroomRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.Summary == "" || req.Text == "" {
		return nil, problemResponse(c, fiber.StatusBadRequest,
			"missing_fields", "Bad Request", "summary and text are required")
	}
	return &req, nil
}

func (h *Handlers) saveSession(req *GroomRequest, kind string, result interface{}) string {
	if h.store == nil {
		return ""
	}
	id := uuid.New().String()
	resultJSON, _ := json.Marshal(result)
	err := h.store.SaveSession(&store.GroomSession{
		ID:           id,
		ProjectKey:   req.ProjectKey,
		SourceIssue:  req.SourceIssue,
		Kind:         kind,
		InputSummary: req.Summary,
		InputText:    req.Text,
		Result:       string(resultJSON),
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to persist groom session")
		return ""
	}
	return id
}

func (h *Handlers) observeGroom(kind string, start time.Time, err error) {
	if h.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.metrics.GroomRequestsTotal.WithLabelValues(kind, status).Inc()
	h.metrics.GroomDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// CreateEpic handles POST /api/v1/epics.
func (h *Handlers) CreateEpic(c *fiber.Ctx) error {
	var req CreateEpicRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.ProjectKey == "" || req.IssueTypeID == "" || req.Epic.Summary == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_fields", "Bad Request", "project_key, issue_type_id and epic.summary are required")
	}

	issue, err := h.tracker.CreateEpic(c.Context(), jira.EpicParams{
		ProjectKey:  req.ProjectKey,
		IssueTypeID: req.IssueTypeID,
		Summary:     req.Epic.Summary,
		Description: req.Epic.Description(),
		Labels:      req.Epic.Labels,
		Components:  req.Epic.Components,
	})
	if err != nil {
		return trackerError(c, err)
	}

	h.recordCreated(c, "epic", req.SessionID, issue)
	return c.Status(fiber.StatusCreated).JSON(issue)
}

// CreateStory handles POST /api/v1/stories.
func (h *Handlers) CreateStory(c *fiber.Ctx) error {
	var req CreateStoryRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.ProjectKey == "" || req.IssueTypeID == "" || req.Story.Summary == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_fields", "Bad Request", "project_key, issue_type_id and story.summary are required")
	}

	issue, err := h.tracker.CreateStory(c.Context(), jira.StoryParams{
		ProjectKey:  req.ProjectKey,
		IssueTypeID: req.IssueTypeID,
		Summary:     req.Story.Summary,
		Description: req.Story.Description(),
		Labels:      req.Story.Labels,
		Components:  req.Story.Components,
		StoryPoints: req.Story.StoryPoints,
		ParentKey:   req.ParentKey,
	})
	if err != nil {
		return trackerError(c, err)
	}

	h.recordCreated(c, "story", req.SessionID, issue)
	return c.Status(fiber.StatusCreated).JSON(issue)
}

func (h *Handlers) recordCreated(c *fiber.Ctx, kind, sessionID string, issue *jira.Issue) {
	if h.metrics != nil {
		h.metrics.IssuesCreatedTotal.WithLabelValues(kind).Inc()
	}
	if h.store != nil && sessionID != "" {
		keys := issue.Key
		if prev, err := h.store.GetSession(sessionID); err == nil && prev != nil && prev.CreatedKeys != "" {
			keys = prev.CreatedKeys + "," + issue.Key
		}
		if err := h.store.MarkSessionPublished(sessionID, keys); err != nil {
			h.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to mark session published")
		}
	}
	h.notifier.IssueCreated(issue, h.tracker.BaseURL())
}

// LinkIssues handles POST /api/v1/links.
func (h *Handlers) LinkIssues(c *fiber.Ctx) error {
	var req LinkRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.InwardKey == "" || req.OutwardKey == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_fields", "Bad Request", "inward_key and outward_key are required")
	}

	if err := h.tracker.LinkIssues(c.Context(), req.InwardKey, req.OutwardKey, req.LinkType); err != nil {
		return trackerError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReleaseNotes handles POST /api/v1/release-notes.
func (h *Handlers) ReleaseNotes(c *fiber.Ctx) error {
	var req ReleaseNotesRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	if req.Version == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_fields", "Bad Request", "version is required")
	}
	if h.groomer == nil {
		return problemResponse(c, fiber.StatusServiceUnavailable,
			"grooming_disabled", "Service Unavailable", "No language model configured")
	}
	if req.Publish && req.VersionID == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_fields", "Bad Request", "version_id is required to publish")
	}

	issues, err := h.tracker.IssuesInRelease(c.Context(), req.Version, req.ExtraJQL)
	if err != nil {
		return trackerError(c, err)
	}

	start := time.Now()
	notes, err := h.groomer.ReleaseNotes(c.Context(), req.Version, issues)
	h.observeGroom("release_notes", start, err)
	if err != nil {
		return problemResponse(c, fiber.StatusBadGateway,
			"groom_failed", "Bad Gateway", err.Error())
	}

	published := false
	if req.Publish {
		if err := h.tracker.UpdateVersionDescription(c.Context(), req.VersionID, notes); err != nil {
			return trackerError(c, err)
		}
		published = true
		h.notifier.ReleaseNotesPublished(req.Version, len(issues))
	}

	return c.JSON(ReleaseNotesResponse{
		Version:    req.Version,
		Notes:      notes,
		IssueCount: len(issues),
		Published:  published,
	})
}

// ListSessions handles GET /api/v1/projects/:key/sessions.
func (h *Handlers) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.store.ListSessions(c.Params("key"), c.QueryInt("limit"))
	if err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"store_error", "Internal Server Error", err.Error())
	}
	return c.JSON(fiber.Map{"sessions": sessions, "count": len(sessions)})
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *Handlers) GetSession(c *fiber.Ctx) error {
	sess, err := h.store.GetSession(c.Params("id"))
	if err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"store_error", "Internal Server Error", err.Error())
	}
	if sess == nil {
		return problemResponse(c, fiber.StatusNotFound,
			"session_not_found", "Not Found", "No such session")
	}
	return c.JSON(sess)
}

// ListTemplates handles GET /api/v1/templates.
func (h *Handlers) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.store.ListTemplates()
	if err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"store_error", "Internal Server Error", err.Error())
	}
	return c.JSON(fiber.Map{"templates": templates, "count": len(templates)})
}

// GetTemplate handles GET /api/v1/templates/:name.
func (h *Handlers) GetTemplate(c *fiber.Ctx) error {
	tpl, err := h.store.GetTemplate(c.Params("name"))
	if err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"store_error", "Internal Server Error", err.Error())
	}
	if tpl == nil {
		return problemResponse(c, fiber.StatusNotFound,
			"template_not_found", "Not Found", "No such template")
	}
	return c.JSON(tpl)
}

// PutTemplate handles PUT /api/v1/templates/:name.
func (h *Handlers) PutTemplate(c *fiber.Ctx) error {
	var req TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request", "Invalid request body: "+err.Error())
	}
	kind := strings.TrimSpace(req.Kind)
	if kind == "" || strings.TrimSpace(req.Body) == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_fields", "Bad Request", "kind and body are required")
	}

	tpl := &store.PromptTemplate{Name: c.Params("name"), Kind: kind, Body: req.Body}
	if err := h.store.SaveTemplate(tpl); err != nil {
		return problemResponse(c, fiber.StatusInternalServerError,
			"store_error", "Internal Server Error", err.Error())
	}
	return c.JSON(tpl)
}

// DeleteTemplate handles DELETE /api/v1/templates/:name.
func (h *Handlers) DeleteTemplate(c *fiber.Ctx) error {
	if err := h.store.DeleteTemplate(c.Params("name")); err != nil {
		return problemResponse(c, fiber.StatusNotFound,
			"template_not_found", "Not Found", err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
