package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// fieldState tracks the memoized story-points lookup. "Absent" is as
// definitive as a resolved id: the catalog is fetched at most once per
// client instance.
type fieldState int

const (
	fieldUnresolved fieldState = iota
	fieldResolved
	fieldAbsent
)

type fieldCache struct {
	state fieldState
	id    string
}

// StoryPointsFieldID resolves the tenant-specific custom field id for
// story point estimates by name, memoizing the outcome. A failed catalog
// fetch counts as "not found": point estimation is best effort, and a
// story may legitimately be created without it. Concurrent first-time
// calls may both hit the catalog; the lookup is idempotent, so the
// benign race needs no locking.
func (c *Client) StoryPointsFieldID(ctx context.Context) (string, bool) {
	if c.storyPoints.state != fieldUnresolved {
		return c.storyPoints.id, c.storyPoints.state == fieldResolved
	}

	id, ok := c.lookupStoryPointsField(ctx)
	if ok {
		c.storyPoints = fieldCache{state: fieldResolved, id: id}
	} else {
		c.storyPoints = fieldCache{state: fieldAbsent}
	}
	return c.storyPoints.id, ok
}

func (c *Client) lookupStoryPointsField(ctx context.Context) (string, bool) {
	raw, err := c.do(ctx, http.MethodGet, "/field", nil, nil)
	if err != nil {
		c.logger.Warn().Err(err).Msg("field catalog unavailable, skipping story points")
		return "", false
	}

	var fields []Field
	if err := json.Unmarshal(raw, &fields); err != nil {
		c.logger.Warn().Err(err).Msg("malformed field catalog, skipping story points")
		return "", false
	}

	for _, f := range fields {
		if isStoryPointsField(f.Name) {
			return f.ID, true
		}
	}
	return "", false
}

// isStoryPointsField matches the accepted aliases for the story points
// concept, case-insensitively.
func isStoryPointsField(name string) bool {
	lower := strings.ToLower(name)
	return lower == "story points" ||
		lower == "story point estimate" ||
		strings.Contains(lower, "story point")
}
