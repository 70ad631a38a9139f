// Package notify posts assistant activity to Slack. Notifications are
// best effort: a failed post is logged, never propagated.
package notify

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/backlogpilot/backlogpilot/internal/jira"
)

// SlackAPI is the minimal Slack API surface the notifier needs.
type SlackAPI interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// Notifier announces created issues and published release notes.
type Notifier struct {
	api     SlackAPI
	channel string
	logger  zerolog.Logger
}

// New creates a Notifier posting to the given channel.
func New(api SlackAPI, channel string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		api:     api,
		channel: channel,
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

// IssueCreated announces a newly created epic or story.
func (n *Notifier) IssueCreated(issue *jira.Issue, baseURL string) {
	kind := "issue"
	if issue.Fields.IssueType != nil {
		kind = strings.ToLower(issue.Fields.IssueType.Name)
	}
	text := fmt.Sprintf(":memo: Created %s *%s*: %s\n%s/browse/%s",
		kind, issue.Key, issue.Fields.Summary, baseURL, issue.Key)
	n.post(text)
}

// ReleaseNotesPublished announces release notes written to a version.
func (n *Notifier) ReleaseNotesPublished(release string, issueCount int) {
	text := fmt.Sprintf(":rocket: Release notes published for *%s* (%d issues)", release, issueCount)
	n.post(text)
}

func (n *Notifier) post(text string) {
	if n == nil || n.api == nil {
		return
	}
	_, _, err := n.api.PostMessage(n.channel, slack.MsgOptionText(text, false))
	if err != nil {
		n.logger.Warn().Err(err).Msg("slack notification failed")
	}
}
