package groom

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/backlogpilot/backlogpilot/internal/jira"
	"github.com/backlogpilot/backlogpilot/internal/llm"
)

// Groomer runs single-shot grooming exchanges against an LLM provider.
type Groomer struct {
	provider llm.Provider
	prompts  Prompts
	logger   zerolog.Logger
}

// NewGroomer creates a Groomer.
func NewGroomer(provider llm.Provider, prompts Prompts, logger zerolog.Logger) *Groomer {
	return &Groomer{
		provider: provider,
		prompts:  prompts,
		logger:   logger.With().Str("component", "groom").Logger(),
	}
}

// GroomEpic transforms a raw idea into a structured epic.
func (g *Groomer) GroomEpic(ctx context.Context, summary, text string) (*GroomedEpic, error) {
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: g.prompts.EpicSystem,
		UserPrompt:   fmt.Sprintf(g.prompts.EpicUser, summary, text),
	})
	if err != nil {
		return nil, fmt.Errorf("grooming epic: %w", err)
	}

	var epic GroomedEpic
	if err := json.Unmarshal(extractJSON(resp.Text), &epic); err != nil {
		return nil, fmt.Errorf("parsing groomed epic: %w", err)
	}
	if epic.Summary == "" {
		epic.Summary = summary
	}
	g.logger.Info().Str("summary", epic.Summary).Msg("groomed epic")
	return &epic, nil
}

// GroomStories breaks a raw idea into structured stories.
func (g *Groomer) GroomStories(ctx context.Context, summary, text string) ([]GroomedStory, error) {
	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: g.prompts.StoriesSystem,
		UserPrompt:   fmt.Sprintf(g.prompts.StoriesUser, summary, text),
	})
	if err != nil {
		return nil, fmt.Errorf("grooming stories: %w", err)
	}

	var stories []GroomedStory
	if err := json.Unmarshal(extractJSON(resp.Text), &stories); err != nil {
		return nil, fmt.Errorf("parsing groomed stories: %w", err)
	}
	g.logger.Info().Int("count", len(stories)).Msg("groomed stories")
	return stories, nil
}

// ReleaseNotes synthesizes customer-facing notes from the issues shipped
// in a release.
func (g *Groomer) ReleaseNotes(ctx context.Context, release string, issues []jira.Issue) (string, error) {
	var lines []string
	for _, issue := range issues {
		line := fmt.Sprintf("- [%s] %s", issue.Key, issue.Fields.Summary)
		if issue.Fields.IssueType != nil {
			line += fmt.Sprintf(" (%s)", issue.Fields.IssueType.Name)
		}
		lines = append(lines, line)
	}

	resp, err := g.provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: g.prompts.ReleaseNotesSystem,
		UserPrompt:   fmt.Sprintf(g.prompts.ReleaseNotesUser, release, strings.Join(lines, "\n")),
	})
	if err != nil {
		return "", fmt.Errorf("synthesizing release notes: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// extractJSON strips markdown code fences and surrounding prose so the
// payload can be unmarshaled even when the model decorates its answer.
func extractJSON(text string) []byte {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	text = strings.TrimSpace(text)

	// Fall back to the outermost JSON value when prose surrounds it.
	start := strings.IndexAny(text, "[{")
	if start > 0 {
		text = text[start:]
	}
	return []byte(text)
}

// descBuilder accumulates titled sections into one description body.
type descBuilder struct {
	parts []string
}

func (b *descBuilder) section(title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	b.parts = append(b.parts, title+": "+body)
}

func (b *descBuilder) list(title string, items []string) {
	if len(items) == 0 {
		return
	}
	var sb strings.Builder
	sb.WriteString(title + ":")
	for _, item := range items {
		sb.WriteString("\n- " + item)
	}
	b.parts = append(b.parts, sb.String())
}

func (b *descBuilder) String() string {
	return strings.Join(b.parts, "\n\n")
}
