package groom

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompts holds the system/user prompt pairs for each grooming kind.
// Defaults ship in the binary; a YAML file can override any of them.
type Prompts struct {
	EpicSystem         string `yaml:"epic_system"`
	EpicUser           string `yaml:"epic_user"`
	StoriesSystem      string `yaml:"stories_system"`
	StoriesUser        string `yaml:"stories_user"`
	ReleaseNotesSystem string `yaml:"release_notes_system"`
	ReleaseNotesUser   string `yaml:"release_notes_user"`
}

// DefaultPrompts returns the built-in prompt set.
func DefaultPrompts() Prompts {
	return Prompts{
		EpicSystem: "You are a senior product manager. Transform raw product ideas into " +
			"well-structured epics. Respond with a single JSON object with keys: summary, " +
			"problem, hypothesis, scope, non_goals, kpis, acceptance_criteria, labels, " +
			"components. Arrays of strings for the plural keys. No prose outside the JSON.",
		EpicUser: "Idea summary: %s\n\nIdea text:\n%s",
		StoriesSystem: "You are a senior product manager. Break the given idea into small, " +
			"independently deliverable user stories. Respond with a JSON array of objects " +
			"with keys: summary, persona, capability, outcome, acceptance_criteria, " +
			"story_points, labels, components. No prose outside the JSON.",
		StoriesUser: "Idea summary: %s\n\nIdea text:\n%s",
		ReleaseNotesSystem: "You are a product manager writing customer-facing release notes. " +
			"Summarize the shipped work grouped by theme, in plain language. Respond with " +
			"markdown text only.",
		ReleaseNotesUser: "Release: %s\n\nShipped issues:\n%s",
	}
}

// LoadPrompts returns the defaults merged with overrides from a YAML
// file. An empty path means defaults only.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return prompts, fmt.Errorf("reading prompt file: %w", err)
	}

	var overrides Prompts
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return prompts, fmt.Errorf("parsing prompt file: %w", err)
	}

	merge := func(dst *string, src string) {
		if strings.TrimSpace(src) != "" {
			*dst = src
		}
	}
	merge(&prompts.EpicSystem, overrides.EpicSystem)
	merge(&prompts.EpicUser, overrides.EpicUser)
	merge(&prompts.StoriesSystem, overrides.StoriesSystem)
	merge(&prompts.StoriesUser, overrides.StoriesUser)
	merge(&prompts.ReleaseNotesSystem, overrides.ReleaseNotesSystem)
	merge(&prompts.ReleaseNotesUser, overrides.ReleaseNotesUser)
	return prompts, nil
}
