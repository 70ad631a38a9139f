// Package groom turns unstructured idea text into structured epics and
// stories via a language-model provider, and synthesizes release notes
// from sets of tracker issues.
package groom

// GroomedEpic is the structured result of grooming an idea into an epic.
type GroomedEpic struct {
	Summary            string   `json:"summary"`
	Problem            string   `json:"problem"`
	Hypothesis         string   `json:"hypothesis"`
	Scope              string   `json:"scope"`
	NonGoals           []string `json:"non_goals"`
	KPIs               []string `json:"kpis"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Labels             []string `json:"labels"`
	Components         []string `json:"components"`
}

// GroomedStory is one structured story produced from an idea.
type GroomedStory struct {
	Summary            string   `json:"summary"`
	Persona            string   `json:"persona"`
	Capability         string   `json:"capability"`
	Outcome            string   `json:"outcome"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	StoryPoints        *float64 `json:"story_points,omitempty"`
	Labels             []string `json:"labels"`
	Components         []string `json:"components"`
}

// Description renders the epic's structured fields into a single rich
// description body for the tracker.
func (e *GroomedEpic) Description() string {
	var b descBuilder
	b.section("Problem", e.Problem)
	b.section("Hypothesis", e.Hypothesis)
	b.section("Scope", e.Scope)
	b.list("Non-goals", e.NonGoals)
	b.list("KPIs", e.KPIs)
	b.list("Acceptance criteria", e.AcceptanceCriteria)
	return b.String()
}

// Description renders the story's structured fields into a description body.
func (s *GroomedStory) Description() string {
	var b descBuilder
	if s.Persona != "" || s.Capability != "" || s.Outcome != "" {
		b.section("Story", "As "+s.Persona+", I want "+s.Capability+", so that "+s.Outcome+".")
	}
	b.list("Acceptance criteria", s.AcceptanceCriteria)
	return b.String()
}
