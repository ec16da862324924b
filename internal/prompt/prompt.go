// Package prompt holds the per-stage LLM prompt templates, one Go
// template constant per source file in
// original_source/prompts/{comparison,expectation,exploration,
// interpretation}.py. Each template keeps the original's labeled
// sections and trailing "return only JSON" instruction; Korean prose
// is translated to English text/template bodies rather than carried
// over verbatim.
package prompt

import (
	"bytes"
	"text/template"
)

// ComparisonTemplate is format_comparison_prompt's template, asking
// the model to diff current state against the expected state and
// report Gaps.
const ComparisonTemplate = `Compare the current state against the expected state and identify any gaps.

## Current state:
{{.CurrentState}}

## Expected state:
{{.Expectation}}

## Instructions:
1. Compare the current state against the expected state and list every gap you find.
2. Rate each gap's severity as high, medium, or low.
3. Return an empty list if no gap is found.
4. Include for each gap:
   - type: the gap's kind (e.g. visibility, response_time, priority)
   - domain: the domain (e.g. email, calendar, task)
   - evidence: supporting evidence (current value, expected value, trend)

Respond in this exact JSON shape:
[
    {
        "id": "gap_1",
        "type": "gap type",
        "domain": "domain",
        "description": "gap description",
        "severity": "high|medium|low",
        "current": "current state description",
        "expected": "expected state description",
        "affected_items": ["affected item id", "..."],
        "evidence": {
            "current_value": "current value",
            "expected_value": "expected value",
            "trend": "increasing|decreasing|stable",
            "recurrence_count": 0
        }
    }
]

Return only the JSON, with no other explanation.`

// ExpectationTemplate is format_expectation_prompt's template, asking
// the model to derive ideal states for one domain from the World
// Model and current context.
const ExpectationTemplate = `Analyze this user's World Model and current context to produce the ideal state for the {{.DomainName}} domain.

## World Model:
{{.WorldModel}}

## Current context:
{{.Context}}

## Domain: {{.Domain}}

## Instructions:
1. Consider the World Model's abstract goals, preferences, and patterns.
2. Reflect the current day and time.
3. Return the ideal state for the {{.DomainName}} domain as JSON.
4. Tailor the ideal state to the domain's characteristics:
   - email: inbox management, response time, visibility of important mail
   - github: PR review time, code quality, development process
   - health: sleep pattern, exercise habit, health metrics
   - finance: spending discipline, budget adherence, delivery cost

Respond in this exact JSON shape:
{
    "domain": "{{.Domain}}",
    "context": {{.Context}},
    "ideal_states": [
        {
            "id": "ideal_1",
            "domain": "{{.Domain}}",
            "description": "ideal state description",
            "criterion": "criterion",
            "target_value": "target value",
            "priority": "high|medium|low"
        }
    ],
    "expectations": [
        {
            "id": "exp_1",
            "description": "expectation description",
            "criterion": "criterion",
            "target_value": "target value",
            "priority": "high|medium|low"
        }
    ]
}

Return only the JSON, with no other explanation.`

// ExplorationTemplate is format_exploration_prompt's template, asking
// the model for exactly three candidate solutions to a problem.
const ExplorationTemplate = `Propose three solutions that could resolve the following problem.

## Problem:
{{.Problem}}

## Instructions:
1. Propose three concrete solutions to this problem.
2. State each solution's pros and cons.
3. Rate each solution's implementation complexity as low, medium, or high.
4. List the tools each solution requires.
5. Rate each solution's risk level as low, medium, or high.

Respond in this exact JSON shape:
[
    {
        "id": "sol_1",
        "name": "solution name",
        "description": "detailed solution description",
        "pros": ["pro 1", "pro 2", "pro 3"],
        "cons": ["con 1", "con 2"],
        "complexity": "low|medium|high",
        "risk_level": "low|medium|high",
        "required_tools": ["tool 1", "tool 2"]
    },
    { "...": "solution 2, same shape" },
    { "...": "solution 3, same shape" }
]

Return only the JSON, with no other explanation.`

// InterpretationTemplate is format_interpretation_prompt's template,
// asking the model to turn a Gap into a named Problem with cause and
// impact analysis.
const InterpretationTemplate = `Analyze the following gap, define it as a problem, and analyze its cause and impact.

## Gap:
{{.Gap}}

## Instructions:
1. Give this gap a clear problem name.
2. Analyze the problem's cause.
3. Predict the impact of leaving this problem unresolved.
4. Include the domain.

Respond in this exact JSON shape:
{
    "id": "problem_{{.GapID}}",
    "gap_id": "{{.GapID}}",
    "domain": "domain",
    "name": "problem name (one line)",
    "description": "detailed problem description",
    "cause": "cause analysis",
    "impact": "impact analysis",
    "severity": "{{.Severity}}",
    "affected_items": {{.AffectedItems}}
}

Return only the JSON, with no other explanation.`

var domainNames = map[string]string{
	"email":   "email management",
	"github":  "GitHub development process",
	"health":  "health management",
	"finance": "financial management",
}

// DomainName returns the human-readable domain label used by
// FormatExpectation, matching format_expectation_prompt's
// domain_names lookup (falling back to the raw domain string).
func DomainName(domain string) string {
	if name, ok := domainNames[domain]; ok {
		return name
	}
	return domain
}

// FormatComparison renders ComparisonTemplate with the current-state
// and expectation JSON blobs already serialized by the caller.
func FormatComparison(currentState, expectation string) (string, error) {
	return render("comparison", ComparisonTemplate, struct {
		CurrentState string
		Expectation  string
	}{currentState, expectation})
}

// FormatExpectation renders ExpectationTemplate.
func FormatExpectation(worldModel, context, domain string) (string, error) {
	return render("expectation", ExpectationTemplate, struct {
		WorldModel string
		Context    string
		Domain     string
		DomainName string
	}{worldModel, context, domain, DomainName(domain)})
}

// FormatExploration renders ExplorationTemplate.
func FormatExploration(problem string) (string, error) {
	return render("exploration", ExplorationTemplate, struct{ Problem string }{problem})
}

// FormatInterpretation renders InterpretationTemplate. affectedItemsJSON
// must already be a JSON array literal (e.g. `["a","b"]`).
func FormatInterpretation(gap, gapID, severity, affectedItemsJSON string) (string, error) {
	return render("interpretation", InterpretationTemplate, struct {
		Gap           string
		GapID         string
		Severity      string
		AffectedItems string
	}{gap, gapID, severity, affectedItemsJSON})
}

func render(name, tmpl string, data any) (string, error) {
	t, err := template.New(name).Parse(tmpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
