// Package enrich implements Comparison's optional second tier: an LLM
// pass over the current state and expectation that may propose
// additional gaps the rule-based detectors in internal/comparison/rules
// missed. It is strictly additive — a gap it proposes is only kept if
// no rule-based gap already reports the same type for the same domain.
//
// original_source/layers/comparison.py's own LLM-enrichment branch is a
// literal no-op ("step 2: LLM enrichment... pass"); this package
// completes what that branch left unfinished rather than porting a
// no-op.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shun1423/sia/internal/capability"
	"github.com/shun1423/sia/internal/llmjson"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/prompt"
)

const maxTokens = 1024

type llmGap struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Domain        string          `json:"domain"`
	Description   string          `json:"description"`
	Severity      string          `json:"severity"`
	Current       any             `json:"current"`
	Expected      any             `json:"expected"`
	AffectedItems []string        `json:"affected_items"`
	Evidence      model.Evidence  `json:"evidence"`
}

// Enrich asks the LLM to compare currentState against expectation and
// returns any gaps it finds that the rule-based pass (existing) did
// not already report. A failed LLM call or an unparsable response is
// returned as an error; llm must be non-nil. The caller
// (comparison.Compare) skips enrichment for a nil LLM and ignores this
// error, keeping the rule-based gaps.
func Enrich(
	ctx context.Context,
	llm capability.LLMPort,
	currentState model.CurrentState,
	expectation model.Expectation,
	existing []model.Gap,
) ([]model.Gap, error) {
	currentJSON, err := json.Marshal(currentState.Data)
	if err != nil {
		return nil, fmt.Errorf("enrich: marshal current state: %w", err)
	}
	expectationJSON, err := json.Marshal(expectation)
	if err != nil {
		return nil, fmt.Errorf("enrich: marshal expectation: %w", err)
	}

	p, err := prompt.FormatComparison(string(currentJSON), string(expectationJSON))
	if err != nil {
		return nil, fmt.Errorf("enrich: format prompt: %w", err)
	}

	raw, err := llm.Generate(ctx, p, maxTokens)
	if err != nil {
		return nil, fmt.Errorf("enrich: generate: %w", err)
	}

	var parsed []llmGap
	if err := llmjson.Extract(raw, &parsed); err != nil {
		return nil, fmt.Errorf("enrich: parse response: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, g := range existing {
		seen[dedupeKey(g.Domain, g.Type)] = true
	}

	var added []model.Gap
	for _, g := range parsed {
		key := dedupeKey(g.Domain, g.Type)
		if seen[key] {
			continue
		}
		seen[key] = true
		added = append(added, model.Gap{
			ID:            g.ID,
			Type:          g.Type,
			Domain:        g.Domain,
			Severity:      model.Severity(g.Severity),
			Current:       g.Current,
			Expected:      g.Expected,
			AffectedItems: g.AffectedItems,
			Description:   g.Description,
			Evidence:      g.Evidence,
		})
	}

	return added, nil
}

func dedupeKey(domain, gapType string) string {
	return domain + "|" + gapType
}
