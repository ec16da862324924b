// Package composition implements the Composition stage: turning an
// approved Solution into a fully typed, sandboxed AgentConfig —
// trigger, input scope, tools, logic, actions, and safety policy.
// Ported from original_source/layers/composition.py's compose_agent
// and its _generate_* helpers.
package composition

import (
	"github.com/shun1423/sia/internal/engerr"
	"github.com/shun1423/sia/internal/model"
	"github.com/shun1423/sia/internal/sensor"
)

// ResolveDomain ports compose_agent's domain-resolution priority:
// the confirmed Problem's domain first, then the domain of an active,
// recognized connected source (sources is a map, so which one wins
// when several qualify is not fixed). There is no onboarding-free default —
// an agent with no resolvable domain is a configuration error,
// matching the Python's explicit ValueError.
func ResolveDomain(prob *model.Problem, sources map[string]model.ConnectedSource) (string, error) {
	if prob != nil && prob.Domain != "" {
		return prob.Domain, nil
	}

	for _, src := range sources {
		if src.Status != "active" {
			continue
		}
		if domain, ok := sensor.DomainForSourceName(src.Name); ok {
			return domain, nil
		}
	}

	return "", &engerr.DomainError{Stage: "composition", Reason: "connect a data source or attach a problem/solution domain"}
}
