package composition

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/shun1423/sia/internal/model"
)

// Compose ports compose_agent: assembling an approved Solution (and
// its confirmed Problem) into a fully typed AgentConfig. idSuffix is
// an injected, already-formatted uniqueness token (e.g. a date stamp)
// rather than a package-level clock read, keeping Compose
// deterministic and testable.
//
// compose_agent's "하위 호환성을 위한 레거시 필드" (legacy
// backward-compatibility fields: a fixed provider/model block and a
// generate_workflow step list) have no home in model.AgentConfig and
// nothing downstream reads them — dropped rather than carried as dead
// weight.
func Compose(
	solution model.Solution,
	prob *model.Problem,
	sources map[string]model.ConnectedSource,
	policy model.PolicyConfig,
	idSuffix string,
) (model.AgentConfig, error) {
	domain, err := ResolveDomain(prob, sources)
	if err != nil {
		return model.AgentConfig{}, err
	}

	risk := solution.RiskLevel
	if risk == "" {
		risk = model.RiskLow
	}

	trigger := GenerateTrigger(solution.Name, domain)
	if trigger.Type == "schedule" {
		if _, err := cron.ParseStandard(trigger.Cron); err != nil {
			return model.AgentConfig{}, fmt.Errorf("composition: generated an invalid cron expression %q: %w", trigger.Cron, err)
		}
	}
	scope, _ := GenerateInputScope(domain)
	tools := GenerateTools(solution.RequiredTools, sources, domain)
	logic, llmTask := GenerateLogic(solution.Name, domain)
	actions := GenerateActions(solution.Name, domain)
	safety := GenerateSafetyPolicy(risk, policy)

	return model.AgentConfig{
		ID:           fmt.Sprintf("agent_%s_%s", solution.ID, idSuffix),
		SolutionName: solution.Name,
		Domain:       domain,
		RiskLevel:    risk,
		Trigger: model.Trigger{
			Type:   trigger.Type,
			Source: trigger.Source,
			Event:  trigger.Event,
			Cron:   trigger.Cron,
		},
		InputScope: scope,
		Tools:      tools,
		Logic:      logic,
		LLMTask:    llmTask,
		Actions:    actions,
		Safety:     safety,
	}, nil
}
