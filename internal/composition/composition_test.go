package composition

import (
	"testing"

	"github.com/shun1423/sia/internal/model"
	"github.com/stretchr/testify/require"
)

func TestResolveDomain_PrefersProblemDomain(t *testing.T) {
	prob := &model.Problem{Domain: "health"}
	domain, err := ResolveDomain(prob, nil)
	require.NoError(t, err)
	require.Equal(t, "health", domain)
}

func TestResolveDomain_FallsBackToActiveConnectedSource(t *testing.T) {
	sources := map[string]model.ConnectedSource{
		"src_1": {Name: "GitHub", Status: "active"},
	}
	domain, err := ResolveDomain(nil, sources)
	require.NoError(t, err)
	require.Equal(t, "github", domain)
}

func TestResolveDomain_ErrorsWithNoSignal(t *testing.T) {
	_, err := ResolveDomain(nil, nil)
	require.Error(t, err)
}

func TestGenerateTrigger_EmailClassificationIsEventDriven(t *testing.T) {
	trig := GenerateTrigger("automatic classification system", "email")
	require.Equal(t, "event", trig.Type)
	require.Equal(t, "gmail", trig.Source)
}

func TestGenerateTrigger_EmailSummaryIsScheduled(t *testing.T) {
	trig := GenerateTrigger("morning summary report", "email")
	require.Equal(t, "schedule", trig.Type)
	require.Equal(t, "0 9 * * *", trig.Cron)
}

func TestGenerateTrigger_GithubReviewIsEventDriven(t *testing.T) {
	trig := GenerateTrigger("PR review notification system", "github")
	require.Equal(t, "event", trig.Type)
	require.Equal(t, "new_pr", trig.Event)
}

func TestGenerateTrigger_UnknownDomainFallsBackToEvent(t *testing.T) {
	trig := GenerateTrigger("whatever", "mystery")
	require.Equal(t, "event", trig.Type)
	require.Equal(t, "mystery", trig.Source)
}

func TestGenerateInputScope_NonMetadataScopeIsMediumSensitivity(t *testing.T) {
	scope, sensitivity := GenerateInputScope("email")
	require.Equal(t, "metadata_and_subject", scope)
	require.Equal(t, "medium", sensitivity)
}

func TestGenerateInputScope_UnknownDomainIsLowSensitivity(t *testing.T) {
	scope, sensitivity := GenerateInputScope("mystery")
	require.Equal(t, "metadata", scope)
	require.Equal(t, "low", sensitivity)
}

func TestGenerateTools_ResolvesDomainToolAndMergesSourcePermissions(t *testing.T) {
	sources := map[string]model.ConnectedSource{
		"src_1": {Name: "gmail", Status: "active", Permissions: map[string][]string{"read": {"metadata"}}},
	}
	tools := GenerateTools([]string{"email_reader"}, sources, "email")
	require.Len(t, tools, 1)
	require.Equal(t, "gmail", tools[0].Name)
	require.Equal(t, map[string][]string{"read": {"metadata"}}, tools[0].Permissions)
}

func TestGenerateTools_FallsBackToCommonTool(t *testing.T) {
	tools := GenerateTools([]string{"notification"}, nil, "email")
	require.Len(t, tools, 1)
	require.Equal(t, "notification", tools[0].Name)
}

func TestGenerateTools_UnknownToolGetsPlaceholder(t *testing.T) {
	tools := GenerateTools([]string{"mystery_tool"}, nil, "email")
	require.Len(t, tools, 1)
	require.Equal(t, "unknown", tools[0].Type)
}

func TestGenerateLogic_EmailClassificationAddsRules(t *testing.T) {
	rules, task := GenerateLogic("automatic classification system", "email")
	require.Len(t, rules, 2)
	require.Equal(t, "classify_importance", task)
}

func TestGenerateLogic_NoKeywordMatchYieldsNoRules(t *testing.T) {
	rules, task := GenerateLogic("real-time important-mail alert", "email")
	require.Empty(t, rules)
	require.Equal(t, "score_priority", task)
}

func TestGenerateActions_FallsBackToDefaultPerDomain(t *testing.T) {
	actions := GenerateActions("real-time important-mail alert", "email")
	require.Len(t, actions, 1)
	require.Equal(t, "process_emails()", actions[0].Do)
}

func TestGenerateActions_GithubReviewAddsTwoNotifications(t *testing.T) {
	actions := GenerateActions("PR review notification system", "github")
	require.Len(t, actions, 2)
	require.Equal(t, model.ActionNotification, actions[0].Type)
}

func TestGenerateSafetyPolicy_HighRiskBlocksHighRiskActions(t *testing.T) {
	safety := GenerateSafetyPolicy(model.RiskHigh, model.PolicyConfig{})
	require.Equal(t, "block", safety.ApprovalPolicy["high_risk_actions"])
}

func TestCompose_ProducesFullAgentConfig(t *testing.T) {
	solution := model.Solution{
		ID:            "sol_1",
		Name:          "automatic classification system",
		RiskLevel:     model.RiskLow,
		RequiredTools: []string{"email_reader", "classifier"},
	}
	prob := &model.Problem{Domain: "email"}

	cfg, err := Compose(solution, prob, nil, model.PolicyConfig{DefaultWriteBlock: true}, "20260730")
	require.NoError(t, err)
	require.Equal(t, "agent_sol_1_20260730", cfg.ID)
	require.Equal(t, "email", cfg.Domain)
	require.Equal(t, "event", cfg.Trigger.Type)
	require.Len(t, cfg.Tools, 2)
	require.Len(t, cfg.Logic, 2)
	require.True(t, cfg.Safety.DefaultWriteBlock)
}

func TestCompose_ErrorsWithNoResolvableDomain(t *testing.T) {
	solution := model.Solution{ID: "sol_1", Name: "x"}
	_, err := Compose(solution, nil, nil, model.PolicyConfig{}, "20260730")
	require.Error(t, err)
}
